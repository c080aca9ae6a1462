package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
)

// cronParser accepts standard five-field expressions and descriptors such
// as @daily
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// SchedulerService runs preview housekeeping in the background: idle
// sessions are expired on every tick and derived values are recomputed on
// the configured cron schedule so date helpers follow the calendar.
type SchedulerService struct {
	previews *PreviewService
	schedule cron.Schedule
	interval time.Duration
	now      func() time.Time

	nextRun  time.Time
	stopChan chan struct{}
	done     chan struct{} // closed when the loop returns
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	stopped  bool // Prevents double-close of stopChan
}

// ParseSchedule validates a recompute schedule expression
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return schedule, nil
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(previews *PreviewService, spec string) (*SchedulerService, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	s := &SchedulerService{
		previews: previews,
		schedule: schedule,
		interval: time.Duration(constants.ScheduleCheckInterval) * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.nextRun = schedule.Next(s.now())
	return s, nil
}

// Start begins the scheduler loop and blocks until Stop is called
func (s *SchedulerService) Start() {
	if s.begin() {
		s.run()
	}
}

// StartAsync runs the loop on its own goroutine. The scheduler counts as
// running once StartAsync returns, so an immediate Stop ends the loop.
func (s *SchedulerService) StartAsync() {
	if s.begin() {
		go s.run()
	}
}

// begin marks the scheduler running and reports whether the caller should
// run the loop
func (s *SchedulerService) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.stopped {
		return false
	}
	s.running = true
	return true
}

func (s *SchedulerService) run() {
	defer close(s.done)
	log.Printf("⏰ Scheduler service starting (next recompute at %s)...", s.NextRun().Format(time.RFC3339))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.wg.Add(1)
			s.tick()
			s.wg.Done()
		case <-s.stopChan:
			log.Println("⏰ Scheduler service stopping...")
			s.wg.Wait()
			log.Println("⏰ Scheduler service stopped")
			return
		}
	}
}

// Stop gracefully stops the scheduler
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
}

// NextRun returns the time of the next scheduled recompute
func (s *SchedulerService) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// tick expires idle previews and runs the recompute when it is due
func (s *SchedulerService) tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Panic in scheduler tick: %v", r)
		}
	}()

	if n := s.previews.ExpireIdle(); n > 0 {
		log.Printf("⏰ Expired %d idle preview session(s)", n)
	}

	now := s.now()
	s.mu.Lock()
	due := !now.Before(s.nextRun)
	if due {
		s.nextRun = s.schedule.Next(now)
	}
	s.mu.Unlock()

	if !due {
		return
	}

	start := time.Now()
	n := s.previews.RefreshAll()
	log.Printf("✅ Recomputed derived values of %d preview session(s) in %v", n, time.Since(start))
}
