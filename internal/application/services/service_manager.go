package services

import (
	"github.com/HARIPRASAD-2003/form-builder/internal/config"
	"github.com/HARIPRASAD-2003/form-builder/internal/domain/ports"
	"github.com/HARIPRASAD-2003/form-builder/pkg/formula"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	EventBus  *EventBus
	Formula   *formula.Engine
	Forms     *FormService
	Derived   *DerivedFieldService
	Preview   *PreviewService
	Scheduler *SchedulerService
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(repo ports.FormRepository, cfg *config.Config) (*ServiceManager, error) {
	sm := &ServiceManager{}

	// Initialize services in dependency order
	sm.EventBus = NewEventBus()
	sm.Formula = formula.NewEngine(formula.WithMaxNodes(cfg.FormulaMaxNodes))
	sm.Forms = NewFormService(repo, sm.EventBus)
	sm.Derived = NewDerivedFieldService(sm.Forms, sm.Formula)

	sm.Preview = NewPreviewService(sm.Forms, sm.Formula, sm.EventBus, cfg.PreviewSessionTTL)
	sm.Preview.RegisterEventHandlers(sm.EventBus)

	scheduler, err := NewSchedulerService(sm.Preview, cfg.RecomputeSchedule)
	if err != nil {
		return nil, err
	}
	sm.Scheduler = scheduler

	return sm, nil
}

// StartScheduler starts the background housekeeping loop.
// Call this during server startup.
func (sm *ServiceManager) StartScheduler() {
	sm.Scheduler.StartAsync()
}

// StopScheduler stops the background loop gracefully.
// Call this during server shutdown.
func (sm *ServiceManager) StopScheduler() {
	sm.Scheduler.Stop()
}
