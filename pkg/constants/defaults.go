package constants

// Default values for server configuration
const (
	DefaultPort              = "3001"
	DefaultFormStorePath     = "data/forms.json"
	DefaultRecomputeSchedule = "@daily"
	DefaultSessionTTLHours   = 24
	DefaultFormulaMaxNodes   = 500
	DefaultDBPort            = "4000"
	DefaultDBName            = "formbuilder"

	// AnonymousOwnerID owns forms created while authentication is disabled
	AnonymousOwnerID = "anonymous"

	// ErrorMarker is displayed in place of a derived value whose formula failed
	ErrorMarker = "#ERROR"

	// DateLayout is the ISO date format used by date fields and date helpers
	DateLayout = "2006-01-02"
)

// Defaults applied by the builder when a client leaves values out
const (
	DefaultFormName   = "Untitled Form"
	DefaultFieldLabel = "Untitled Question"
	CopyLabelSuffix   = " (copy)"
)

// DefaultFieldOptions seeds new choice fields
var DefaultFieldOptions = []string{"Option 1", "Option 2"}

// Scheduler
const (
	// ScheduleCheckInterval is the scheduler tick in seconds
	ScheduleCheckInterval = 60
)
