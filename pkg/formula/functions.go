package formula

// FunctionDefinition represents a formula function definition for API responses
type FunctionDefinition struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
}

// GetFunctionDefinitions returns the helper catalogue.
// The editor uses this for auto-complete; keep in sync with helpers.go.
func (e *Engine) GetFunctionDefinitions() []FunctionDefinition {
	return []FunctionDefinition{
		{Name: "yearsBetween", Category: "Date", Description: "Whole years from a date until today (0 when empty)", Usage: "yearsBetween(date)"},
		{Name: "monthsBetween", Category: "Date", Description: "Calendar months from a date until today, ignoring the day", Usage: "monthsBetween(date)"},
		{Name: "daysBetween", Category: "Date", Description: "Whole days from a date until today (0 when empty)", Usage: "daysBetween(date)"},
		{Name: "today", Category: "Date", Description: "Returns today's date (YYYY-MM-DD)", Usage: "today()"},
		{Name: "sum", Category: "Math", Description: "Adds numbers, empty values count as 0", Usage: "sum(a, b, ...)"},
		{Name: "avg", Category: "Math", Description: "Average of numbers, 0 when called without arguments", Usage: "avg(a, b, ...)"},
		{Name: "min", Category: "Math", Description: "Smallest number", Usage: "min(a, b, ...)"},
		{Name: "max", Category: "Math", Description: "Largest number", Usage: "max(a, b, ...)"},
		{Name: "round", Category: "Math", Description: "Rounds a number to the given decimals", Usage: "round(number, decimals)"},
		{Name: "concat", Category: "Text", Description: "Joins values without a separator", Usage: "concat(a, b, ...)"},
		{Name: "upper", Category: "Text", Description: "Converts to uppercase", Usage: "upper(text)"},
		{Name: "lower", Category: "Text", Description: "Converts to lowercase", Usage: "lower(text)"},
		{Name: "trim", Category: "Text", Description: "Removes surrounding whitespace", Usage: "trim(text)"},
	}
}
