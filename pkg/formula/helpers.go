package formula

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/utils"
)

const (
	day  = 24 * time.Hour
	year = time.Duration(365.25 * float64(day))
)

// dateLayouts are the date formats accepted by the date helpers
var dateLayouts = []string{
	constants.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// helpers is the formula helper library bound to a clock
type helpers struct {
	now func() time.Time
}

func (h helpers) table() map[string]func(args ...interface{}) (interface{}, error) {
	return map[string]func(args ...interface{}) (interface{}, error){
		"yearsBetween":  h.yearsBetween,
		"monthsBetween": h.monthsBetween,
		"daysBetween":   h.daysBetween,
		"today":         h.today,
		"sum":           sum,
		"avg":           avg,
		"min":           minOf,
		"max":           maxOf,
		"round":         round,
		"concat":        concat,
		"upper":         stringFn("upper", strings.ToUpper),
		"lower":         stringFn("lower", strings.ToLower),
		"trim":          stringFn("trim", strings.TrimSpace),
	}
}

// Date helpers

func (h helpers) yearsBetween(args ...interface{}) (interface{}, error) {
	d, ok, err := dateArg("yearsBetween", args)
	if err != nil || !ok {
		return 0, err
	}
	return int(math.Floor(float64(h.now().UTC().Sub(d)) / float64(year))), nil
}

func (h helpers) monthsBetween(args ...interface{}) (interface{}, error) {
	d, ok, err := dateArg("monthsBetween", args)
	if err != nil || !ok {
		return 0, err
	}
	now := h.now().UTC()
	return (now.Year()-d.Year())*12 + int(now.Month()) - int(d.Month()), nil
}

func (h helpers) daysBetween(args ...interface{}) (interface{}, error) {
	d, ok, err := dateArg("daysBetween", args)
	if err != nil || !ok {
		return 0, err
	}
	return int(math.Floor(float64(h.now().UTC().Sub(d)) / float64(day))), nil
}

func (h helpers) today(args ...interface{}) (interface{}, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("today takes no arguments")
	}
	return h.now().UTC().Format(constants.DateLayout), nil
}

// dateArg parses the single date argument of a date helper.
// ok is false for falsy input, which the helpers treat as 0.
func dateArg(name string, args []interface{}) (time.Time, bool, error) {
	if len(args) != 1 {
		return time.Time{}, false, fmt.Errorf("%s requires 1 argument", name)
	}
	if isFalsy(args[0]) {
		return time.Time{}, false, nil
	}
	s := strings.TrimSpace(utils.ToDisplayString(args[0]))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%s: invalid date %q", name, s)
}

func isFalsy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case int:
		return x == 0
	case float64:
		return x == 0 || math.IsNaN(x)
	}
	return false
}

// Math helpers

func sum(args ...interface{}) (interface{}, error) {
	total := 0.0
	for _, a := range args {
		total += utils.ToNumberOrZero(a)
	}
	return total, nil
}

// avg over zero arguments is 0, never NaN
func avg(args ...interface{}) (interface{}, error) {
	if len(args) == 0 {
		return 0.0, nil
	}
	total, _ := sum(args...)
	return total.(float64) / float64(len(args)), nil
}

func minOf(args ...interface{}) (interface{}, error) {
	return fold(args, math.Min), nil
}

func maxOf(args ...interface{}) (interface{}, error) {
	return fold(args, math.Max), nil
}

// fold reduces numeric-or-zero coerced args; no args yields 0
func fold(args []interface{}, pick func(a, b float64) float64) float64 {
	if len(args) == 0 {
		return 0
	}
	acc := utils.ToNumberOrZero(args[0])
	for _, a := range args[1:] {
		acc = pick(acc, utils.ToNumberOrZero(a))
	}
	return acc
}

func round(args ...interface{}) (interface{}, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("round requires 1 or 2 arguments")
	}
	n := utils.ToNumberOrZero(args[0])
	decimals := 0
	if len(args) == 2 {
		d, ok := utils.ToNumber(args[1])
		if !ok {
			d = 0
		}
		decimals = int(d)
	}
	if decimals < 0 || decimals > 100 {
		return nil, fmt.Errorf("round: decimals must be between 0 and 100")
	}

	p := math.Pow(10, float64(decimals))
	r := math.Round(n*p) / p
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return n, nil
	}
	return r, nil
}

// String helpers

func concat(args ...interface{}) (interface{}, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(utils.ToDisplayString(a))
	}
	return b.String(), nil
}

func stringFn(name string, fn func(string) string) func(args ...interface{}) (interface{}, error) {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s requires 1 argument", name)
		}
		return fn(utils.ToDisplayString(args[0])), nil
	}
}
