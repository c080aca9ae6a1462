package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/expression"
	"github.com/HARIPRASAD-2003/form-builder/pkg/graph"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
	"github.com/HARIPRASAD-2003/form-builder/pkg/utils"
)

var (
	// ErrNotDerived is reported when evaluating a field that is not derived
	ErrNotDerived = errors.New("field is not derived")
	// ErrCycle is reported for derived fields that lie on, or depend on, a cycle
	ErrCycle = errors.New("field depends on a cycle")
)

// Result is the outcome of evaluating one derived field
type Result struct {
	Value interface{}
	Err   error
}

// Display renders the result for a form: the value as text, or the error
// marker when evaluation failed.
func (r Result) Display() string {
	if r.Err != nil {
		return constants.ErrorMarker
	}
	return utils.ToDisplayString(r.Value)
}

// JSONValue is Value made safe for encoding/json: Infinity and NaN, which
// JSON cannot carry, are returned as their display text.
func (r Result) JSONValue() interface{} {
	if f, ok := r.Value.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return utils.FormatNumber(f)
	}
	return r.Value
}

// OK reports whether evaluation succeeded
func (r Result) OK() bool {
	return r.Err == nil
}

// Engine evaluates derived-field formulas in a sandbox exposing only the
// helper library
type Engine struct {
	exprEngine *expression.Engine
	now        func() time.Time
	maxNodes   uint
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the source of "now" for the date helpers
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMaxNodes bounds the size of a formula after substitution
func WithMaxNodes(n uint) Option {
	return func(e *Engine) {
		e.maxNodes = n
	}
}

// NewEngine creates a new formula engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		maxNodes: constants.DefaultFormulaMaxNodes,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.exprEngine = expression.NewEngine(expression.WithMaxNodes(e.maxNodes))
	for name, fn := range (helpers{now: e.now}).table() {
		e.exprEngine.RegisterFunction(name, fn)
	}
	return e
}

// Evaluate computes the value of a derived field from the current values of
// its parents. It never panics; failures are reported in Result.Err.
func (e *Engine) Evaluate(field models.Field, values map[string]interface{}) Result {
	if !field.IsDerived {
		return Result{Err: ErrNotDerived}
	}
	return e.EvaluateFormula(field.FormulaText(), field.ParentFields, values)
}

// EvaluateFormula evaluates an id-placeholder formula against values
func (e *Engine) EvaluateFormula(formula string, parents []string, values map[string]interface{}) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("formula panicked: %v", r)}
		}
	}()

	if strings.TrimSpace(formula) == "" {
		return Result{Err: errors.New("formula is empty")}
	}

	source := substitute(formula, parents, values)
	out, err := e.exprEngine.Evaluate(source)
	if err != nil {
		return Result{Err: e.explain(formula, parents, err)}
	}
	return Result{Value: out}
}

// Validate checks that a formula parses and stays inside the sandbox once its
// placeholders are substituted. Type errors depend on the values and are only
// reported by Evaluate.
func (e *Engine) Validate(formula string, parents []string) error {
	_, err := e.Inspect(formula, parents)
	return err
}

// Inspect validates a formula and returns the helpers it calls
func (e *Engine) Inspect(formula string, parents []string) ([]string, error) {
	if strings.TrimSpace(formula) == "" {
		return nil, errors.New("formula is empty")
	}
	source := substitute(formula, parents, nil)
	analysis, err := e.exprEngine.Inspect(source)
	if err != nil {
		return nil, e.explain(formula, parents, err)
	}
	return analysis.Functions, nil
}

// Functions returns the names of the helpers callable from formulas
func (e *Engine) Functions() []string {
	return e.exprEngine.Functions()
}

// ClearCache drops every compiled formula
func (e *Engine) ClearCache() {
	e.exprEngine.ClearCache()
}

// CacheSize returns the number of compiled formulas held
func (e *Engine) CacheSize() int {
	return e.exprEngine.CacheSize()
}

// explain adds the unresolved placeholders, if any, to an evaluation error
func (e *Engine) explain(formula string, parents []string, err error) error {
	if missing := Unresolved(formula, parents); len(missing) > 0 {
		return fmt.Errorf("unresolved placeholder {%s}: %w", strings.Join(missing, "}, {"), err)
	}
	return err
}

// Recompute evaluates every derived field, parents before dependents, and
// returns the results by field id. values is not modified; derived values
// are layered over it as the pass proceeds. Fields on or behind a cycle get
// ErrCycle.
func (e *Engine) Recompute(fields []models.Field, values map[string]interface{}) map[string]Result {
	working := make(map[string]interface{}, len(values)+len(fields))
	for k, v := range values {
		working[k] = v
	}

	tainted := graph.OnCycle(fields)
	acyclic := make([]models.Field, 0, len(fields))
	byID := make(map[string]models.Field, len(fields))
	results := make(map[string]Result)

	for _, f := range fields {
		byID[f.ID] = f
		if tainted[f.ID] {
			if f.IsDerived {
				results[f.ID] = Result{Err: ErrCycle}
			}
			delete(working, f.ID)
			continue
		}
		acyclic = append(acyclic, f)
	}

	order, err := graph.TopologicalOrder(acyclic)
	if err != nil {
		// unreachable once cyclic fields are removed
		for _, f := range acyclic {
			if f.IsDerived {
				results[f.ID] = Result{Err: err}
			}
		}
		return results
	}

	for _, id := range order {
		f := byID[id]
		if !f.IsDerived {
			continue
		}
		res := e.Evaluate(f, working)
		results[id] = res
		if res.OK() {
			working[id] = res.Value
		} else {
			delete(working, id)
		}
	}
	return results
}
