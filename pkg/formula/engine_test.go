package formula

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return fixedNow }))
}

func derived(id, formula string, parents ...string) models.Field {
	return models.Field{
		ID:           id,
		Label:        id,
		Type:         constants.FieldTypeText,
		IsDerived:    true,
		Formula:      &formula,
		ParentFields: parents,
	}
}

func TestEngine_Evaluate(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name    string
		formula string
		parents []string
		values  map[string]interface{}
		display string
		wantErr bool
	}{
		{name: "Sum", formula: "sum({x},{y})", parents: []string{"x", "y"}, values: map[string]interface{}{"x": 2, "y": 3}, display: "5"},
		{name: "Upper", formula: "upper({x})", parents: []string{"x"}, values: map[string]interface{}{"x": "ab"}, display: "AB"},
		{name: "Malformed", formula: "{x}+", parents: []string{"x"}, values: map[string]interface{}{"x": 1}, wantErr: true},
		{name: "Global Substitution", formula: "{x} * {x}", parents: []string{"x"}, values: map[string]interface{}{"x": 4.0}, display: "16"},
		{name: "Negative Value", formula: "{x} ** 2", parents: []string{"x"}, values: map[string]interface{}{"x": -3}, display: "9"},
		{name: "Concat", formula: `concat({a}, " ", {b})`, parents: []string{"a", "b"}, values: map[string]interface{}{"a": "John", "b": "Doe"}, display: "John Doe"},
		{name: "Numeric Strings", formula: "sum({a}, {b})", parents: []string{"a", "b"}, values: map[string]interface{}{"a": "1.5", "b": " 2 "}, display: "3.5"},
		{name: "Missing Parent Counts Zero", formula: "sum({a}, 1)", parents: []string{"a"}, values: map[string]interface{}{}, display: "1"},
		{name: "Checkbox List", formula: "concat({a})", parents: []string{"a"}, values: map[string]interface{}{"a": []interface{}{"x", "y"}}, display: "x,y"},
		{name: "Division", formula: "{a} / {b}", parents: []string{"a", "b"}, values: map[string]interface{}{"a": 7, "b": 2}, display: "3.5"},
		{name: "Division By Zero", formula: "{a} / {b}", parents: []string{"a", "b"}, values: map[string]interface{}{"a": 1, "b": 0}, display: "Infinity"},
		{name: "Modulo", formula: "{a} % {b}", parents: []string{"a", "b"}, values: map[string]interface{}{"a": 5, "b": 2}, display: "1"},
		{name: "Fractional Modulo", formula: "{a} % {b}", parents: []string{"a", "b"}, values: map[string]interface{}{"a": 5.5, "b": 2}, display: "1.5"},
		{name: "Fractional Divisor", formula: "{a} % {b}", parents: []string{"a", "b"}, values: map[string]interface{}{"a": 7, "b": 2.5}, display: "2"},
		{name: "Modulo By Zero", formula: "{a} % {b}", parents: []string{"a", "b"}, values: map[string]interface{}{"a": 5, "b": 0}, display: "NaN"},
		{name: "Past Int64 Range", formula: "sum({x}, 1)", parents: []string{"x"}, values: map[string]interface{}{"x": 1e19}, display: "10000000000000000000"},
		{name: "Negative Past Int64 Range", formula: "{x} * 2", parents: []string{"x"}, values: map[string]interface{}{"x": -1e19}, display: "-20000000000000000000"},
		{name: "Ternary", formula: `{a} >= 18 ? "adult" : "minor"`, parents: []string{"a"}, values: map[string]interface{}{"a": 20}, display: "adult"},
		{name: "Today", formula: "today()", display: "2024-06-15"},
		{name: "Years Between", formula: "yearsBetween({d})", parents: []string{"d"}, values: map[string]interface{}{"d": "2000-06-15"}, display: "24"},
		{name: "Empty Formula", formula: "  ", wantErr: true},
		{name: "Unknown Helper", formula: "eval({x})", parents: []string{"x"}, values: map[string]interface{}{"x": 1}, wantErr: true},
		{name: "Undeclared Placeholder", formula: "{y} + 1", parents: []string{"x"}, values: map[string]interface{}{"y": 1}, wantErr: true},
		{name: "Helper Error", formula: "round({x}, 200)", parents: []string{"x"}, values: map[string]interface{}{"x": 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Evaluate(derived("out", tt.formula, tt.parents...), tt.values)
			if tt.wantErr {
				assert.Error(t, res.Err)
				assert.Equal(t, constants.ErrorMarker, res.Display())
			} else {
				require.NoError(t, res.Err)
				assert.Equal(t, tt.display, res.Display())
			}
		})
	}
}

func TestEngine_Evaluate_NotDerived(t *testing.T) {
	e := newTestEngine()
	res := e.Evaluate(models.Field{ID: "plain"}, nil)
	assert.ErrorIs(t, res.Err, ErrNotDerived)
	assert.False(t, res.OK())
}

func TestEngine_Evaluate_ValuesAreNotCode(t *testing.T) {
	e := newTestEngine()

	t.Run("quotes", func(t *testing.T) {
		payload := `"), today(), ("`
		res := e.Evaluate(derived("out", "upper({x})", "x"), map[string]interface{}{"x": payload})
		require.NoError(t, res.Err)
		assert.Equal(t, `"), TODAY(), ("`, res.Value)
	})

	t.Run("placeholder text", func(t *testing.T) {
		res := e.Evaluate(derived("out", "concat({x}, {y})", "x", "y"),
			map[string]interface{}{"x": "{y}", "y": "secret"})
		require.NoError(t, res.Err)
		assert.Equal(t, "{y}secret", res.Value)
	})

	t.Run("helper call text", func(t *testing.T) {
		res := e.Evaluate(derived("out", "{x}", "x"), map[string]interface{}{"x": "sum(1, 2)"})
		require.NoError(t, res.Err)
		assert.Equal(t, "sum(1, 2)", res.Value)
	})
}

func TestEngine_Evaluate_Deterministic(t *testing.T) {
	e := newTestEngine()
	f := derived("out", "concat(today(), daysBetween({d}))", "d")
	values := map[string]interface{}{"d": "2024-06-01"}

	first := e.Evaluate(f, values)
	second := e.Evaluate(f, values)
	require.NoError(t, first.Err)
	assert.Equal(t, first, second)
	assert.Equal(t, "2024-06-1514", first.Display())
}

func TestEngine_Validate(t *testing.T) {
	e := newTestEngine()

	assert.NoError(t, e.Validate("{x} * 2", []string{"x"}))
	assert.NoError(t, e.Validate(`concat({a}, "-", {b})`, []string{"a", "b"}))
	assert.Error(t, e.Validate("sum({x}", []string{"x"}))
	assert.Error(t, e.Validate("", nil))
	assert.Error(t, e.Validate("env()", nil))

	err := e.Validate("{zz} + 1", []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved placeholder {zz}")

	fns, err := e.Inspect("round(sum({x}, 1), 2)", []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"round", "sum"}, fns)
}

func TestEngine_Functions(t *testing.T) {
	e := newTestEngine()

	names := e.Functions()
	assert.Len(t, names, 13)

	defs := e.GetFunctionDefinitions()
	require.Len(t, defs, len(names))
	for _, def := range defs {
		assert.Contains(t, names, def.Name)
	}
}

func TestEngine_Recompute(t *testing.T) {
	e := newTestEngine()

	t.Run("chain in dependency order", func(t *testing.T) {
		fields := []models.Field{
			derived("c", "{b} + 1", "b"),
			derived("b", "{a} * 2", "a"),
			{ID: "a", Type: constants.FieldTypeNumber},
		}
		values := map[string]interface{}{"a": 2}

		results := e.Recompute(fields, values)
		require.Len(t, results, 2)
		assert.Equal(t, "4", results["b"].Display())
		assert.Equal(t, "5", results["c"].Display())
		assert.Equal(t, map[string]interface{}{"a": 2}, values)
	})

	t.Run("cycle isolated", func(t *testing.T) {
		fields := []models.Field{
			derived("p", "{q}", "q"),
			derived("q", "{p}", "p"),
			derived("r", "{q}", "q"),
			derived("ok", "sum({a}, 1)", "a"),
			{ID: "a"},
		}
		results := e.Recompute(fields, map[string]interface{}{"a": 1})
		assert.ErrorIs(t, results["p"].Err, ErrCycle)
		assert.ErrorIs(t, results["q"].Err, ErrCycle)
		assert.ErrorIs(t, results["r"].Err, ErrCycle)
		assert.Equal(t, "2", results["ok"].Display())
	})

	t.Run("failed parent is unavailable to dependents", func(t *testing.T) {
		fields := []models.Field{
			derived("bad", "{a} +", "a"),
			derived("next", "sum({bad}, 1)", "bad"),
			{ID: "a"},
		}
		results := e.Recompute(fields, map[string]interface{}{"a": 1, "bad": 100})
		assert.Error(t, results["bad"].Err)
		assert.Equal(t, "1", results["next"].Display())
	})
}
