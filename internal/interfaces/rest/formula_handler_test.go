package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormulaHandler_Evaluate(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name        string
		body        map[string]interface{}
		wantDisplay string
		wantValue   interface{}
		wantOK      bool
	}{
		{
			name: "arithmetic on parents",
			body: map[string]interface{}{
				"formula":      "{a} + {b}",
				"parentFields": []string{"a", "b"},
				"values":       map[string]interface{}{"a": 2, "b": 3},
			},
			wantDisplay: "5",
			wantValue:   float64(5),
			wantOK:      true,
		},
		{
			name: "division by zero",
			body: map[string]interface{}{
				"formula":      "{a} / {b}",
				"parentFields": []string{"a", "b"},
				"values":       map[string]interface{}{"a": 1, "b": 0},
			},
			wantDisplay: "Infinity",
			wantValue:   "Infinity",
			wantOK:      true,
		},
		{
			name: "zero over zero",
			body: map[string]interface{}{
				"formula":      "{a} / {b}",
				"parentFields": []string{"a", "b"},
				"values":       map[string]interface{}{"a": 0, "b": 0},
			},
			wantDisplay: "NaN",
			wantValue:   "NaN",
			wantOK:      true,
		},
		{
			name: "fractional modulo",
			body: map[string]interface{}{
				"formula":      "{a} % {b}",
				"parentFields": []string{"a", "b"},
				"values":       map[string]interface{}{"a": 5.5, "b": 2},
			},
			wantDisplay: "1.5",
			wantValue:   1.5,
			wantOK:      true,
		},
		{
			name: "string helper",
			body: map[string]interface{}{
				"formula":      "upper({name})",
				"parentFields": []string{"name"},
				"values":       map[string]interface{}{"name": "ada"},
			},
			wantDisplay: "ADA",
			wantOK:      true,
		},
		{
			name: "missing parent value",
			body: map[string]interface{}{
				"formula":      "{a} * 2",
				"parentFields": []string{"a"},
				"values":       map[string]interface{}{},
			},
			wantDisplay: "#ERROR",
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := call(t, router, http.MethodPost, "/api/formula/evaluate", tt.body)
			require.Equal(t, http.StatusOK, code)
			d := data(t, body)
			assert.Equal(t, tt.wantDisplay, d["display"])
			assert.Equal(t, tt.wantOK, d["ok"])
			if tt.wantValue != nil {
				assert.Equal(t, tt.wantValue, d["value"])
			}
			if !tt.wantOK {
				assert.NotEmpty(t, d["error"])
			}
		})
	}
}

func TestFormulaHandler_EvaluateRequiresFormula(t *testing.T) {
	router := newTestRouter(t)

	code, body := call(t, router, http.MethodPost, "/api/formula/evaluate", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestFormulaHandler_Validate(t *testing.T) {
	router := newTestRouter(t)

	code, body := call(t, router, http.MethodPost, "/api/formula/validate", map[string]interface{}{
		"formula":      "round({a}, 1)",
		"parentFields": []string{"a"},
	})
	require.Equal(t, http.StatusOK, code)
	d := data(t, body)
	assert.Equal(t, true, d["valid"])
	assert.Contains(t, d["functions"], "round")

	code, body = call(t, router, http.MethodPost, "/api/formula/validate", map[string]interface{}{
		"formula": "{a} +",
	})
	require.Equal(t, http.StatusOK, code)
	d = data(t, body)
	assert.Equal(t, false, d["valid"])
	assert.NotEmpty(t, d["error"])
}

func TestFormulaHandler_Translate(t *testing.T) {
	router := newTestRouter(t)
	labels := map[string]string{"f1": "Price", "f2": "Qty"}

	code, body := call(t, router, http.MethodPost, "/api/formula/translate", map[string]interface{}{
		"direction":    "editable",
		"formula":      "{f1} * {f2}",
		"parentFields": []string{"f1", "f2"},
		"labels":       labels,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "{Price} * {Qty}", data(t, body)["formula"])

	code, body = call(t, router, http.MethodPost, "/api/formula/translate", map[string]interface{}{
		"direction":    "storage",
		"formula":      "{Price} * {Qty}",
		"parentFields": []string{"f1", "f2"},
		"labels":       labels,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "{f1} * {f2}", data(t, body)["formula"])

	code, _ = call(t, router, http.MethodPost, "/api/formula/translate", map[string]interface{}{
		"direction": "sideways",
		"formula":   "{a}",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFormulaHandler_Cycle(t *testing.T) {
	router := newTestRouter(t)

	code, body := call(t, router, http.MethodPost, "/api/formula/cycle", map[string]interface{}{
		"fields": []map[string]interface{}{
			{"id": "a", "isDerived": true, "formula": "{b}", "parentFields": []string{"b"}},
			{"id": "b", "isDerived": true, "formula": "{a}", "parentFields": []string{"a"}},
		},
	})
	require.Equal(t, http.StatusOK, code)
	d := data(t, body)
	assert.Equal(t, true, d["hasCycle"])
	assert.NotEmpty(t, d["cycle"])

	code, body = call(t, router, http.MethodPost, "/api/formula/cycle", map[string]interface{}{
		"fields": []map[string]interface{}{
			{"id": "total", "isDerived": true, "formula": "{price}", "parentFields": []string{"price"}},
			{"id": "price"},
		},
	})
	require.Equal(t, http.StatusOK, code)
	d = data(t, body)
	assert.Equal(t, false, d["hasCycle"])
	assert.Equal(t, []interface{}{"price", "total"}, d["order"])
}

func TestFormulaHandler_FunctionsAndCache(t *testing.T) {
	router := newTestRouter(t)

	code, body := call(t, router, http.MethodGet, "/api/formula/functions", nil)
	require.Equal(t, http.StatusOK, code)
	d := data(t, body)
	assert.Greater(t, d["count"].(float64), float64(0))

	code, _ = call(t, router, http.MethodDelete, "/api/formula/cache", nil)
	assert.Equal(t, http.StatusOK, code)
}
