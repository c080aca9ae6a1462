package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	appErrors "github.com/HARIPRASAD-2003/form-builder/pkg/errors"
	"github.com/HARIPRASAD-2003/form-builder/pkg/formula"
	"github.com/HARIPRASAD-2003/form-builder/pkg/graph"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

// FormulaHandler exposes the formula engine directly so editors can check
// formulas before committing them
type FormulaHandler struct {
	engine *formula.Engine
}

func NewFormulaHandler(engine *formula.Engine) *FormulaHandler {
	return &FormulaHandler{engine: engine}
}

// EvaluateRequest represents a formula evaluation request. The formula uses
// {id} placeholders for the listed parents.
type EvaluateRequest struct {
	Formula      string                 `json:"formula" binding:"required"`
	ParentFields []string               `json:"parentFields"`
	Values       map[string]interface{} `json:"values"`
}

// ValidateRequest represents a formula validation request
type ValidateRequest struct {
	Formula      string   `json:"formula" binding:"required"`
	ParentFields []string `json:"parentFields"`
}

// TranslateRequest converts a formula between its stored and editable forms
type TranslateRequest struct {
	Direction    constants.TranslationDirection `json:"direction" binding:"required"`
	Formula      string                         `json:"formula"`
	ParentFields []string                       `json:"parentFields"`
	Labels       map[string]string              `json:"labels"`
}

// CycleRequest carries a field graph to check
type CycleRequest struct {
	Fields []models.Field `json:"fields"`
}

// Evaluate handles POST /api/formula/evaluate.
// A failing formula is a successful request whose display is the error marker.
func (h *FormulaHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if !BindJSON(c, &req) {
		return
	}

	res := h.engine.EvaluateFormula(req.Formula, req.ParentFields, req.Values)
	data := gin.H{
		"value":   res.JSONValue(),
		"display": res.Display(),
		"ok":      res.OK(),
	}
	if res.Err != nil {
		data[constants.ResponseError] = res.Err.Error()
	}
	RespondData(c, http.StatusOK, data)
}

// Validate handles POST /api/formula/validate
func (h *FormulaHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if !BindJSON(c, &req) {
		return
	}

	functions, err := h.engine.Inspect(req.Formula, req.ParentFields)
	if err != nil {
		// Valid: false is a successful check result, not an HTTP error
		RespondData(c, http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}
	if functions == nil {
		functions = []string{}
	}

	RespondData(c, http.StatusOK, gin.H{
		"valid":     true,
		"functions": functions,
	})
}

// Translate handles POST /api/formula/translate
func (h *FormulaHandler) Translate(c *gin.Context) {
	var req TranslateRequest
	if !BindJSON(c, &req) {
		return
	}

	labelOf := formula.LabelsFromMap(req.Labels)
	var out string
	switch req.Direction {
	case constants.TranslateToEditable:
		out = formula.ToEditable(req.Formula, req.ParentFields, labelOf)
	case constants.TranslateToStorage:
		out = formula.ToStorage(req.Formula, req.ParentFields, labelOf)
	default:
		RespondAppError(c, appErrors.NewValidationError("direction", "Direction must be 'editable' or 'storage'"))
		return
	}

	data := gin.H{"formula": out}
	if err := formula.CheckLabels(req.ParentFields, labelOf); err != nil {
		data["warning"] = err.Error()
	}
	RespondData(c, http.StatusOK, data)
}

// Cycle handles POST /api/formula/cycle
func (h *FormulaHandler) Cycle(c *gin.Context) {
	var req CycleRequest
	if !BindJSON(c, &req) {
		return
	}

	cycle := graph.FindCycle(req.Fields)
	data := gin.H{
		"hasCycle": cycle != nil,
		"cycle":    cycle,
	}
	if cycle == nil {
		order, err := graph.TopologicalOrder(req.Fields)
		if err != nil {
			RespondAppError(c, err)
			return
		}
		data["order"] = order
	}
	RespondData(c, http.StatusOK, data)
}

// GetFunctions handles GET /api/formula/functions
func (h *FormulaHandler) GetFunctions(c *gin.Context) {
	functions := h.engine.GetFunctionDefinitions()

	RespondData(c, http.StatusOK, gin.H{
		"functions": functions,
		"count":     len(functions),
	})
}

// ClearCache handles DELETE /api/formula/cache
func (h *FormulaHandler) ClearCache(c *gin.Context) {
	h.engine.ClearCache()

	RespondData(c, http.StatusOK, gin.H{
		constants.FieldMessage: "Formula cache cleared successfully",
	})
}
