package ports

import (
	"github.com/HARIPRASAD-2003/form-builder/pkg/formula"
	"github.com/HARIPRASAD-2003/form-builder/pkg/models"
)

// FormulaEvaluator provides derived-field evaluation.
// This interface enables testing components that use formulas without
// requiring a real formula engine.
type FormulaEvaluator interface {
	// Evaluate computes one derived field from the current values.
	Evaluate(field models.Field, values map[string]interface{}) formula.Result

	// Recompute evaluates every derived field in dependency order.
	Recompute(fields []models.Field, values map[string]interface{}) map[string]formula.Result

	// Validate checks a storage-form formula against its parent ids.
	Validate(formula string, parents []string) error
}

// Ensure the engine satisfies the port at compile time
var _ FormulaEvaluator = (*formula.Engine)(nil)
