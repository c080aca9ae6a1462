package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/pkg/constants"
	"github.com/HARIPRASAD-2003/form-builder/pkg/fieldtypes"
)

// FieldTypeInfo represents field type information for API response
type FieldTypeInfo struct {
	fieldtypes.FieldTypeWithName
	IsPlugin bool `json:"isPlugin"`
}

// GetAllFieldTypes returns all available field types including plugins
func GetAllFieldTypes() []FieldTypeInfo {
	builtin := make(map[string]bool)
	for _, name := range constants.GetAllFieldTypes() {
		builtin[name] = true
	}

	types := fieldtypes.GetAllFieldTypes()
	result := make([]FieldTypeInfo, 0, len(types))
	for _, ft := range types {
		result = append(result, FieldTypeInfo{
			FieldTypeWithName: ft,
			IsPlugin:          !builtin[ft.Name],
		})
	}
	return result
}

// GetFieldTypes handles GET /api/fieldtypes
func GetFieldTypes(c *gin.Context) {
	RespondData(c, http.StatusOK, GetAllFieldTypes())
}
