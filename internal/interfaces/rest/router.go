package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HARIPRASAD-2003/form-builder/internal/application/services"
)

// RegisterRoutes mounts the API under /api. requireAuth guards every route.
func RegisterRoutes(router *gin.Engine, svcMgr *services.ServiceManager, requireAuth gin.HandlerFunc) {
	formHandler := NewFormHandler(svcMgr)
	previewHandler := NewPreviewHandler(svcMgr.Preview)
	formulaHandler := NewFormulaHandler(svcMgr.Formula)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"previews": svcMgr.Preview.Count(),
		})
	})

	api := router.Group("/api")
	api.Use(requireAuth)
	{
		api.GET("/fieldtypes", GetFieldTypes)

		forms := api.Group("/forms")
		{
			forms.GET("", formHandler.ListForms)
			forms.POST("", formHandler.CreateForm)
			forms.GET("/:formId", formHandler.GetForm)
			forms.PATCH("/:formId", formHandler.UpdateForm)
			forms.DELETE("/:formId", formHandler.DeleteForm)

			forms.POST("/:formId/fields", formHandler.AddField)
			forms.PUT("/:formId/fields/order", formHandler.ReorderFields)
			forms.PATCH("/:formId/fields/:fieldId", formHandler.UpdateField)
			forms.DELETE("/:formId/fields/:fieldId", formHandler.RemoveField)
			forms.POST("/:formId/fields/:fieldId/duplicate", formHandler.DuplicateField)

			forms.POST("/:formId/fields/:fieldId/derived", formHandler.PromoteField)
			forms.DELETE("/:formId/fields/:fieldId/derived", formHandler.DemoteField)
			forms.GET("/:formId/fields/:fieldId/derived", formHandler.GetDerivedConfig)
			forms.PUT("/:formId/fields/:fieldId/derived", formHandler.SetDerivedConfig)

			forms.POST("/:formId/preview", previewHandler.Open)
		}

		preview := api.Group("/preview")
		{
			preview.GET("/:sessionId", previewHandler.Get)
			preview.PUT("/:sessionId/values/:fieldId", previewHandler.SetValue)
			preview.POST("/:sessionId/validate", previewHandler.Validate)
			preview.DELETE("/:sessionId", previewHandler.Close)
		}

		formula := api.Group("/formula")
		{
			formula.POST("/evaluate", formulaHandler.Evaluate)
			formula.POST("/validate", formulaHandler.Validate)
			formula.POST("/translate", formulaHandler.Translate)
			formula.POST("/cycle", formulaHandler.Cycle)
			formula.GET("/functions", formulaHandler.GetFunctions)
			formula.DELETE("/cache", formulaHandler.ClearCache)
		}
	}
}
