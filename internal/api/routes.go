package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the HTTP API on the router.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/suburbs", handler.GetSuburbs)
		api.POST("/suburbs", handler.SaveSuburb)
		api.DELETE("/suburbs", handler.ClearSuburbs)
		api.GET("/suburbs/export", handler.ExportSuburbs)
		api.GET("/suburbs/hot", handler.GetHotSuburbs)
		api.GET("/suburbs/summary", handler.GetSummary)
		api.DELETE("/suburbs/:id", handler.DeleteSuburb)
		api.POST("/suburbs/:id/enrich", handler.EnrichSuburb)
		api.GET("/suburbs/:id/demographics", handler.GetDemographics)
		api.GET("/gazetteer/search", handler.SearchGazetteer)
		api.GET("/states", handler.GetStates)
	}
}
