package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"homescout/server/internal/database"
	"homescout/server/internal/geocoding"
	"homescout/server/internal/scheduler"
)

func SetupRoutes(router *gin.Engine, db *database.Database, geocoder *geocoding.Geocoder, sched *scheduler.Scheduler, logger *logrus.Logger) {
	handler := NewHandler(db, geocoder, sched, logger)

	api := router.Group("/api")
	{
		api.GET("/listings", handler.GetListings)
		api.GET("/facets", handler.GetFacets)
		api.GET("/stats", handler.GetMarketStats)
		api.GET("/communities", handler.GetCommunityStats)
		api.GET("/cities", handler.GetCities)
		api.GET("/map-center", handler.GetMapCenter)
		api.GET("/regions", handler.GetRegions)
		api.GET("/regions/:name", handler.GetRegion)
		api.POST("/regions", handler.UpdateRegion)
		api.DELETE("/regions/:name", handler.DeleteRegion)
		api.POST("/ingest", handler.RunIngest)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
