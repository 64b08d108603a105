package api

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homescout/server/config"
	"homescout/server/internal/database"
	"homescout/server/internal/facets"
	"homescout/server/internal/geocoding"
	"homescout/server/internal/geometry"
	"homescout/server/internal/listings"
	"homescout/server/internal/models"
	"homescout/server/internal/scheduler"
)

type Handler struct {
	db        *database.Database
	logger    *logrus.Logger
	geocoder  *geocoding.Geocoder
	scheduler *scheduler.Scheduler
}

// IngestRequest triggers an on-demand feed run for one city.
type IngestRequest struct {
	City string `json:"city" binding:"required"`
}

func NewHandler(db *database.Database, geocoder *geocoding.Geocoder, sched *scheduler.Scheduler, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:        db,
		logger:    logger,
		geocoder:  geocoder,
		scheduler: sched,
	}
}

// GetListings returns listings matching the bound query. When the request
// carries a complete bounding box the results are clipped to it; listings
// without coordinates drop out of bounded responses.
func (h *Handler) GetListings(c *gin.Context) {
	var q listings.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Error("Failed to parse listings query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	records, err := h.db.Search(c.Request.Context(), q)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get listings"})
		return
	}

	if box, ok := bindViewport(c); ok {
		records = geometry.ClipToViewport(box, records)
	}

	c.JSON(http.StatusOK, records)
}

// GetFacets returns the community and city breakdowns for the listings
// matching the bound query.
func (h *Handler) GetFacets(c *gin.Context) {
	var q listings.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.WithError(err).Error("Failed to parse facets query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	records, err := h.db.Search(c.Request.Context(), q)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get listings for facets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get facets"})
		return
	}

	set := facets.Extract(records)
	c.JSON(http.StatusOK, gin.H{
		"communities":      set.Communities,
		"community_counts": set.CommunityCounts,
		"city_counts":      set.CityCounts,
		"top_cities":       set.TopCities(facets.DefaultTopCities),
	})
}

// GetMarketStats returns the market summary for an optional city/community scope.
func (h *Handler) GetMarketStats(c *gin.Context) {
	city := c.Query("city")
	community := c.Query("community")

	stats, err := h.db.GetMarketStats(city, community)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get market stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get market stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetCommunityStats returns the per-community breakdown for a city.
func (h *Handler) GetCommunityStats(c *gin.Context) {
	city := c.Query("city")

	stats, err := h.db.GetCommunityStats(city)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get community stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get community stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetCities returns the supported cities with their listing counts.
func (h *Handler) GetCities(c *gin.Context) {
	counts, err := h.db.GetCityCounts()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get city counts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get cities"})
		return
	}

	type cityInfo struct {
		config.City
		ListingCount int `json:"listing_count"`
	}

	out := make([]cityInfo, 0, len(config.SupportedCities))
	for _, city := range config.SupportedCities {
		out = append(out, cityInfo{City: city, ListingCount: counts[city.Name]})
	}

	c.JSON(http.StatusOK, out)
}

// GetMapCenter resolves a city (and optional community) to map coordinates.
// Geocoding failures fall back to the configured city center so the map
// always has somewhere to go.
func (h *Handler) GetMapCenter(c *gin.Context) {
	city := c.Query("city")
	community := c.Query("community")
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "city is required"})
		return
	}

	lat, lng, err := h.geocoder.LocateCity(c.Request.Context(), city, community)
	if err != nil {
		h.logger.WithError(err).WithField("city", city).Warn("Geocoding failed, using configured center")
		fallback := config.GetCityByName(city)
		if fallback == nil {
			fallback = &config.DefaultCity
		}
		c.JSON(http.StatusOK, gin.H{
			"latitude":  fallback.Center[0],
			"longitude": fallback.Center[1],
			"source":    "config",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"latitude":  lat,
		"longitude": lng,
		"source":    "geocoder",
	})
}

// GetRegions returns all regions
func (h *Handler) GetRegions(c *gin.Context) {
	regions, err := h.db.GetRegions()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get regions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get regions"})
		return
	}

	c.JSON(http.StatusOK, regions)
}

// GetRegion returns one region by name
func (h *Handler) GetRegion(c *gin.Context) {
	name := c.Param("name")
	region, err := h.db.GetRegionByName(name)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get region")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get region"})
		return
	}
	if region == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Region not found"})
		return
	}

	c.JSON(http.StatusOK, region)
}

// UpdateRegion creates or replaces a region
func (h *Handler) UpdateRegion(c *gin.Context) {
	var region models.Region
	if err := c.ShouldBindJSON(&region); err != nil {
		h.logger.WithError(err).Error("Invalid region body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if region.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Region name is required"})
		return
	}

	if err := h.db.UpdateRegion(region); err != nil {
		h.logger.WithError(err).Error("Failed to update region")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update region"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Region updated successfully"})
}

// DeleteRegion removes a region
func (h *Handler) DeleteRegion(c *gin.Context) {
	name := c.Param("name")
	if err := h.db.DeleteRegion(name); err != nil {
		h.logger.WithError(err).Error("Failed to delete region")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Region deleted successfully"})
}

// RunIngest starts an on-demand feed run for one city.
func (h *Handler) RunIngest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse ingest request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingest is not enabled"})
		return
	}

	go func() {
		if err := h.scheduler.RunCity(context.Background(), req.City); err != nil {
			h.logger.WithError(err).WithField("city", req.City).Error("On-demand ingest failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "success",
		"message": "Ingest started successfully",
	})
}

// bindViewport reads a bounding box off the query string. All four sides
// must be present for the box to count.
func bindViewport(c *gin.Context) (models.Viewport, bool) {
	var box models.Viewport
	if c.Query("north") == "" || c.Query("south") == "" ||
		c.Query("east") == "" || c.Query("west") == "" {
		return box, false
	}
	if err := c.ShouldBindQuery(&box); err != nil {
		return box, false
	}
	return box, true
}
