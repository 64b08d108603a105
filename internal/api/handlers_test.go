package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homescout/server/internal/database"
	"homescout/server/internal/geocoding"
	"homescout/server/internal/models"
)

func setupTestAPI(t *testing.T) (*gin.Engine, *database.Database) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()

	// Pre-seed the geocode cache so tests never reach the network. The
	// broken entry exercises the config fallback.
	cacheDir := t.TempDir()
	cache := map[string][]float64{
		"Toronto":     {43.6532, -79.3832},
		"Thunder Bay": {},
	}
	data, err := json.Marshal(cache)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "geocode_cache.json"), data, 0644))
	geocoder := geocoding.NewGeocoder(logger, cacheDir)

	router := gin.New()
	SetupRoutes(router, db, geocoder, nil, logger)

	return router, db
}

func seedListings(t *testing.T, db *database.Database) {
	t.Helper()
	rows := []struct {
		mls, city, neighbourhood, typ, status string
		price                                 int
		lat, lng                              interface{}
	}{
		{"W1000001", "Toronto", "Annex", "Sale", "A", 650_000, 43.67, -79.40},
		{"W1000002", "Toronto", "Annex", "Sale", "A", 900_000, 43.66, -79.41},
		{"C2000001", "Toronto", "Leaside", "Lease", "A", 3_200, nil, nil},
		{"E3000001", "Ajax", "Central", "Sale", "U", 750_000, 43.85, -79.02},
	}
	for _, r := range rows {
		_, err := db.GetDB().Exec(`
			INSERT INTO listings (mls_number, city, neighbourhood, type, status, list_price, latitude, longitude, listed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		`, r.mls, r.city, r.neighbourhood, r.typ, r.status, r.price, r.lat, r.lng)
		require.NoError(t, err)
	}
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestGetListings(t *testing.T) {
	router, db := setupTestAPI(t)
	seedListings(t, db)

	w := doRequest(router, http.MethodGet, "/api/listings?city=Toronto&status=A&type=Sale", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var records []models.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "Toronto", rec.City)
		assert.Equal(t, "Sale", rec.Type)
	}
}

func TestGetListings_PriceBand(t *testing.T) {
	router, db := setupTestAPI(t)
	seedListings(t, db)

	w := doRequest(router, http.MethodGet, "/api/listings?city=Toronto&minPrice=700000&maxPrice=950000", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var records []models.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 1)
	assert.Equal(t, "W1000002", records[0].MLSNumber)
}

func TestGetListings_ViewportClip(t *testing.T) {
	router, db := setupTestAPI(t)
	seedListings(t, db)

	// Box around the Annex; the Leaside lease has no coordinates and the
	// Ajax listing sits outside the box.
	w := doRequest(router, http.MethodGet,
		"/api/listings?north=43.70&south=43.60&east=-79.35&west=-79.45", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var records []models.Listing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, "Annex", rec.Neighbourhood)
	}
}

func TestGetFacets(t *testing.T) {
	router, db := setupTestAPI(t)
	seedListings(t, db)

	w := doRequest(router, http.MethodGet, "/api/facets?city=Toronto", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Communities     []string       `json:"communities"`
		CommunityCounts map[string]int `json:"community_counts"`
		CityCounts      map[string]int `json:"city_counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"Annex", "Leaside"}, body.Communities)
	assert.Equal(t, 2, body.CommunityCounts["Annex"])
	assert.Equal(t, 3, body.CityCounts["Toronto"])
}

func TestGetMarketStats(t *testing.T) {
	router, db := setupTestAPI(t)
	seedListings(t, db)

	w := doRequest(router, http.MethodGet, "/api/stats?city=Toronto", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats models.MarketStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.TotalListings)
	assert.Equal(t, 2, stats.TotalSale)
	assert.Equal(t, 1, stats.TotalLease)
}

func TestGetCities(t *testing.T) {
	router, db := setupTestAPI(t)
	seedListings(t, db)

	w := doRequest(router, http.MethodGet, "/api/cities", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var cities []struct {
		Name         string `json:"name"`
		ListingCount int    `json:"listing_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cities))
	assert.NotEmpty(t, cities)

	counts := make(map[string]int)
	for _, c := range cities {
		counts[c.Name] = c.ListingCount
	}
	// Seeded rows use display casing, city config uses normalized names
	assert.Contains(t, counts, "toronto")
}

func TestGetMapCenter(t *testing.T) {
	router, _ := setupTestAPI(t)

	// Cached place resolves through the geocoder
	w := doRequest(router, http.MethodGet, "/api/map-center?city=Toronto", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Source    string  `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "geocoder", body.Source)
	assert.InDelta(t, 43.6532, body.Latitude, 0.001)

	// A broken cache entry falls back to the configured center
	w = doRequest(router, http.MethodGet, "/api/map-center?city=Thunder+Bay", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "config", body.Source)

	// Missing city is a bad request
	w = doRequest(router, http.MethodGet, "/api/map-center", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegionCRUD(t *testing.T) {
	router, _ := setupTestAPI(t)

	region := models.Region{
		Name:  "Greater Toronto Area",
		Areas: []string{"Toronto", "Mississauga", "Brampton"},
	}
	body, _ := json.Marshal(region)

	w := doRequest(router, http.MethodPost, "/api/regions", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/regions/Greater%20Toronto%20Area", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got models.Region
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Greater Toronto Area", got.Name)
	assert.ElementsMatch(t, region.Areas, got.Areas)

	w = doRequest(router, http.MethodGet, "/api/regions", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var all []models.Region
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	w = doRequest(router, http.MethodDelete, "/api/regions/Greater%20Toronto%20Area", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/regions/Greater%20Toronto%20Area", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRunIngest_Disabled(t *testing.T) {
	router, _ := setupTestAPI(t)

	body, _ := json.Marshal(IngestRequest{City: "Toronto"})
	w := doRequest(router, http.MethodPost, "/api/ingest", body)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
