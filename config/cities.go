package config

import "strings"

// City represents a city configuration
type City struct {
	Name      string    `json:"name"`
	Center    []float64 `json:"center"`
	ZoomLevel int       `json:"zoom_level"`
}

// SupportedCities is the set of Greater Toronto Area cities the server
// ingests and serves.
var SupportedCities = []City{
	{
		Name:      "toronto",
		Center:    []float64{43.6532, -79.3832},
		ZoomLevel: 12,
	},
	{
		Name:      "mississauga",
		Center:    []float64{43.5890, -79.6441},
		ZoomLevel: 12,
	},
	{
		Name:      "brampton",
		Center:    []float64{43.7315, -79.7624},
		ZoomLevel: 12,
	},
	{
		Name:      "vaughan",
		Center:    []float64{43.8563, -79.5085},
		ZoomLevel: 12,
	},
	{
		Name:      "markham",
		Center:    []float64{43.8561, -79.3370},
		ZoomLevel: 12,
	},
	{
		Name:      "richmond-hill",
		Center:    []float64{43.8828, -79.4403},
		ZoomLevel: 13,
	},
	{
		Name:      "oakville",
		Center:    []float64{43.4675, -79.6877},
		ZoomLevel: 13,
	},
	{
		Name:      "burlington",
		Center:    []float64{43.3255, -79.7990},
		ZoomLevel: 13,
	},
	{
		Name:      "pickering",
		Center:    []float64{43.8384, -79.0868},
		ZoomLevel: 13,
	},
	{
		Name:      "ajax",
		Center:    []float64{43.8509, -79.0204},
		ZoomLevel: 13,
	},
}

// DefaultCity anchors the map when a requested city is unknown.
var DefaultCity = SupportedCities[0]

// GetCityNames returns a list of supported city names
func GetCityNames() []string {
	names := make([]string, len(SupportedCities))
	for i, city := range SupportedCities {
		names[i] = city.Name
	}
	return names
}

// GetCityByName returns a city configuration by normalized name
func GetCityByName(name string) *City {
	normalized := NormalizeCity(name)
	for _, city := range SupportedCities {
		if city.Name == normalized {
			return &city
		}
	}
	return nil
}

// NormalizeCity lowercases a city name and joins words with hyphens, the
// form the feed expects in its city parameter.
func NormalizeCity(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	lower = strings.ReplaceAll(lower, "'", "")
	return strings.Join(strings.Fields(lower), "-")
}
