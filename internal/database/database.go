package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"homescout/server/internal/listings"
	"homescout/server/internal/models"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

// Search implements listings.Source over the local store, so the filter
// pipeline can run against the database the same way it runs against the
// remote feed.
func (d *Database) Search(ctx context.Context, q listings.Query) ([]models.Listing, error) {
	query := `
        SELECT mls_number, address, city, area, neighbourhood, type, status,
               property_type, sub_property_type, list_price, bedrooms, bathrooms,
               square_feet_min, square_feet_max, latitude, longitude,
               COALESCE(listed_at, CURRENT_TIMESTAMP) as listed_at,
               COALESCE(updated_at, CURRENT_TIMESTAMP) as updated_at,
               developer, construction_status, selling_status, completion_date,
               unit_type, storeys, suites
        FROM listings
        WHERE 1=1
    `
	var args []interface{}

	if q.Status != "" {
		query += " AND UPPER(status) = UPPER(?)"
		args = append(args, q.Status)
	}
	if q.Type != "" {
		query += " AND LOWER(type) = LOWER(?)"
		args = append(args, q.Type)
	}
	if q.City != "" {
		query += " AND LOWER(city) = LOWER(?)"
		args = append(args, q.City)
	}
	if q.PropertyType != "" {
		query += " AND LOWER(property_type) = LOWER(?)"
		args = append(args, q.PropertyType)
	}
	if q.Community != "" {
		query += " AND LOWER(neighbourhood) LIKE '%' || LOWER(?) || '%'"
		args = append(args, q.Community)
	}
	if q.MinPrice > 0 {
		query += " AND list_price >= ?"
		args = append(args, q.MinPrice)
	}
	if q.MaxPrice > 0 {
		query += " AND list_price <= ?"
		args = append(args, q.MaxPrice)
	}
	if q.MinBedrooms > 0 {
		query += " AND bedrooms >= ?"
		args = append(args, q.MinBedrooms)
	}
	if q.MinBaths > 0 {
		query += " AND bathrooms >= ?"
		args = append(args, q.MinBaths)
	}

	perPage := q.ResultsPerPage
	if perPage <= 0 {
		perPage = 200
	}
	page := q.PageNum
	if page <= 0 {
		page = 1
	}
	query += " ORDER BY listed_at DESC, mls_number LIMIT ? OFFSET ?"
	args = append(args, perPage, (page-1)*perPage)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var results []models.Listing
	for rows.Next() {
		rec, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return results, nil
}

func scanListing(rows *sql.Rows) (models.Listing, error) {
	var rec models.Listing
	var address, city, area, neighbourhood sql.NullString
	var listingType, status, propertyType, subPropertyType sql.NullString
	var listPrice, bedrooms, bathrooms sql.NullInt64
	var sqftMin, sqftMax sql.NullInt64
	var latitude, longitude sql.NullFloat64
	var listedAt, updatedAt sql.NullTime
	var developer, constructionStatus, sellingStatus, completionDate, unitType sql.NullString
	var storeys, suites sql.NullInt64

	err := rows.Scan(
		&rec.MLSNumber,
		&address,
		&city,
		&area,
		&neighbourhood,
		&listingType,
		&status,
		&propertyType,
		&subPropertyType,
		&listPrice,
		&bedrooms,
		&bathrooms,
		&sqftMin,
		&sqftMax,
		&latitude,
		&longitude,
		&listedAt,
		&updatedAt,
		&developer,
		&constructionStatus,
		&sellingStatus,
		&completionDate,
		&unitType,
		&storeys,
		&suites,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to scan listing: %w", err)
	}

	// Handle nullable string fields
	rec.Address = address.String
	rec.City = city.String
	rec.Area = area.String
	rec.Neighbourhood = neighbourhood.String
	rec.Type = listingType.String
	rec.Status = status.String
	rec.PropertyType = propertyType.String
	rec.SubPropertyType = subPropertyType.String
	rec.Developer = developer.String
	rec.ConstructionStatus = constructionStatus.String
	rec.SellingStatus = sellingStatus.String
	rec.CompletionDate = completionDate.String
	rec.UnitType = unitType.String

	// Handle nullable numeric fields
	if listPrice.Valid {
		rec.ListPrice = int(listPrice.Int64)
	}
	if bedrooms.Valid {
		rec.Bedrooms = int(bedrooms.Int64)
	}
	if bathrooms.Valid {
		rec.Bathrooms = int(bathrooms.Int64)
	}
	if storeys.Valid {
		rec.Storeys = int(storeys.Int64)
	}
	if suites.Valid {
		rec.Suites = int(suites.Int64)
	}
	if sqftMin.Valid {
		v := int(sqftMin.Int64)
		rec.SquareFeetMin = &v
	}
	if sqftMax.Valid {
		v := int(sqftMax.Int64)
		rec.SquareFeetMax = &v
	}

	// Handle nullable coordinates
	if latitude.Valid {
		lat := latitude.Float64
		rec.Latitude = &lat
	}
	if longitude.Valid {
		lon := longitude.Float64
		rec.Longitude = &lon
	}

	if listedAt.Valid {
		rec.ListedAt = listedAt.Time
	}
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}

	return rec, nil
}

func (d *Database) GetMarketStats(city, community string) (models.MarketStats, error) {
	query := `
        WITH scoped AS (
            SELECT type, list_price,
                   CAST(list_price AS FLOAT) / NULLIF((square_feet_min + square_feet_max) / 2.0, 0) as price_per_sqft
            FROM listings
            WHERE list_price IS NOT NULL
            AND (? = '' OR LOWER(city) = LOWER(?))
            AND (? = '' OR LOWER(neighbourhood) = LOWER(?))
        )
        SELECT
            COUNT(*) as total_listings,
            COALESCE(SUM(CASE WHEN LOWER(type) = 'sale' THEN 1 ELSE 0 END), 0) as total_sale,
            COALESCE(SUM(CASE WHEN LOWER(type) = 'lease' THEN 1 ELSE 0 END), 0) as total_lease,
            COALESCE(ROUND(AVG(list_price)), 0) as average_price,
            COALESCE(ROUND(AVG(price_per_sqft)), 0) as avg_price_per_sqft
        FROM scoped
    `
	var args []interface{}
	args = append(args,
		city, city, // For city filter
		community, community, // For community filter
	)

	var stats models.MarketStats
	err := d.db.QueryRow(query, args...).Scan(
		&stats.TotalListings,
		&stats.TotalSale,
		&stats.TotalLease,
		&stats.AveragePrice,
		&stats.AvgPricePerSqft,
	)
	return stats, err
}

func (d *Database) GetCommunityStats(city string) ([]models.CommunityStats, error) {
	rows, err := d.db.Query(`
        SELECT neighbourhood,
               COUNT(*) as listing_count,
               COALESCE(ROUND(AVG(list_price)), 0) as average_price
        FROM listings
        WHERE neighbourhood IS NOT NULL AND neighbourhood != ''
        AND (? = '' OR LOWER(city) = LOWER(?))
        GROUP BY neighbourhood
        ORDER BY listing_count DESC, neighbourhood
    `, city, city)
	if err != nil {
		return nil, fmt.Errorf("failed to query community stats: %w", err)
	}
	defer rows.Close()

	var stats []models.CommunityStats
	for rows.Next() {
		var s models.CommunityStats
		if err := rows.Scan(&s.Community, &s.ListingCount, &s.AveragePrice); err != nil {
			return nil, fmt.Errorf("failed to scan community stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating community stats: %w", err)
	}

	return stats, nil
}

func (d *Database) GetCityCounts() (map[string]int, error) {
	rows, err := d.db.Query(`
        SELECT city, COUNT(*)
        FROM listings
        WHERE city IS NOT NULL AND city != ''
        GROUP BY city
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query city counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var city string
		var count int
		if err := rows.Scan(&city, &count); err != nil {
			return nil, fmt.Errorf("failed to scan city count: %w", err)
		}
		counts[city] = count
	}

	return counts, rows.Err()
}

func (d *Database) cityExists(city string) (bool, error) {
	var exists bool
	err := d.db.QueryRow("SELECT EXISTS(SELECT 1 FROM listings WHERE LOWER(city) = LOWER(?) LIMIT 1)", city).Scan(&exists)
	return exists, err
}
