package database

import (
	"database/sql"
	"fmt"
	"strings"

	"homescout/server/internal/models"
)

// GetRegions returns all regions
func (d *Database) GetRegions() ([]models.Region, error) {
	rows, err := d.db.Query(`
		SELECT r.id, r.name, GROUP_CONCAT(ra.area, ',') as areas
		FROM regions r
		LEFT JOIN region_areas ra ON r.id = ra.region_id
		GROUP BY r.id, r.name
		ORDER BY r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []models.Region
	for rows.Next() {
		var region models.Region
		var areasStr sql.NullString
		if err := rows.Scan(&region.ID, &region.Name, &areasStr); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		if areasStr.Valid && areasStr.String != "" {
			region.Areas = strings.Split(areasStr.String, ",")
		} else {
			region.Areas = []string{}
		}
		regions = append(regions, region)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}

	return regions, nil
}

// GetRegionByName returns a specific region by name
func (d *Database) GetRegionByName(name string) (*models.Region, error) {
	var region models.Region
	var areasStr sql.NullString

	err := d.db.QueryRow(`
		SELECT r.id, r.name, GROUP_CONCAT(ra.area) as areas
		FROM regions r
		LEFT JOIN region_areas ra ON r.id = ra.region_id
		WHERE r.name = ?
		GROUP BY r.id, r.name
	`, name).Scan(&region.ID, &region.Name, &areasStr)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query region: %w", err)
	}

	if areasStr.Valid && areasStr.String != "" {
		region.Areas = strings.Split(areasStr.String, ",")
	} else {
		region.Areas = []string{}
	}

	return &region, nil
}

// UpdateRegion updates or creates a region
func (d *Database) UpdateRegion(region models.Region) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Check if the region exists by name
	var existingID int64
	err = tx.QueryRow("SELECT id FROM regions WHERE name = ?", region.Name).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing region: %w", err)
	}

	var id int64
	if err == sql.ErrNoRows {
		result, err := tx.Exec("INSERT INTO regions (name) VALUES (?)", region.Name)
		if err != nil {
			return fmt.Errorf("failed to insert region: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get region ID: %w", err)
		}
	} else {
		id = existingID
	}

	// Replace the area set wholesale
	_, err = tx.Exec("DELETE FROM region_areas WHERE region_id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete existing areas: %w", err)
	}

	for _, area := range region.Areas {
		_, err = tx.Exec(`
			INSERT INTO region_areas (region_id, area)
			VALUES (?, ?)
		`, id, area)
		if err != nil {
			return fmt.Errorf("failed to insert area: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteRegion deletes a region and its areas
func (d *Database) DeleteRegion(name string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow("SELECT id FROM regions WHERE name = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		return fmt.Errorf("region not found: %s", name)
	}
	if err != nil {
		return fmt.Errorf("failed to look up region: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM region_areas WHERE region_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete region areas: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM regions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete region: %w", err)
	}

	return tx.Commit()
}

// GetAreasInRegion returns all areas in a region
func (d *Database) GetAreasInRegion(name string) ([]string, error) {
	rows, err := d.db.Query(`
		SELECT ra.area
		FROM region_areas ra
		JOIN regions r ON ra.region_id = r.id
		WHERE r.name = ?
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query areas: %w", err)
	}
	defer rows.Close()

	var areas []string
	for rows.Next() {
		var area string
		if err := rows.Scan(&area); err != nil {
			return nil, fmt.Errorf("failed to scan area: %w", err)
		}
		areas = append(areas, area)
	}

	return areas, rows.Err()
}
