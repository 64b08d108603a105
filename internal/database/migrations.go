package database

import "fmt"

func (d *Database) RunMigrations() error {
	// Create the listings table
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			mls_number TEXT PRIMARY KEY,
			address TEXT,
			city TEXT,
			area TEXT,
			neighbourhood TEXT,
			type TEXT,
			status TEXT,
			property_type TEXT,
			sub_property_type TEXT,
			list_price INTEGER,
			bedrooms INTEGER,
			bathrooms INTEGER,
			square_feet_min INTEGER,
			square_feet_max INTEGER,
			latitude REAL,
			longitude REAL,
			listed_at TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			developer TEXT,
			construction_status TEXT,
			selling_status TEXT,
			completion_date TEXT,
			unit_type TEXT,
			storeys INTEGER,
			suites INTEGER
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create listings table: %w", err)
	}

	// Create regions table
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS regions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create regions table: %w", err)
	}

	// Create region areas table without the foreign key constraint
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS region_areas (
			region_id INTEGER,
			area TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (region_id, area)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create region_areas table: %w", err)
	}

	// Create spatial index on coordinates
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_listings_coordinates
		ON listings(latitude, longitude);
	`)
	if err != nil {
		return err
	}

	// Query-shaped index for the common city + status + price scans
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_listings_city_status_price
		ON listings(city, status, list_price);
	`)
	if err != nil {
		return err
	}

	return nil
}
