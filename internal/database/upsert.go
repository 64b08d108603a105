package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"homescout/server/internal/models"
)

// UpsertListings writes a batch of listings, replacing rows that share an
// MLS number. Feed rows carry the full record, so conflicting rows are
// overwritten column by column rather than merged.
func UpsertListings(tx *gorm.DB, batch []*models.Listing) error {
	if len(batch) == 0 {
		return nil
	}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "mls_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"address",
			"city",
			"area",
			"neighbourhood",
			"type",
			"status",
			"property_type",
			"sub_property_type",
			"list_price",
			"bedrooms",
			"bathrooms",
			"square_feet_min",
			"square_feet_max",
			"latitude",
			"longitude",
			"listed_at",
			"updated_at",
			"developer",
			"construction_status",
			"selling_status",
			"completion_date",
			"unit_type",
			"storeys",
			"suites",
		}),
	}).Create(batch).Error
	if err != nil {
		return fmt.Errorf("failed to upsert listings: %w", err)
	}

	return nil
}
