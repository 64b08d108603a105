// Package ingest pulls listings from the upstream feed into the local store.
// The feed client paginates per city and pushes each page onto the listing
// queue; the batch processor drains the queue into sqlite.
package ingest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"homescout/server/internal/listings"
	"homescout/server/internal/metrics"
	"homescout/server/internal/models"
	"homescout/server/internal/queue"
)

// FeedClient walks the upstream feed page by page.
type FeedClient struct {
	source   listings.Source
	queue    *queue.ListingQueue
	logger   *logrus.Logger
	pageSize int
	maxPages int
}

// FeedParams scopes one ingest run.
type FeedParams struct {
	City        string `json:"city"`
	ListingType string `json:"listing_type"` // "Sale", "Lease" or "" for both
	MaxPages    *int   `json:"max_pages"`    // optional page cap
}

// NewFeedClient creates a feed client. pageSize caps listings per request;
// maxPages caps a full run so a misbehaving feed cannot loop forever.
func NewFeedClient(source listings.Source, q *queue.ListingQueue, pageSize, maxPages int, logger *logrus.Logger) *FeedClient {
	if pageSize <= 0 {
		pageSize = 100
	}
	if maxPages <= 0 {
		maxPages = 50
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return &FeedClient{
		source:   source,
		queue:    q,
		logger:   logger,
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

// Run ingests all pages for the given parameters. A short page ends the
// walk; an empty first page is not an error, the market can be quiet.
func (f *FeedClient) Run(ctx context.Context, params FeedParams) error {
	f.logger.WithFields(logrus.Fields{
		"city":         params.City,
		"listing_type": params.ListingType,
		"max_pages":    params.MaxPages,
	}).Info("Starting feed ingest")

	maxPages := f.maxPages
	if params.MaxPages != nil && *params.MaxPages > 0 && *params.MaxPages < maxPages {
		maxPages = *params.MaxPages
	}

	var total int
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("ingest cancelled: %w", err)
		}

		q := listings.Query{
			Status:         "A",
			City:           params.City,
			Type:           params.ListingType,
			ResultsPerPage: f.pageSize,
			PageNum:        page,
		}

		records, err := f.source.Search(ctx, q)
		if err != nil {
			return fmt.Errorf("failed to fetch feed page %d: %w", page, err)
		}
		metrics.FeedPagesFetched.Inc()

		if len(records) == 0 {
			break
		}

		batch := make([]*models.Listing, 0, len(records))
		for i := range records {
			batch = append(batch, &records[i])
		}
		if err := f.queue.Push(batch); err != nil {
			return fmt.Errorf("failed to enqueue feed page %d: %w", page, err)
		}
		total += len(records)

		if len(records) < f.pageSize {
			break
		}
	}

	f.logger.WithFields(logrus.Fields{
		"city":  params.City,
		"total": total,
	}).Info("Feed ingest complete")

	return nil
}
