package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"homescout/server/config"
	"homescout/server/internal/ingest"
)

// JobType represents different types of ingest jobs
type JobType int

const (
	JobTypeSale JobType = iota
	JobTypeLease
	JobTypeFull
)

// String returns the string representation of a JobType
func (j JobType) String() string {
	switch j {
	case JobTypeSale:
		return "sale"
	case JobTypeLease:
		return "lease"
	case JobTypeFull:
		return "full"
	default:
		return "unknown"
	}
}

// Scheduler manages periodic feed ingest runs
type Scheduler struct {
	feed         *ingest.FeedClient
	logger       *logrus.Logger
	stopChan     chan struct{}
	wg           sync.WaitGroup
	cities       []string
	jobMutex     sync.Mutex // Ensures sequential job execution
	isStartupRun bool       // Tracks whether we're in startup run
}

// NewScheduler creates a new scheduler
func NewScheduler(feed *ingest.FeedClient, logger *logrus.Logger, cities []string) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		feed:         feed,
		logger:       logger,
		stopChan:     make(chan struct{}),
		cities:       cities,
		isStartupRun: true, // Initialize as true for startup
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Run startup jobs in a separate goroutine
	go func() {
		s.jobMutex.Lock()
		defer s.jobMutex.Unlock()
		s.logger.Info("Running startup ingest jobs")
		s.runSaleIngest()
		s.isStartupRun = false // Mark startup as complete
		s.logger.Info("Startup ingest jobs completed")
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// executeScheduledJobs runs all jobs that are scheduled for the given time
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	// Skip if we're still running startup jobs
	if s.isStartupRun {
		s.logger.Debug("Skipping scheduled jobs while startup is in progress")
		return
	}

	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.WithFields(logrus.Fields{
		"hour":   t.Hour(),
		"minute": t.Minute(),
	}).Debug("Checking scheduled jobs")

	// Lease listings churn slower; refresh them once a day at midnight
	if t.Hour() == 0 && t.Minute() == 0 {
		s.logger.Info("Starting scheduled lease ingest jobs")
		s.runLeaseIngest()
		s.logger.Info("Completed scheduled lease ingest jobs")
	}

	// Sale listings refresh every hour
	if t.Minute() == 0 {
		s.logger.Info("Starting scheduled sale ingest jobs")
		s.runSaleIngest()
		s.logger.Info("Completed scheduled sale ingest jobs")
	}
}

// runSaleIngest ingests sale listings for all configured cities sequentially
func (s *Scheduler) runSaleIngest() {
	s.runIngest(JobTypeSale, "Sale")
}

// runLeaseIngest ingests lease listings for all configured cities sequentially
func (s *Scheduler) runLeaseIngest() {
	s.runIngest(JobTypeLease, "Lease")
}

func (s *Scheduler) runIngest(jobType JobType, listingType string) {
	s.logger.WithField("job_type", jobType.String()).Info("Starting ingest run")
	for _, city := range s.cities {
		normalizedCity := config.NormalizeCity(city)
		s.logger.WithFields(logrus.Fields{
			"city":            city,
			"normalized_city": normalizedCity,
			"job_type":        jobType.String(),
		}).Info("Starting ingest job")

		err := s.feed.Run(context.Background(), ingest.FeedParams{
			City:        normalizedCity,
			ListingType: listingType,
		})
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"city":            city,
				"normalized_city": normalizedCity,
				"job_type":        jobType.String(),
			}).Error("Ingest job failed")
		} else {
			s.logger.WithFields(logrus.Fields{
				"city":            city,
				"normalized_city": normalizedCity,
				"job_type":        jobType.String(),
			}).Info("Ingest job completed successfully")
		}
	}
}

// RunCity runs a one-off ingest for a single city, used by the refresh API.
func (s *Scheduler) RunCity(ctx context.Context, city string) error {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	normalizedCity := config.NormalizeCity(city)
	s.logger.WithFields(logrus.Fields{
		"city":            city,
		"normalized_city": normalizedCity,
		"job_type":        JobTypeFull.String(),
	}).Info("Starting on-demand ingest")

	if err := s.feed.Run(ctx, ingest.FeedParams{City: normalizedCity, ListingType: "Sale"}); err != nil {
		return err
	}
	return s.feed.Run(ctx, ingest.FeedParams{City: normalizedCity, ListingType: "Lease"})
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
