package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		Port string `env:"PORT" envDefault:"5250"`
	}

	// Database configuration
	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"data/listings.db"`
	}

	// Feed configuration for the upstream listings API
	Feed struct {
		BaseURL string `env:"FEED_BASE_URL" envDefault:"https://api.repliers.io"`

		APIKey string `env:"FEED_API_KEY"`

		// Outbound request rate towards the feed (requests per second)
		RequestsPerSec float64 `env:"FEED_REQUESTS_PER_SEC" envDefault:"2"`

		// Listings per feed page
		PageSize int `env:"FEED_PAGE_SIZE" envDefault:"100"`

		// Upper bound on pages per ingest run
		MaxPages int `env:"FEED_MAX_PAGES" envDefault:"50"`
	}

	// Pipeline configuration
	Pipeline struct {
		// Debounce window for viewport-driven fetches (in milliseconds)
		DebounceMs int `env:"PIPELINE_DEBOUNCE_MS" envDefault:"500"`

		// Listings requested per fetch
		PageSize int `env:"PIPELINE_PAGE_SIZE" envDefault:"200"`
	}

	// Geocoding configuration
	Geocoding struct {
		CacheDir string `env:"GEOCODE_CACHE_DIR" envDefault:"data/geocode"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of listings to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Queue buffer size in batches
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
