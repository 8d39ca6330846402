// Package worker processes catalog jobs delivered over Pub/Sub.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/api/models"
	"github.com/geosmoke/geosmoke/internal/area"
)

// Job types.
const (
	JobCatalogImport  = "catalog_import"
	JobCatalogReplace = "catalog_replace"
	JobFavoriteSet    = "favorite_set"
	JobHealthCheck    = "health_check"
)

// DefaultJobTimeout bounds a single job.
const DefaultJobTimeout = 30 * time.Second

// errPermanent marks a job that will fail again on redelivery.
var errPermanent = errors.New("permanent job failure")

// Job is a catalog job message.
type Job struct {
	JobType    string             `json:"job_type"`
	Areas      []models.AreaInput `json:"areas,omitempty"`
	DeviceID   string             `json:"deviceId,omitempty"`
	AreaID     string             `json:"areaId,omitempty"`
	IsFavorite *bool              `json:"isFavorite,omitempty"`
}

// Decision tells the transport what to do with a message.
type Decision int

const (
	// Ack removes the message from the subscription.
	Ack Decision = iota
	// Nack asks for redelivery.
	Nack
)

func (d Decision) String() string {
	if d == Nack {
		return "nack"
	}
	return "ack"
}

// Catalog is the area store the worker writes to.
type Catalog interface {
	Import(ctx context.Context, inputs []models.AreaInput) ([]*area.Area, error)
	ReplaceCatalog(ctx context.Context, inputs []models.AreaInput) ([]*area.Area, error)
	SetFavorite(ctx context.Context, deviceID, id string, favorite bool) (*area.Area, error)
	Count(ctx context.Context) (int, error)
}

// ProcessorConfig holds configuration for a Processor.
type ProcessorConfig struct {
	Catalog Catalog
	Logger  zerolog.Logger

	// JobTimeout bounds each job. Default: 30 seconds.
	JobTimeout time.Duration
}

// Processor decodes and runs catalog jobs.
type Processor struct {
	catalog    Catalog
	logger     zerolog.Logger
	jobTimeout time.Duration
	stats      *Stats
}

// Stats counts processed jobs.
type Stats struct {
	mu sync.RWMutex

	Processed int64
	Failed    int64
	Skipped   int64
	LastJobAt time.Time
	LastJob   string
}

// NewProcessor creates a new job processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	timeout := cfg.JobTimeout
	if timeout == 0 {
		timeout = DefaultJobTimeout
	}
	return &Processor{
		catalog:    cfg.Catalog,
		logger:     cfg.Logger,
		jobTimeout: timeout,
		stats:      &Stats{},
	}
}

// Handle runs the job encoded in data. Unknown job types and jobs that can
// never succeed are acknowledged so they are not redelivered; transient
// failures are negatively acknowledged.
func (p *Processor) Handle(ctx context.Context, data []byte) Decision {
	start := time.Now()

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		p.logger.Error().Err(err).Msg("discarding malformed job")
		p.record("", false, true)
		return Ack
	}

	logger := p.logger.With().Str("job_type", job.JobType).Logger()

	ctx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	var err error
	switch job.JobType {
	case JobCatalogImport:
		err = p.catalogImport(ctx, job)
	case JobCatalogReplace:
		err = p.catalogReplace(ctx, job)
	case JobFavoriteSet:
		err = p.favoriteSet(ctx, job)
	case JobHealthCheck:
		err = p.healthCheck(ctx)
	default:
		logger.Warn().Msg("unknown job type")
		p.record(job.JobType, false, true)
		return Ack
	}

	if errors.Is(err, errPermanent) {
		logger.Error().Err(err).Msg("discarding job that cannot succeed")
		p.record(job.JobType, false, true)
		return Ack
	}
	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		p.record(job.JobType, false, false)
		return Nack
	}

	logger.Info().Dur("duration", time.Since(start)).Msg("job completed successfully")
	p.record(job.JobType, true, false)
	return Ack
}

func (p *Processor) catalogImport(ctx context.Context, job Job) error {
	if len(job.Areas) == 0 {
		return fmt.Errorf("%w: no areas to import", errPermanent)
	}
	imported, err := p.catalog.Import(ctx, job.Areas)
	if err != nil {
		return classify(err)
	}
	p.logger.Info().Int("count", len(imported)).Msg("catalog import applied")
	return nil
}

// catalogReplace refuses an empty area list. A job whose areas key is
// missing or misspelled would otherwise wipe the catalog.
func (p *Processor) catalogReplace(ctx context.Context, job Job) error {
	if len(job.Areas) == 0 {
		return fmt.Errorf("%w: refusing to replace the catalog with no areas", errPermanent)
	}
	replaced, err := p.catalog.ReplaceCatalog(ctx, job.Areas)
	if err != nil {
		return classify(err)
	}
	p.logger.Info().Int("count", len(replaced)).Msg("catalog replace applied")
	return nil
}

func (p *Processor) favoriteSet(ctx context.Context, job Job) error {
	if job.DeviceID == "" || job.AreaID == "" || job.IsFavorite == nil {
		return fmt.Errorf("%w: deviceId, areaId and isFavorite are required", errPermanent)
	}
	if _, err := p.catalog.SetFavorite(ctx, job.DeviceID, job.AreaID, *job.IsFavorite); err != nil {
		return classify(err)
	}
	return nil
}

func (p *Processor) healthCheck(ctx context.Context) error {
	n, err := p.catalog.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting areas: %w", err)
	}
	p.logger.Debug().Int("areas", n).Msg("health check passed")
	return nil
}

// classify marks validation and not-found errors as permanent.
func classify(err error) error {
	var validationErr *area.ValidationError
	if errors.As(err, &validationErr) || errors.Is(err, area.ErrAreaNotFound) ||
		errors.Is(err, area.ErrDeviceRequired) {
		return fmt.Errorf("%w: %w", errPermanent, err)
	}
	return err
}

func (p *Processor) record(jobType string, ok, skipped bool) {
	p.stats.mu.Lock()
	defer p.stats.mu.Unlock()

	switch {
	case ok:
		p.stats.Processed++
	case skipped:
		p.stats.Skipped++
	default:
		p.stats.Failed++
	}
	p.stats.LastJobAt = time.Now()
	p.stats.LastJob = jobType
}

// Stats returns a copy of the current counters.
func (p *Processor) Stats() Stats {
	p.stats.mu.RLock()
	defer p.stats.mu.RUnlock()

	return Stats{
		Processed: p.stats.Processed,
		Failed:    p.stats.Failed,
		Skipped:   p.stats.Skipped,
		LastJobAt: p.stats.LastJobAt,
		LastJob:   p.stats.LastJob,
	}
}
