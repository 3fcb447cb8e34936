package sync

import (
	"errors"
	"fmt"
	stdsync "sync"

	"billzsync/internal/catalog"
	"billzsync/internal/config"
	"billzsync/internal/models"
	"billzsync/internal/services/billz"

	"github.com/rs/zerolog"
)

// ErrRunInProgress is returned when a sync is triggered while another run is
// still queued or running.
var ErrRunInProgress = errors.New("sync run already in progress")

// Fetcher pulls the full remote product set for one shop.
type Fetcher interface {
	FetchAll(shopID string) ([]billz.Product, error)
}

// MappingSource supplies the attribute-mapping table, re-read at the start
// of every run so admin edits take effect without a restart.
type MappingSource interface {
	Mappings() ([]models.AttributeMapping, error)
}

// RunStore persists sync-run audit rows.
type RunStore interface {
	Active() (*models.SyncRun, error)
	Create(status string) (*models.SyncRun, error)
	Claim(id string) (*models.SyncRun, error)
	Finish(run *models.SyncRun) error
}

// Pipeline wires fetch, group, stage, reconcile and sweep into one run.
// Runs are strictly sequential: a second trigger while one is active gets
// ErrRunInProgress.
type Pipeline struct {
	fetcher  Fetcher
	mappings MappingSource
	terms    TermResolver
	media    MediaResolver
	staging  StagingStore
	catalog  catalog.Store
	notifier Notifier
	runs     RunStore
	cfg      *config.Config
	logger   zerolog.Logger

	mu stdsync.Mutex
}

func NewPipeline(
	fetcher Fetcher,
	mappings MappingSource,
	terms TermResolver,
	media MediaResolver,
	staging StagingStore,
	cat catalog.Store,
	notifier Notifier,
	runs RunStore,
	cfg *config.Config,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		mappings: mappings,
		terms:    terms,
		media:    media,
		staging:  staging,
		catalog:  cat,
		notifier: notifier,
		runs:     runs,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes a sync synchronously. It refuses to start while another run
// is queued or running.
func (p *Pipeline) Run() (*models.SyncRun, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	active, err := p.runs.Active()
	if err != nil {
		return nil, fmt.Errorf("failed to check active run: %w", err)
	}
	if active != nil {
		return active, ErrRunInProgress
	}

	run, err := p.runs.Create(models.RunRunning)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	p.execute(run)
	return run, nil
}

// RunQueued executes a previously scheduled run, identified by the id the
// schedule endpoint enqueued. A run that was already claimed or removed is
// skipped silently so duplicate queue deliveries stay harmless.
func (p *Pipeline) RunQueued(runID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	run, err := p.runs.Claim(runID)
	if err != nil {
		return fmt.Errorf("failed to claim run %s: %w", runID, err)
	}
	if run == nil {
		p.logger.Warn().Str("run_id", runID).Msg("queued run already claimed, skipping")
		return nil
	}

	p.execute(run)
	return nil
}

// execute performs the run and records its outcome. Fetch failures abort the
// run before any staging write; everything after fetch is per-record
// tolerant.
func (p *Pipeline) execute(run *models.SyncRun) {
	logger := p.logger.With().Str("run_id", run.ID).Logger()
	logger.Info().Str("shop_id", p.cfg.ShopID).Msg("sync run starting")

	products, err := p.fetcher.FetchAll(p.cfg.ShopID)
	if err != nil {
		p.fail(run, fmt.Errorf("fetch failed: %w", err), logger)
		return
	}
	run.Fetched = len(products)

	mappings, err := p.mappings.Mappings()
	if err != nil {
		p.fail(run, fmt.Errorf("failed to load attribute mappings: %w", err), logger)
		return
	}

	grouper := NewGrouper(mappings, p.terms, p.media, logger)
	records := grouper.Group(products)

	stager := NewStager(p.staging, logger)
	staged, err := stager.Stage(records)
	if err != nil {
		p.fail(run, err, logger)
		return
	}
	run.Staged = staged

	reconciler := NewReconciler(p.staging, p.catalog, p.notifier, p.cfg.Policies, logger)
	stats, err := reconciler.Reconcile()
	if err != nil {
		p.fail(run, err, logger)
		return
	}
	run.Created = stats.Created
	run.Updated = stats.Updated
	run.Promoted = stats.Promoted

	sweeper := NewSweeper(p.staging, p.catalog, logger)
	swept, err := sweeper.Sweep(remoteIDs(products))
	if err != nil {
		p.fail(run, err, logger)
		return
	}
	run.Swept = swept

	run.Status = models.RunCompleted
	if err := p.runs.Finish(run); err != nil {
		logger.Error().Err(err).Msg("failed to persist run result")
	}

	logger.Info().
		Int("fetched", run.Fetched).
		Int("staged", run.Staged).
		Int("created", run.Created).
		Int("updated", run.Updated).
		Int("promoted", run.Promoted).
		Int("swept", run.Swept).
		Msg("sync run completed")
}

func (p *Pipeline) fail(run *models.SyncRun, err error, logger zerolog.Logger) {
	run.Status = models.RunFailed
	run.Error = err.Error()
	if ferr := p.runs.Finish(run); ferr != nil {
		logger.Error().Err(ferr).Msg("failed to persist run failure")
	}
	logger.Error().Err(err).Msg("sync run failed")
}

func remoteIDs(products []billz.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
