package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secops-lab/magerisk/pkg/domain/model"
	"github.com/secops-lab/magerisk/pkg/service/nvd"
	"github.com/secops-lab/magerisk/pkg/utils/logging"
)

// DefaultLookback bounds the first sync window when the worker has
// never run before.
const DefaultLookback = 7 * 24 * time.Hour

// Ingestor converts fetched CVE records into threats. Implemented by
// the threat usecase.
type Ingestor interface {
	UpsertFromCVE(ctx context.Context, item *nvd.CVEItem) (*model.Threat, error)
}

// CVESyncWorker manages background synchronization of CVE records from
// the NVD API into the threat catalog.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For future horizontal scaling, implement distributed locking or leader election
type CVESyncWorker struct {
	nvdService nvd.Service
	ingestor   Ingestor
	interval   time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	mu       sync.Mutex
	lastSync time.Time
}

// NewCVESyncWorker creates a new worker for synchronizing CVE records
func NewCVESyncWorker(nvdSvc nvd.Service, ingestor Ingestor, interval time.Duration) *CVESyncWorker {
	return &CVESyncWorker{
		nvdService: nvdSvc,
		ingestor:   ingestor,
		interval:   interval,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background sync loop
// - Initial sync and periodic sync both run in a background goroutine
// - Does not block server startup
func (w *CVESyncWorker) Start(ctx context.Context) error {
	logging.Default().Info("CVE sync worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *CVESyncWorker) Stop() {
	logging.Default().Info("CVE sync worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("CVE sync worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *CVESyncWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Initial sync (runs in goroutine, does not block server startup)
	if err := w.Sync(ctx); err != nil {
		logging.Default().Error("Initial CVE sync failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Sync(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("CVE sync failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("CVE sync worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("CVE sync worker context cancelled")
			return
		}
	}
}

// Sync performs a single synchronization cycle. The modification window
// starts at the previous successful sync, so records are not refetched.
// On failure the window is left untouched and the next cycle retries it.
func (w *CVESyncWorker) Sync(ctx context.Context) error {
	startTime := time.Now()

	w.mu.Lock()
	since := w.lastSync
	w.mu.Unlock()
	if since.IsZero() {
		since = startTime.Add(-DefaultLookback)
	}

	logging.Default().Info("Starting CVE sync", "since", since.Format(time.RFC3339))

	items, err := w.nvdService.FetchModifiedSince(ctx, since)
	if err != nil {
		return goerr.Wrap(err, "failed to fetch modified CVEs")
	}

	var ingested, failed int
	for i := range items {
		if _, err := w.ingestor.UpsertFromCVE(ctx, &items[i]); err != nil {
			// A broken record must not abort the rest of the batch
			failed++
			logging.Default().Error("Failed to ingest CVE",
				"cve_id", items[i].ID,
				"error", err.Error())
			continue
		}
		ingested++
	}

	if failed > 0 && ingested == 0 && len(items) > 0 {
		return goerr.New("CVE sync ingested no records", goerr.V("failed", failed))
	}

	w.mu.Lock()
	w.lastSync = startTime
	w.mu.Unlock()

	logging.Default().Info("CVE sync completed",
		"fetched", len(items),
		"ingested", ingested,
		"failed", failed,
		"duration", time.Since(startTime).String())

	return nil
}
