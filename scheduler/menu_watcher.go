package scheduler

import (
	"context"
	"log"
	"time"

	"dispodeals/ingest"
	"dispodeals/models"

	"github.com/robfig/cron/v3"
)

// DefaultWatchSchedule scans watched menus every 6 hours
const DefaultWatchSchedule = "0 0 */6 * * *"

// Forwarder delivers scan payloads to the ingest backend
type Forwarder interface {
	Send(ctx context.Context, payload *models.ExtensionPayload, installID string) (*models.ExtensionIngestResponse, error)
}

// WatchReport summarizes one pass over the watched menus
type WatchReport struct {
	Scanned   int
	Forwarded int
	Gated     int
	Empty     int
	Failed    int
}

// MenuWatcher periodically scans configured menus and forwards the
// results for ingestion
type MenuWatcher struct {
	cron        *cron.Cron
	schedule    string
	urls        []string
	scanner     Scanner
	forwarder   Forwarder
	scanTimeout time.Duration
}

// NewMenuWatcher creates a watcher; an empty schedule uses DefaultWatchSchedule
func NewMenuWatcher(scanner Scanner, forwarder Forwarder, urls []string, schedule string) *MenuWatcher {
	if schedule == "" {
		schedule = DefaultWatchSchedule
	}
	return &MenuWatcher{
		cron:        cron.New(cron.WithSeconds()),
		schedule:    schedule,
		urls:        urls,
		scanner:     scanner,
		forwarder:   forwarder,
		scanTimeout: 2 * time.Minute,
	}
}

// Start schedules the watcher and runs a first pass immediately
func (mw *MenuWatcher) Start() error {
	if _, err := mw.cron.AddFunc(mw.schedule, func() { mw.RunOnce(context.Background()) }); err != nil {
		return err
	}

	go mw.RunOnce(context.Background())

	mw.cron.Start()
	log.Printf("⏰ Menu watcher scheduled (%s) for %d menus", mw.schedule, len(mw.urls))
	return nil
}

// Stop stops the schedule and waits for a running pass to finish
func (mw *MenuWatcher) Stop() {
	if mw.cron != nil {
		<-mw.cron.Stop().Done()
	}
}

// RunOnce scans every watched menu in order. Menus are scanned one at a
// time since they share a browser.
func (mw *MenuWatcher) RunOnce(ctx context.Context) WatchReport {
	var report WatchReport
	if len(mw.urls) == 0 {
		log.Println("No menus to watch")
		return report
	}

	log.Printf("Starting scheduled scan of %d menus", len(mw.urls))
	for _, url := range mw.urls {
		if ctx.Err() != nil {
			break
		}
		mw.watch(ctx, url, &report)
	}

	log.Printf("Menu watch done: scanned=%d forwarded=%d gated=%d empty=%d failed=%d",
		report.Scanned, report.Forwarded, report.Gated, report.Empty, report.Failed)
	return report
}

func (mw *MenuWatcher) watch(ctx context.Context, url string, report *WatchReport) {
	scanCtx, cancel := context.WithTimeout(ctx, mw.scanTimeout)
	defer cancel()

	result, err := mw.scanner.ScanURL(scanCtx, url)
	if err != nil {
		log.Printf("Failed to scan %s: %v", url, err)
		report.Failed++
		return
	}
	report.Scanned++

	switch {
	case result.Gated:
		log.Printf("🚧 Skipping %s: %s", url, result.GateReason)
		report.Gated++
		return
	case result.Count == 0:
		log.Printf("No items found on %s", url)
		report.Empty++
		return
	}

	counts := models.BadgeCounts(result.Items)
	log.Printf("📊 %s: %d items (worth=%d mid=%d taxed=%d)", url, result.Count,
		counts[models.BadgeWorth], counts[models.BadgeMid], counts[models.BadgeTaxed])

	payload := ingest.BuildPayload(result.Site, result.Items, url, result.ScannedAt)
	if _, err := mw.forwarder.Send(ctx, payload, ""); err != nil {
		log.Printf("Failed to forward %s: %v", url, err)
		report.Failed++
		return
	}
	report.Forwarded++
}
