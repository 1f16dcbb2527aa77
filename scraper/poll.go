package scraper

import (
	"context"
	"time"

	"dispodeals/models"
)

// pollItems re-runs the pipeline on fresh snapshots until it finds at least
// one item, the attempt budget runs out, or ctx is done. Attempts do not
// share results.
func (p *Parser) pollItems(ctx context.Context, source DocumentSource, site models.Site) []models.ParsedItem {
	var items []models.ParsedItem
	for attempt := 1; attempt <= p.cfg.PollAttempts; attempt++ {
		items = p.parseSnapshot(ctx, source, site)
		if len(items) > 0 {
			if attempt > 1 {
				p.debugf("site=%s items appeared after %d attempts", site, attempt)
			}
			return items
		}
		if attempt == p.cfg.PollAttempts {
			break
		}

		timer := time.NewTimer(p.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.debugf("site=%s polling cancelled after %d attempts", site, attempt)
			return items
		case <-timer.C:
		}
	}
	p.debugf("site=%s no items after %d attempts", site, p.cfg.PollAttempts)
	return items
}
