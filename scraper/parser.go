package scraper

import (
	"context"
	"log"
	"time"

	"dispodeals/dom"
	"dispodeals/models"
)

// Config controls a Parser
type Config struct {
	DebugLogging bool
	PollAttempts int           // scans of an async-rendering page before giving up
	PollInterval time.Duration // delay between those scans
}

// DefaultConfig returns the parser defaults: up to 30 polls 500ms apart
func DefaultConfig() Config {
	return Config{
		PollAttempts: 30,
		PollInterval: 500 * time.Millisecond,
	}
}

// DocumentSource yields the current state of a page
type DocumentSource interface {
	Snapshot(ctx context.Context) (dom.Document, error)
}

// StaticSource is a DocumentSource over an already-parsed document
type StaticSource struct {
	Doc dom.Document
}

// Snapshot returns the wrapped document
func (s StaticSource) Snapshot(context.Context) (dom.Document, error) {
	return s.Doc, nil
}

// Parser runs the locate, assemble and score pipeline over menu pages.
// A Parser holds no per-scan state and can be shared.
type Parser struct {
	cfg Config
}

// NewParser creates a parser; zero poll settings take the defaults
func NewParser(cfg Config) *Parser {
	def := DefaultConfig()
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = def.PollAttempts
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	return &Parser{cfg: cfg}
}

// Config returns the effective configuration
func (p *Parser) Config() Config {
	return p.cfg
}

// ParseItems runs one locator and assembler pass over doc.
// Matched containers are tagged with MarkerAttr.
func (p *Parser) ParseItems(doc dom.Document, site models.Site) (items []models.ParsedItem) {
	defer func() {
		if r := recover(); r != nil {
			p.debugf("parse failed site=%s: %v", site, r)
			items = []models.ParsedItem{}
		}
	}()

	if doc == nil || safeBody(doc) == nil {
		return []models.ParsedItem{}
	}
	candidates := FindCardCandidates(doc, site)
	items = AssembleItems(candidates, site)
	p.debugf("site=%s candidates=%d items=%d", site, len(candidates), len(items))
	return items
}

// Scan parses and scores the page behind source. It never fails: an
// unsupported site, a snapshot error or a panic all yield an empty list.
// Async-rendering sites are polled until items show up.
func (p *Parser) Scan(ctx context.Context, source DocumentSource, site models.Site) (scored []models.ScoredItem) {
	defer func() {
		if r := recover(); r != nil {
			p.debugf("scan failed site=%s: %v", site, r)
			scored = []models.ScoredItem{}
		}
	}()

	if !site.Supported() {
		p.debugf("unsupported site %q", site)
		return []models.ScoredItem{}
	}
	if source == nil {
		return []models.ScoredItem{}
	}

	var items []models.ParsedItem
	if site.RendersAsync() {
		items = p.pollItems(ctx, source, site)
	} else {
		items = p.parseSnapshot(ctx, source, site)
	}
	return ScoreItems(items)
}

func (p *Parser) parseSnapshot(ctx context.Context, source DocumentSource, site models.Site) []models.ParsedItem {
	doc, err := source.Snapshot(ctx)
	if err != nil {
		p.debugf("snapshot failed site=%s: %v", site, err)
		return nil
	}
	return p.ParseItems(doc, site)
}

func (p *Parser) debugf(format string, args ...interface{}) {
	if p.cfg.DebugLogging {
		log.Printf("[parse] "+format, args...)
	}
}
