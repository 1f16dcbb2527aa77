package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"dispodeals/dom"
	"dispodeals/models"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const systemChromium = "/usr/bin/chromium-browser"

// BrowserConfig configures the headless browser used for live scans
type BrowserConfig struct {
	BinPath     string
	Headless    bool
	PageTimeout time.Duration
}

// Browser scans live menu pages through a headless Chromium
type Browser struct {
	browser *rod.Browser
	parser  *Parser
	gate    *GateDetector
	cfg     BrowserConfig
}

// Session is one open menu page. It implements DocumentSource.
type Session struct {
	URL  string
	page *rod.Page
	last *dom.HTMLDocument
}

// serializeDOM renders the live page as HTML, writing every open shadow
// root as a declarative <template shadowrootmode="open">. Script and style
// bodies are dropped; the elements stay so child indexes line up.
const serializeDOM = `() => {
	const VOID = new Set(["area","base","br","col","embed","hr","img","input","link","meta","source","track","wbr"]);
	const esc = (s) => s.replace(/&/g, "&amp;").replace(/</g, "&lt;").replace(/>/g, "&gt;");
	const escAttr = (s) => s.replace(/&/g, "&amp;").replace(/"/g, "&quot;");
	const ser = (n) => {
		if (n.nodeType === Node.TEXT_NODE) return esc(n.data);
		if (n.nodeType !== Node.ELEMENT_NODE) return "";
		const tag = n.tagName.toLowerCase();
		let out = "<" + tag;
		for (const a of n.attributes) out += " " + a.name + "=\"" + escAttr(a.value) + "\"";
		out += ">";
		if (VOID.has(tag)) return out;
		if (n.shadowRoot) {
			out += "<template shadowrootmode=\"open\">";
			for (const c of n.shadowRoot.childNodes) out += ser(c);
			out += "</template>";
		}
		if (tag !== "script" && tag !== "style") {
			const kids = tag === "template" ? n.content.childNodes : n.childNodes;
			for (const c of kids) out += ser(c);
		}
		return out + "</" + tag + ">";
	};
	return "<!DOCTYPE html>" + ser(document.documentElement);
}`

// applyMarkers sets marker attributes by element path, skipping any
// element whose tag no longer matches
const applyMarkers = `(markers, attr) => {
	let applied = 0;
	for (const m of markers) {
		let el = document.documentElement;
		for (let i = 0; el && i < m.path.length; i++) {
			el = m.path[i] === -1 ? el.shadowRoot : el.children[m.path[i]];
		}
		if (!el || !el.tagName || el.tagName.toLowerCase() !== m.tag) continue;
		el.setAttribute(attr, m.value);
		applied++;
	}
	return applied;
}`

// clearMarkers removes marker attributes everywhere, shadow roots included
const clearMarkers = `(attr) => {
	let removed = 0;
	const clear = (root) => {
		for (const el of root.querySelectorAll("[" + attr + "]")) {
			el.removeAttribute(attr);
			removed++;
		}
		for (const el of root.querySelectorAll("*")) {
			if (el.shadowRoot) clear(el.shadowRoot);
		}
	};
	clear(document);
	return removed;
}`

const pageSummary = `() => ({
	title: document.title || "",
	text: document.body ? document.body.innerText : ""
})`

// NewBrowser launches Chromium. An empty BinPath uses the system Chromium
// when present and otherwise lets rod pick or download a browser.
func NewBrowser(cfg BrowserConfig, parser *Parser) (*Browser, error) {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true).
		Leakless(false)

	switch {
	case cfg.BinPath != "":
		l = l.Bin(cfg.BinPath)
		log.Printf("Using configured browser binary: %s", cfg.BinPath)
	default:
		if _, err := os.Stat(systemChromium); err == nil {
			l = l.Bin(systemChromium)
			log.Printf("Using system Chromium")
		} else {
			log.Printf("Using auto-detected Chromium")
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	log.Printf("🌐 Browser ready at %s", controlURL)

	if parser == nil {
		parser = NewParser(DefaultConfig())
	}
	return &Browser{
		browser: browser,
		parser:  parser,
		gate:    NewGateDetector(),
		cfg:     cfg,
	}, nil
}

// Close shuts the browser down
func (b *Browser) Close() error {
	if b.browser == nil {
		return nil
	}
	return b.browser.Close()
}

// Open loads url in a new stealth page and waits for the load event
func (b *Browser) Open(ctx context.Context, url string) (*Session, error) {
	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		log.Printf("⚠️  Failed to set viewport: %v", err)
	}

	loadCtx, cancel := context.WithTimeout(ctx, b.cfg.PageTimeout)
	defer cancel()
	p := page.Context(loadCtx)
	if err := p.Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("wait load %s: %w", url, err)
	}
	return &Session{URL: url, page: page}, nil
}

// Snapshot serializes the live DOM, shadow roots included, and parses it
func (s *Session) Snapshot(ctx context.Context) (dom.Document, error) {
	res, err := s.page.Context(ctx).Eval(serializeDOM)
	if err != nil {
		return nil, fmt.Errorf("serialize page: %w", err)
	}
	doc, err := dom.ParseHTMLString(res.Value.Str())
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	s.last = doc
	return doc, nil
}

// LastSnapshot returns the most recent snapshot, or nil
func (s *Session) LastSnapshot() *dom.HTMLDocument {
	return s.last
}

// ApplyMarkers replaces the markers on the live page with the ones set on
// doc
func (s *Session) ApplyMarkers(ctx context.Context, doc *dom.HTMLDocument) (int, error) {
	if doc == nil {
		return 0, nil
	}
	if _, err := s.Clear(ctx); err != nil {
		return 0, err
	}
	markers := doc.Markers(MarkerAttr)
	if len(markers) == 0 {
		return 0, nil
	}
	res, err := s.page.Context(ctx).Eval(applyMarkers, markers, MarkerAttr)
	if err != nil {
		return 0, fmt.Errorf("apply markers: %w", err)
	}
	return res.Value.Int(), nil
}

// Clear removes every marker from the live page
func (s *Session) Clear(ctx context.Context) (int, error) {
	res, err := s.page.Context(ctx).Eval(clearMarkers, MarkerAttr)
	if err != nil {
		return 0, fmt.Errorf("clear markers: %w", err)
	}
	return res.Value.Int(), nil
}

// Summary returns the page title and visible text
func (s *Session) Summary(ctx context.Context) (title, text string, err error) {
	res, err := s.page.Context(ctx).Eval(pageSummary)
	if err != nil {
		return "", "", fmt.Errorf("read page text: %w", err)
	}
	return res.Value.Get("title").Str(), res.Value.Get("text").Str(), nil
}

// Close closes the page
func (s *Session) Close() error {
	return s.page.Close()
}

// ScanURL opens a menu page, scans it and tags the matched cards on the
// live page. Pages showing no items are checked for age gates and bot walls.
func (b *Browser) ScanURL(ctx context.Context, url string) (*models.ScanResult, error) {
	start := time.Now()
	site := models.DetectSite(url)
	if !site.Supported() {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedSite, url)
	}

	log.Printf("🔍 Scanning %s menu: %s", site.DisplayName(), url)
	sess, err := b.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	items := b.parser.Scan(ctx, sess, site)
	result := &models.ScanResult{
		URL:       url,
		Site:      site,
		Items:     items,
		Count:     len(items),
		ScannedAt: start,
	}

	if len(items) == 0 {
		if title, text, err := sess.Summary(ctx); err == nil {
			if gated, kind, reason := b.gate.Detect(text, title); gated {
				log.Printf("🚧 %s looks gated (%s): %s", url, kind, reason)
				result.Gated = true
				result.GateKind = kind
				result.GateReason = reason
			}
		}
	} else {
		applied, err := sess.ApplyMarkers(ctx, sess.LastSnapshot())
		if err != nil {
			log.Printf("⚠️  Failed to mark cards on %s: %v", url, err)
		}
		result.MarkersSet = applied
	}

	result.DurationSec = time.Since(start).Seconds()
	log.Printf("✅ Scanned %s: %d items in %.1fs", url, result.Count, result.DurationSec)
	return result, nil
}
