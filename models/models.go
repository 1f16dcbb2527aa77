package models

import (
	"errors"
	"strconv"
	"time"
)

var (
	// ErrUnsupportedSite is returned when a URL or identifier names a platform with no parser
	ErrUnsupportedSite = errors.New("unsupported site")

	// ErrBrowserDisabled is returned when a live scan is requested without a browser
	ErrBrowserDisabled = errors.New("browser scanning is disabled")

	// ErrTaskNotFound is returned when a scan task id is unknown
	ErrTaskNotFound = errors.New("task not found")
)

// ProductType is the inferred category of a menu item
type ProductType string

const (
	ProductFlower      ProductType = "flower"
	ProductVape        ProductType = "vape"
	ProductConcentrate ProductType = "concentrate"
	ProductPreroll     ProductType = "preroll"
	ProductEdible      ProductType = "edible"
	ProductOther       ProductType = "other"
)

// Badge is the three-tier value classification shown to the user
type Badge string

const (
	BadgeWorth Badge = "worth"
	BadgeMid   Badge = "mid"
	BadgeTaxed Badge = "taxed"
)

// ParsedItem is a product detected on a menu page
type ParsedItem struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	ProductType  ProductType `json:"productType"`
	Price        float64     `json:"price"`
	WeightGrams  *float64    `json:"weightGrams,omitempty"`
	MgTotal      *float64    `json:"mgTotal,omitempty"`
	RawText      string      `json:"rawText"`
	NodeSelector string      `json:"nodeSelector,omitempty"`
}

// Weight returns the parsed weight in grams, if any
func (p *ParsedItem) Weight() (float64, bool) {
	if p.WeightGrams == nil {
		return 0, false
	}
	return *p.WeightGrams, true
}

// Mg returns the parsed total milligrams, if any
func (p *ParsedItem) Mg() (float64, bool) {
	if p.MgTotal == nil {
		return 0, false
	}
	return *p.MgTotal, true
}

// FingerprintKey identifies an item by its content (name, price, weight or potency).
// Used to re-match cached results after the page re-renders.
func (p *ParsedItem) FingerprintKey() string {
	amount := ""
	if w, ok := p.Weight(); ok {
		amount = FormatNumber(w)
	} else if mg, ok := p.Mg(); ok {
		amount = FormatNumber(mg) + "mg"
	}
	return p.Name + "|" + FormatNumber(p.Price) + "|" + amount
}

// Score is the value classification attached to an item
type Score struct {
	Badge       Badge   `json:"badge"`
	Label       string  `json:"label"`
	MetricLabel string  `json:"metricLabel"`
	MetricValue float64 `json:"metricValue"`
	Reason      string  `json:"reason"`
}

// Scored reports whether a unit price could be computed
func (s Score) Scored() bool {
	return s.MetricLabel != UnscoredMetricLabel
}

// UnscoredMetricLabel marks a score with no comparable unit price
const UnscoredMetricLabel = "—"

// ScoredItem is a parsed item with its score
type ScoredItem struct {
	ParsedItem
	Score Score `json:"score"`
}

// ScanResult is the outcome of scanning one live menu page
type ScanResult struct {
	URL         string       `json:"url"`
	Site        Site         `json:"site"`
	Items       []ScoredItem `json:"items"`
	Count       int          `json:"count"`
	Gated       bool         `json:"gated"`
	GateKind    string       `json:"gate_kind,omitempty"`
	GateReason  string       `json:"gate_reason,omitempty"`
	ScannedAt   time.Time    `json:"scanned_at"`
	MarkersSet  int          `json:"markers_set"`
	DurationSec float64      `json:"duration_sec"`
}

// BadgeCounts tallies items per badge
func BadgeCounts(items []ScoredItem) map[Badge]int {
	counts := map[Badge]int{BadgeWorth: 0, BadgeMid: 0, BadgeTaxed: 0}
	for _, it := range items {
		counts[it.Score.Badge]++
	}
	return counts
}

// FormatNumber renders a float the shortest way that round-trips ("28", "3.5")
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
