package models

import "time"

// Deal is a raw scraped record accepted by the ingest endpoint.
// Enrichment fields stay empty until AI normalization is wired.
type Deal struct {
	DealID          string    `json:"deal_id" db:"deal_id"`
	DispensaryName  string    `json:"dispensary_name" db:"dispensary_name"`
	Location        string    `json:"location" db:"location"`
	RawText         string    `json:"raw_text" db:"raw_text"`
	ProductName     string    `json:"product_name" db:"product_name"`
	Price           string    `json:"price" db:"price"`
	Weight          string    `json:"weight" db:"weight"`
	THC             string    `json:"thc" db:"thc"`
	URL             string    `json:"url" db:"url"`
	DetectedAt      string    `json:"detected_at" db:"detected_at"`
	Category        string    `json:"category" db:"category"`
	DealType        string    `json:"deal_type" db:"deal_type"`
	NormalizedPrice string    `json:"normalized_price" db:"normalized_price"`
	PricePerUnit    string    `json:"price_per_unit" db:"price_per_unit"`
	QuickScore      *float64  `json:"quick_score" db:"quick_score"`
	Summary         string    `json:"summary" db:"summary"`
	Source          string    `json:"source" db:"source"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// IngestResponse is returned for an accepted deal. Empty enrichment
// fields are omitted rather than fabricated.
type IngestResponse struct {
	OK              bool     `json:"ok"`
	DealID          string   `json:"deal_id"`
	Category        string   `json:"category,omitempty"`
	DealType        string   `json:"deal_type,omitempty"`
	NormalizedPrice string   `json:"normalized_price,omitempty"`
	PricePerUnit    string   `json:"price_per_unit,omitempty"`
	QuickScore      *float64 `json:"quick_score,omitempty"`
	Summary         string   `json:"summary,omitempty"`
}

// EnhancedResponse is the placeholder payload for enriched deal lookups
type EnhancedResponse struct {
	DispoScore     *float64 `json:"dispo_score"`
	CommunityVotes *int     `json:"community_votes"`
	Warning        *string  `json:"warning"`
	Deals          []Deal   `json:"deals"`
}

// Deal sources
const (
	DealSourceManual    = "manual"
	DealSourceExtension = "extension"
)

// ValidationError describes why an ingest payload was rejected
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ExtensionPayload is the batch payload produced after a menu scan
type ExtensionPayload struct {
	Source       string         `json:"source"`
	PageURL      string         `json:"page_url"`
	CapturedAt   string         `json:"captured_at"`
	Dispensary   DispensaryHint `json:"dispensary"`
	DealsRaw     []RawDeal      `json:"deals_raw"`
	MenuItemsRaw []RawMenuItem  `json:"menu_items_raw"`
	ParserMeta   ParserMeta     `json:"parser_meta"`
}

// DispensaryHint carries best-effort dispensary identification
type DispensaryHint struct {
	NameGuess    *string `json:"name_guess"`
	LocationHint *string `json:"location_hint"`
}

// RawDeal is one scored item rendered as a deal observation
type RawDeal struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	PriceText    *string `json:"price_text"`
	DiscountText *string `json:"discount_text"`
	ProductName  *string `json:"product_name"`
	Brand        *string `json:"brand"`
	Category     *string `json:"category"`
}

// RawMenuItem is one scored item rendered as a menu entry
type RawMenuItem struct {
	Name      string  `json:"name"`
	Brand     *string `json:"brand"`
	Category  *string `json:"category"`
	PriceText *string `json:"price_text"`
	THCText   *string `json:"thc_text"`
	RawText   *string `json:"raw_text"`
}

// ParserMeta describes the parser that produced a payload
type ParserMeta struct {
	ParserVersion string  `json:"parser_version"`
	Confidence    float64 `json:"confidence"`
	Notes         *string `json:"notes"`
}

// ExtensionIngestResponse acknowledges a batch payload
type ExtensionIngestResponse struct {
	OK         bool        `json:"ok"`
	IngestID   string      `json:"ingest_id,omitempty"`
	Stored     int         `json:"stored"`
	Normalized interface{} `json:"normalized"`
	Error      string      `json:"error,omitempty"`
}
