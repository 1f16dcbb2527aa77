package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dispodeals/models"
	"dispodeals/repository"

	"github.com/google/uuid"
)

const submittedSummary = "Deal submitted"

// DealService validates and stores submitted deals
type DealService struct {
	repo repository.DealRepository
}

// NewDealService creates a new deal service
func NewDealService(repo repository.DealRepository) *DealService {
	return &DealService{repo: repo}
}

// ValidateIngest checks a decoded JSON body. Numbers are expected as
// json.Number (decoder.UseNumber) but float64 is accepted too.
func ValidateIngest(body interface{}) error {
	fields, ok := objectFields(body)
	if !ok {
		return &models.ValidationError{Reason: "body must be object"}
	}

	name, ok := fields["product_name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return &models.ValidationError{Reason: "product_name required"}
	}

	if price, present := fields["price"]; present && price != nil {
		n, ok := toNumber(price)
		if !ok || math.IsNaN(n) || n < 0 {
			return &models.ValidationError{Reason: "price must be non-negative number"}
		}
	}
	return nil
}

// Ingest validates a single deal and stores it. Enrichment fields are left
// empty until normalization exists.
func (s *DealService) Ingest(ctx context.Context, body interface{}) (*models.IngestResponse, error) {
	if err := ValidateIngest(body); err != nil {
		return nil, err
	}
	fields, _ := objectFields(body)

	deal := &models.Deal{
		DispensaryName: stringField(fields, "dispensary_name"),
		Location:       stringField(fields, "location"),
		RawText:        stringField(fields, "raw_text"),
		ProductName:    strings.TrimSpace(fields["product_name"].(string)),
		Price:          stringField(fields, "price"),
		Weight:         stringField(fields, "weight"),
		THC:            stringField(fields, "thc"),
		URL:            stringField(fields, "url"),
		DetectedAt:     stringField(fields, "detected_at"),
		Summary:        submittedSummary,
		Source:         models.DealSourceManual,
	}
	if deal.DetectedAt == "" {
		deal.DetectedAt = time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	}

	id, err := s.repo.Save(ctx, deal)
	if err != nil {
		return nil, fmt.Errorf("failed to store deal: %w", err)
	}
	log.Printf("📥 Deal %s submitted: %s", id, deal.ProductName)

	return &models.IngestResponse{
		OK:      true,
		DealID:  id,
		Summary: deal.Summary,
	}, nil
}

// IngestBatch stores every menu item of a scan payload as a raw deal.
// Payloads without menu items fall back to their deal entries.
func (s *DealService) IngestBatch(ctx context.Context, payload *models.ExtensionPayload) (*models.ExtensionIngestResponse, error) {
	if payload == nil || (payload.MenuItemsRaw == nil && payload.DealsRaw == nil) {
		return nil, &models.ValidationError{Reason: "menu_items_raw or deals_raw required"}
	}

	base := models.Deal{
		DispensaryName: deref(payload.Dispensary.NameGuess),
		Location:       deref(payload.Dispensary.LocationHint),
		URL:            payload.PageURL,
		DetectedAt:     payload.CapturedAt,
		Source:         models.DealSourceExtension,
	}

	var deals []models.Deal
	if len(payload.MenuItemsRaw) > 0 {
		for _, item := range payload.MenuItemsRaw {
			d := base
			d.ProductName = strings.TrimSpace(item.Name)
			d.Price = strings.TrimPrefix(deref(item.PriceText), "$")
			d.THC = deref(item.THCText)
			d.RawText = deref(item.RawText)
			d.Category = deref(item.Category)
			deals = append(deals, d)
		}
	} else {
		for _, raw := range payload.DealsRaw {
			d := base
			d.ProductName = strings.TrimSpace(deref(raw.ProductName))
			if d.ProductName == "" {
				d.ProductName = strings.TrimSpace(raw.Title)
			}
			d.Price = strings.TrimPrefix(deref(raw.PriceText), "$")
			d.RawText = deref(raw.Description)
			d.Category = deref(raw.Category)
			deals = append(deals, d)
		}
	}

	stored := 0
	for i := range deals {
		if deals[i].ProductName == "" {
			continue
		}
		if _, err := s.repo.Save(ctx, &deals[i]); err != nil {
			return nil, fmt.Errorf("failed to store batch item %d: %w", i, err)
		}
		stored++
	}

	ingestID := "ing_" + uuid.NewString()
	log.Printf("📦 Batch %s from %s: stored %d of %d items", ingestID, payload.Source, stored, len(deals))

	return &models.ExtensionIngestResponse{
		OK:         true,
		IngestID:   ingestID,
		Stored:     stored,
		Normalized: nil,
	}, nil
}

// objectFields accepts JSON objects; arrays count as objects without fields
func objectFields(body interface{}) (map[string]interface{}, bool) {
	switch v := body.(type) {
	case map[string]interface{}:
		return v, true
	case []interface{}:
		return map[string]interface{}{}, true
	default:
		return nil, false
	}
}

// toNumber converts a JSON value the way a loose numeric cast would:
// blank strings, null and empty arrays are zero, booleans are 0 or 1
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case json.Number:
		return parseNumeric(string(n))
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		return parseNumeric(s)
	case []interface{}:
		switch len(n) {
		case 0:
			return 0, true
		case 1:
			return toNumber(n[0])
		}
	}
	return 0, false
}

var (
	decimalLiteralRe = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)$`)
	radixLiteralRe   = regexp.MustCompile(`^0(?:[xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// parseNumeric accepts numeric literals in the loose-cast grammar: signed
// decimals with optional exponent, Infinity, and unsigned 0x/0o/0b forms.
// Out-of-range decimals overflow to infinity rather than failing.
func parseNumeric(s string) (float64, bool) {
	if radixLiteralRe.MatchString(s) {
		base := 16.0
		switch s[1] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		var v float64
		for _, c := range s[2:] {
			d, _ := strconv.ParseUint(string(c), int(base), 8)
			v = v*base + float64(d)
		}
		return v, true
	}
	if !decimalLiteralRe.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func stringField(fields map[string]interface{}, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
