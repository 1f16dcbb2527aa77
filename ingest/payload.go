package ingest

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"dispodeals/models"
)

// ParserVersion identifies the payload layout sent to the ingest endpoint
const ParserVersion = "v2"

// BuildPayload maps a scan result to the batch ingest payload. Unknown
// platforms are reported as "unknown"; an empty scan has zero confidence.
func BuildPayload(site models.Site, items []models.ScoredItem, pageURL string, capturedAt time.Time) *models.ExtensionPayload {
	source := string(models.SiteUnknown)
	if site.Supported() {
		source = string(site)
	}

	deals := make([]models.RawDeal, 0, len(items))
	menu := make([]models.RawMenuItem, 0, len(items))
	for _, it := range items {
		price := priceText(it.Price)
		category := nullable(string(it.ProductType))
		deals = append(deals, models.RawDeal{
			Title:       it.Score.Label + " " + strings.TrimSpace(it.Name),
			Description: nullable(it.RawText),
			PriceText:   price,
			ProductName: nullable(it.Name),
			Category:    category,
		})
		menu = append(menu, models.RawMenuItem{
			Name:      it.Name,
			Category:  category,
			PriceText: price,
			RawText:   nullable(it.RawText),
		})
	}

	return &models.ExtensionPayload{
		Source:     source,
		PageURL:    pageURL,
		CapturedAt: capturedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		Dispensary: models.DispensaryHint{
			NameGuess: nullable(models.DispensaryNameFromURL(pageURL)),
		},
		DealsRaw:     deals,
		MenuItemsRaw: menu,
		ParserMeta: models.ParserMeta{
			ParserVersion: ParserVersion,
			Confidence:    Confidence(len(items)),
		},
	}
}

// Confidence grows with the number of items found: 0.5 for the first
// item plus 0.05 per item, capped at 1
func Confidence(n int) float64 {
	if n <= 0 {
		return 0
	}
	c := 0.5 + float64(n)*0.05
	if c > 1 {
		return 1
	}
	return c
}

// ClientRef is a stable key for overlaying server results on a listing.
// djb2 over title, price, position and host, kept to 31 bits.
func ClientRef(item models.ParsedItem, index int, hostname string) string {
	title := []rune(strings.TrimSpace(item.Name))
	if len(title) > 80 {
		title = title[:80]
	}
	s := string(title) + "|$" + models.FormatNumber(item.Price) + "|" + strconv.Itoa(index) + "|" + hostname

	h := int64(5381)
	for _, c := range utf16.Encode([]rune(s)) {
		h = ((h << 5) + h + int64(c)) & 0x7fffffff
	}
	return "ddd-" + strconv.FormatInt(h, 36)
}

func priceText(price float64) *string {
	s := "$" + models.FormatNumber(price)
	return &s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
