package scraper

import (
	"fmt"
	"math"

	"dispodeals/models"
)

// Michigan baseline v1: $/g for flower-like products, $/100mg for edibles
const (
	flowerWorthMax = 6.0
	flowerMidMax   = 9.0
	edibleWorthMax = 6.0
	edibleMidMax   = 10.0
)

const (
	metricPerGram  = "$/g"
	metricPer100mg = "$/100mg"

	labelWorth = "✅ Worth It"
	labelMid   = "⚠️ Mid"
	labelTaxed = "❌ Taxed"

	notEnoughInfo = "Not enough info"
)

// unitPrice normalizes an item's price for comparison. ok is false when the
// item lacks the amount its category needs.
func unitPrice(item models.ParsedItem) (label string, value float64, ok bool) {
	if item.Price <= 0 {
		return "", 0, false
	}
	switch item.ProductType {
	case models.ProductFlower, models.ProductConcentrate, models.ProductPreroll,
		models.ProductVape, models.ProductOther:
		if g, has := item.Weight(); has && g > 0 {
			return metricPerGram, item.Price / g, true
		}
	case models.ProductEdible:
		if mg, has := item.Mg(); has && mg > 0 {
			return metricPer100mg, item.Price / (mg / 100), true
		}
	}
	return "", 0, false
}

// ScoreItem assigns a value badge. Tiers are decided on the exact ratio;
// rounding only applies to the reported value.
func ScoreItem(item models.ParsedItem) models.Score {
	metric, v, ok := unitPrice(item)
	if !ok {
		return models.Score{
			Badge:       models.BadgeMid,
			Label:       labelMid,
			MetricLabel: models.UnscoredMetricLabel,
			MetricValue: 0,
			Reason:      notEnoughInfo,
		}
	}

	worthMax, midMax := flowerWorthMax, flowerMidMax
	if item.ProductType == models.ProductEdible {
		worthMax, midMax = edibleWorthMax, edibleMidMax
	}

	badge, label := models.BadgeTaxed, labelTaxed
	switch {
	case v <= worthMax:
		badge, label = models.BadgeWorth, labelWorth
	case v <= midMax:
		badge, label = models.BadgeMid, labelMid
	}

	return models.Score{
		Badge:       badge,
		Label:       label,
		MetricLabel: metric,
		MetricValue: math.Round(v*100) / 100,
		Reason:      fmt.Sprintf("%s %.2f", metric, v),
	}
}

// ScoreItems scores every item, preserving order
func ScoreItems(items []models.ParsedItem) []models.ScoredItem {
	out := make([]models.ScoredItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.ScoredItem{ParsedItem: it, Score: ScoreItem(it)})
	}
	return out
}
