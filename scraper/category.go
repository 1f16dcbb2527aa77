package scraper

import (
	"regexp"
	"strings"

	"dispodeals/models"
)

var (
	vapeKeywords        = regexp.MustCompile(`\b(cartridge|cart|vape|pen)\b`)
	concentrateKeywords = regexp.MustCompile(`\b(concentrate|wax|shatter|live resin|rosin)\b`)
	prerollKeywords     = regexp.MustCompile(`\b(preroll|pre-roll|joint)\b`)
	flowerKeywords      = regexp.MustCompile(`\b(flower|eighth|quarter|half|oz)\b`)
)

// InferProductType classifies a listing. Order matters: potency marks an
// edible regardless of wording, and form-factor keywords are checked before a
// bare weight is taken to mean flower (a 1g cart is a vape).
func InferProductType(text string, weightGrams, mgTotal *float64) models.ProductType {
	t := strings.ToLower(text)
	switch {
	case mgTotal != nil && *mgTotal > 0:
		return models.ProductEdible
	case vapeKeywords.MatchString(t):
		return models.ProductVape
	case concentrateKeywords.MatchString(t):
		return models.ProductConcentrate
	case prerollKeywords.MatchString(t):
		return models.ProductPreroll
	case weightGrams != nil && *weightGrams > 0:
		return models.ProductFlower
	case flowerKeywords.MatchString(t):
		return models.ProductFlower
	}
	return models.ProductOther
}
