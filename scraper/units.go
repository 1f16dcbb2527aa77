package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// $28, $ 28, $27.5, $27.50
	priceRe = regexp.MustCompile(`\$ ?(\d+(?:\.\d{1,2})?)`)

	// 3.5g, 1 gram, 28 grams. Gaps include U+00A0 from &nbsp; markup.
	gramRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)[\s\x{00A0}]*g(?:ram)?s?`)

	// 1/8, 1/4, 1/2, ¼, ½ not glued to other digits
	fractionRe = regexp.MustCompile(`(?i)(?:^|[^\d])(1/8|1/4|1/2|¼|½)(?:[^\d]|$)`)

	ounceRe = regexp.MustCompile(`(?i)\b(?:oz|ounce)\b`)

	// 100mg, 1,000 mg
	mgRe = regexp.MustCompile(`(?i)(\d+(?:,\d+)?)[\s\x{00A0}]*mg`)

	digitRe = regexp.MustCompile(`\d`)
)

// fractionGrams maps fractional ounce tokens to grams
var fractionGrams = map[string]float64{
	"1/8": 3.5,
	"1/4": 7,
	"1/2": 14,
	"¼":   7,
	"½":   14,
}

// gramsPerOunce is used when an ounce is mentioned without a number
const gramsPerOunce = 28

// ExtractPrice returns the first dollar amount in text
func ExtractPrice(text string) (float64, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ExtractWeightGrams returns the package weight in grams. Explicit grams win
// over fractional ounces, which win over a bare ounce mention.
func ExtractWeightGrams(text string) (float64, bool) {
	if m := gramRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := fractionRe.FindStringSubmatch(text); m != nil {
		if v, ok := fractionGrams[m[1]]; ok {
			return v, true
		}
	}
	if ounceRe.MatchString(text) {
		return gramsPerOunce, true
	}
	return 0, false
}

// ExtractMgTotal returns the total potency in milligrams
func ExtractMgTotal(text string) (float64, bool) {
	m := mgRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// priceText returns the first matched price substring, e.g. "$28"
func priceText(text string) string {
	return priceRe.FindString(text)
}
