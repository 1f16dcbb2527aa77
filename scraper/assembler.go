package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"dispodeals/dom"
	"dispodeals/models"
)

const (
	// MarkerAttr tags the container of every emitted item
	MarkerAttr = "data-ddd-id"

	maxNameLen    = 120
	maxRawTextLen = 300
	fallbackLine  = 80

	productLinkSelector = `a[href*="/menu/"]`
)

var productDetailRe = regexp.MustCompile(`(?i)\s*product detail page\s*`)

// MarkerValue is the marker attribute value for the candidate at index
func MarkerValue(index int) string {
	return "ddd-item-" + strconv.Itoa(index)
}

// MarkerSelector returns the CSS selector targeting a marker value
func MarkerSelector(value string) string {
	return "[" + MarkerAttr + `="` + value + `"]`
}

// AssembleItems turns located cards into items. Each container is used once,
// candidates without a positive price are dropped, and items with the same
// id (name, price, amount) are kept only the first time. Containers of
// emitted items are tagged with MarkerAttr.
func AssembleItems(candidates []Candidate, site models.Site) []models.ParsedItem {
	items := make([]models.ParsedItem, 0, len(candidates))
	usedContainers := make(map[dom.Node]bool)
	usedIDs := make(map[string]bool)

	for i, c := range candidates {
		if item, ok := assembleItem(i, c, site, usedContainers, usedIDs); ok {
			items = append(items, item)
		}
	}
	return items
}

func assembleItem(i int, c Candidate, site models.Site, usedContainers map[dom.Node]bool, usedIDs map[string]bool) (item models.ParsedItem, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if c.Container == nil || usedContainers[c.Container] {
		return item, false
	}
	usedContainers[c.Container] = true

	price, found := ExtractPrice(c.FullText)
	if !found || price <= 0 {
		return item, false
	}

	var weight, mg *float64
	if w, ok := ExtractWeightGrams(c.FullText); ok {
		weight = &w
	}
	if m, ok := ExtractMgTotal(c.FullText); ok {
		mg = &m
	}

	name := itemName(i, c, site)
	id := itemID(name, price, weight, mg)
	if usedIDs[id] {
		return item, false
	}
	usedIDs[id] = true

	marker := MarkerValue(i)
	setMarker(c.Container, marker)

	return models.ParsedItem{
		ID:           id,
		Name:         name,
		ProductType:  InferProductType(c.FullText, weight, mg),
		Price:        price,
		WeightGrams:  weight,
		MgTotal:      mg,
		RawText:      truncateRunes(c.FullText, maxRawTextLen),
		NodeSelector: MarkerSelector(marker),
	}, true
}

// itemName prefers the weedmaps product link text, then the first line of
// the card without its price
func itemName(i int, c Candidate, site models.Site) string {
	if site == models.SiteWeedmaps {
		if link := c.Container.QueryOne(productLinkSelector); link != nil {
			name := strings.TrimSpace(replaceFirst(productDetailRe, link.Text(), ""))
			if name = truncateRunes(name, maxNameLen); name != "" {
				return name
			}
		}
	}

	firstLine := strings.TrimSpace(strings.SplitN(c.FullText, "\n", 2)[0])
	if firstLine == "" {
		firstLine = truncateRunes(c.FullText, fallbackLine)
	}
	name := truncateRunes(strings.TrimSpace(replaceFirst(priceRe, firstLine, "")), maxNameLen)
	if name == "" {
		name = "Product " + strconv.Itoa(i+1)
	}
	return name
}

func setMarker(n dom.Node, value string) {
	defer func() { _ = recover() }()
	n.SetAttr(MarkerAttr, value)
}

// itemID derives a stable id from name, price and amount
func itemID(name string, price float64, weight, mg *float64) string {
	src := name + models.FormatNumber(price)
	if weight != nil {
		src += models.FormatNumber(*weight)
	}
	if mg != nil {
		src += models.FormatNumber(*mg)
	}
	return hashID(src)
}

// hashID is the 31-multiplier string hash over UTF-16 code units, rendered
// as "ddd-" plus the base-36 magnitude
func hashID(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return "ddd-" + strconv.FormatInt(v, 36)
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
