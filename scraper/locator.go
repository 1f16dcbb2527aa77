package scraper

import (
	"regexp"
	"strings"

	"dispodeals/dom"
	"dispodeals/models"
)

const (
	maxAscent           = 15
	minWeedmapsCardText = 15
	minGenericCardText  = 10
	weedmapsKeyLen      = 100
	genericKeyLen       = 80

	weedmapsLinkSelector = `a[href*="/menu/"], a[href*="menu"]`
)

// Weedmaps cards spell weights many ways; these catch what the unit
// extractor does not.
var weightTokens = []*regexp.Regexp{
	gramRe,
	fractionRe,
	regexp.MustCompile(`(?i)\b1/8[\s\x{00A0}]*(oz|ounce)?\b`),
	regexp.MustCompile(`(?i)\b1/4[\s\x{00A0}]*(oz|ounce)?\b`),
	regexp.MustCompile(`(?i)\b1/2[\s\x{00A0}]*(oz|ounce)?\b`),
	regexp.MustCompile(`(?i)\b1[\s\x{00A0}]*g\b`),
	regexp.MustCompile(`(?i)\b3\.5[\s\x{00A0}]*g\b`),
	regexp.MustCompile(`(?i)\b7[\s\x{00A0}]*g\b`),
	regexp.MustCompile(`(?i)\b(oz|ounce)\b`),
}

// Candidate is a page region that looks like a single product card
type Candidate struct {
	Container dom.Node
	PriceText string
	FullText  string
}

// FindCardCandidates locates product cards. Weedmaps pages are anchored on
// product links and fall back to the generic price walk when none are found.
func FindCardCandidates(doc dom.Document, site models.Site) []Candidate {
	if doc == nil {
		return nil
	}
	if site == models.SiteWeedmaps {
		if cards := findWeedmapsCards(doc); len(cards) > 0 {
			return cards
		}
	}
	return findGenericCards(doc)
}

func hasWeightToken(text string) bool {
	for _, re := range weightTokens {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func findWeedmapsCards(doc dom.Document) (cards []Candidate) {
	defer func() {
		if recover() != nil {
			cards = nil
		}
	}()

	root := doc.QueryOne("main")
	if root == nil {
		root = doc.Body()
	}
	if root == nil {
		return nil
	}

	seen := make(map[string]bool)
	for _, link := range root.QueryAll(weedmapsLinkSelector) {
		if c, ok := weedmapsCard(link, root, seen); ok {
			cards = append(cards, c)
		}
	}
	return cards
}

// weedmapsCard climbs from a product link to the smallest ancestor that
// carries both a price and a weight
func weedmapsCard(link, root dom.Node, seen map[string]bool) (c Candidate, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if len([]rune(strings.TrimSpace(link.Text()))) < 3 {
		return c, false
	}
	href, _ := link.Attr("href")
	if !strings.Contains(strings.TrimSpace(href), "menu") {
		return c, false
	}

	card := link.Closest("li")
	if card == nil {
		card = link.Closest("[role='listitem']")
	}
	if card == nil {
		card = link.Parent()
	}

	for depth := 0; card != nil && depth < maxAscent; depth++ {
		if card == root {
			break
		}
		text := strings.TrimSpace(card.Text())
		if len([]rune(text)) >= minWeedmapsCardText && priceRe.MatchString(text) && hasWeightToken(text) {
			key := card.ClassName() + " " + truncateRunes(text, weedmapsKeyLen)
			if seen[key] {
				return c, false
			}
			seen[key] = true
			return Candidate{Container: card, PriceText: priceText(text), FullText: text}, true
		}
		card = card.Parent()
	}
	return c, false
}

func findGenericCards(doc dom.Document) []Candidate {
	body := safeBody(doc)
	if body == nil {
		return nil
	}

	var parents []dom.Node
	func() {
		defer func() { _ = recover() }()
		dom.WalkText(body, func(text string, parent dom.Node) {
			if priceRe.MatchString(text) && digitRe.MatchString(text) {
				parents = append(parents, parent)
			}
		})
	}()

	seen := make(map[string]bool)
	var cards []Candidate
	for _, p := range parents {
		if c, ok := genericCard(p, seen); ok {
			cards = append(cards, c)
		}
	}
	return cards
}

// genericCard climbs from a price text's parent to the first ancestor with
// enough text that has not already been claimed
func genericCard(el dom.Node, seen map[string]bool) (c Candidate, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	for depth := 0; el != nil && depth < maxAscent; depth++ {
		text := strings.TrimSpace(el.Text())
		price := priceText(text)
		if len([]rune(text)) < minGenericCardText || price == "" {
			el = el.Parent()
			continue
		}
		key := el.ClassName() + " " + el.Tag() + " " + truncateRunes(text, genericKeyLen)
		if seen[key] {
			el = el.Parent()
			continue
		}
		seen[key] = true
		return Candidate{Container: el, PriceText: price, FullText: text}, true
	}
	return c, false
}

func safeBody(doc dom.Document) (body dom.Node) {
	defer func() {
		if recover() != nil {
			body = nil
		}
	}()
	return doc.Body()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
