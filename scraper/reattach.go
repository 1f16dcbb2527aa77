package scraper

import "dispodeals/models"

// Reattach points cached results at the containers found by a fresh scan of
// a re-rendered page. Items are matched by fingerprint (name, price, amount);
// when that recovers fewer than half of the cached items, items are paired
// by position instead. Cached scores are kept. Items left without a match
// get an empty NodeSelector.
func Reattach(cached, fresh []models.ScoredItem) []models.ScoredItem {
	out := make([]models.ScoredItem, len(cached))
	copy(out, cached)
	if len(out) == 0 {
		return out
	}

	byKey := make(map[string][]int, len(fresh))
	for i := range fresh {
		k := fresh[i].FingerprintKey()
		byKey[k] = append(byKey[k], i)
	}

	matched := 0
	for i := range out {
		k := out[i].FingerprintKey()
		if idx := byKey[k]; len(idx) > 0 {
			out[i].NodeSelector = fresh[idx[0]].NodeSelector
			byKey[k] = idx[1:]
			matched++
			continue
		}
		out[i].NodeSelector = ""
	}

	if matched*2 >= len(out) {
		return out
	}

	for i := range out {
		if i < len(fresh) {
			out[i].NodeSelector = fresh[i].NodeSelector
		} else {
			out[i].NodeSelector = ""
		}
	}
	return out
}
