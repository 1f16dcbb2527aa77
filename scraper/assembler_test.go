package scraper

import (
	"testing"

	"dispodeals/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashID(t *testing.T) {
	assert.Equal(t, "ddd-0", hashID(""))
	assert.Equal(t, "ddd-22ci", hashID("abc"))
	// hashes to the minimum int32; the magnitude must not overflow
	assert.Equal(t, "ddd-zik0zk", hashID("polygenelubricants"))
	assert.Equal(t, "ddd-f3cdbd", itemID("Blue Dream", 28, ptr(3.5), nil))
	assert.Equal(t, "ddd-tuls0p", itemID("Gummies", 12, nil, ptr(100)))
}

func TestAssembleItemsWeedmaps(t *testing.T) {
	doc := mustParse(t, weedmapsMenu)

	items := AssembleItems(FindCardCandidates(doc, models.SiteWeedmaps), models.SiteWeedmaps)
	require.Len(t, items, 3)

	assert.Equal(t, "Blue Dream", items[0].Name)
	assert.Equal(t, 28.0, items[0].Price)
	w, ok := items[0].Weight()
	assert.True(t, ok)
	assert.Equal(t, 3.5, w)
	assert.Equal(t, models.ProductFlower, items[0].ProductType)
	assert.Equal(t, "ddd-f3cdbd", items[0].ID)

	assert.Equal(t, "Gelato", items[1].Name)
	assert.Equal(t, "Jack Herer Pre-Roll", items[2].Name)
	assert.Equal(t, models.ProductPreroll, items[2].ProductType)
}

func TestAssembleItemsMarksContainers(t *testing.T) {
	doc := mustParse(t, dutchieMenu)

	items := AssembleItems(FindCardCandidates(doc, models.SiteDutchie), models.SiteDutchie)
	require.Len(t, items, 3)

	for i, it := range items {
		assert.Equal(t, MarkerSelector(MarkerValue(i)), it.NodeSelector)
		el := doc.QueryOne(it.NodeSelector)
		require.NotNil(t, el, it.NodeSelector)
		assert.Equal(t, "card", el.ClassName())
	}
	assert.Equal(t, `[data-ddd-id="ddd-item-0"]`, items[0].NodeSelector)
}

func TestAssembleItemsNames(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"first line without price",
			`<div class="c">Blue Dream $28
3.5g</div>`,
			"Blue Dream",
		},
		{
			"positional fallback",
			`<div class="c"><span>$15</span>
<span>3.5g eighth</span></div>`,
			"Product 1",
		},
		{
			"long names are cut",
			`<div class="c">` + longName + ` $20</div>`,
			longName[:120],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, "<html><body>"+tt.html+"</body></html>")
			items := AssembleItems(FindCardCandidates(doc, models.SiteDutchie), models.SiteDutchie)
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0].Name)
		})
	}
}

const longName = "Extremely Long Strain Name That Goes On And On Past Any Reasonable Display Width For A Product Card Because Vendors Love Keywords"

func TestAssembleItemsDropsDuplicates(t *testing.T) {
	doc := mustParse(t, `<html><body><div class="menu">
<div class="card">Blue Dream
3.5g $28</div>
<div class="card">Blue Dream
3.5g $28</div>
</div></body></html>`)

	items := AssembleItems(FindCardCandidates(doc, models.SiteDutchie), models.SiteDutchie)
	require.Len(t, items, 1)
	assert.Equal(t, "Blue Dream", items[0].Name)
}

func TestAssembleItemsRequiresPositivePrice(t *testing.T) {
	doc := mustParse(t, `<html><body>
<div class="card">Free Sticker
$0 with purchase</div>
<div class="card">Wedding Cake
3.5g $30</div>
</body></html>`)

	items := AssembleItems(FindCardCandidates(doc, models.SiteDutchie), models.SiteDutchie)
	require.Len(t, items, 1)
	assert.Equal(t, "Wedding Cake", items[0].Name)
	// the marker index follows the candidate position
	assert.Equal(t, `[data-ddd-id="ddd-item-1"]`, items[0].NodeSelector)
}

func TestAssembleItemsTruncatesRawText(t *testing.T) {
	body := "Blue Dream 3.5g $28 "
	for len(body) < 400 {
		body += "lorem ipsum "
	}
	doc := mustParse(t, `<html><body><div class="card">`+body+`</div></body></html>`)

	items := AssembleItems(FindCardCandidates(doc, models.SiteDutchie), models.SiteDutchie)
	require.Len(t, items, 1)
	assert.Len(t, []rune(items[0].RawText), 300)
}

func TestAssembleItemsSkipsReusedContainer(t *testing.T) {
	doc := mustParse(t, dutchieMenu)
	cards := FindCardCandidates(doc, models.SiteDutchie)
	require.NotEmpty(t, cards)

	items := AssembleItems([]Candidate{cards[0], cards[0]}, models.SiteDutchie)
	assert.Len(t, items, 1)
}

func TestAssembleItemsHostileContainer(t *testing.T) {
	items := AssembleItems([]Candidate{
		{Container: hostileNode{}, FullText: "Blue Dream 3.5g $28"},
	}, models.SiteWeedmaps)
	assert.Empty(t, items)
}
