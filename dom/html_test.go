package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const shadowPage = `<!DOCTYPE html>
<html><head><title>menu</title><script>var price = "$999";</script></head>
<body>
<main>
  <ul>
    <li class="card"><a href="/menu/blue-dream">Blue Dream</a><span>3.5g</span><span>$28</span></li>
  </ul>
  <menu-card id="host">
    <template shadowrootmode="open"><div class="inner"><p>Gelato 1g</p>$12</div></template>
    <span class="light">light child</span>
  </menu-card>
  <template><div class="inner">inert $5</div></template>
</main>
</body></html>`

func parse(t *testing.T, s string) *HTMLDocument {
	t.Helper()
	doc, err := ParseHTMLString(s)
	require.NoError(t, err)
	return doc
}

func TestQueryAllEntersShadowRoots(t *testing.T) {
	doc := parse(t, shadowPage)

	inner := doc.QueryAll("div.inner")
	require.Len(t, inner, 1, "inert template content must not match")
	assert.Equal(t, "Gelato 1g$12", inner[0].Text())

	host := doc.QueryOne("#host")
	require.NotNil(t, host)
	assert.Len(t, host.QueryAll("p"), 1)
}

func TestNodeIdentityIsStable(t *testing.T) {
	doc := parse(t, shadowPage)
	a := doc.QueryOne("li.card")
	b := doc.QueryOne("li.card")
	require.NotNil(t, a)
	assert.True(t, a == b)
	assert.True(t, a.Parent() == doc.QueryOne("ul"))
}

func TestParentStopsAtShadowBoundary(t *testing.T) {
	doc := parse(t, shadowPage)
	inner := doc.QueryOne("div.inner")
	require.NotNil(t, inner)
	assert.Nil(t, inner.Parent())
	assert.Nil(t, inner.Closest("main"))
	assert.Equal(t, inner, inner.Closest("div"))

	p := doc.QueryOne("p")
	require.NotNil(t, p)
	assert.Equal(t, inner, p.Parent())
}

func TestHostTextExcludesShadowContent(t *testing.T) {
	doc := parse(t, shadowPage)
	host := doc.QueryOne("#host")
	require.NotNil(t, host)
	assert.Equal(t, "light child", strings.TrimSpace(host.Text()))

	children := host.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "div", children[0].Tag())
	assert.Equal(t, "span", children[1].Tag())
}

func TestTextSkipsScripts(t *testing.T) {
	doc := parse(t, shadowPage)
	htmlEl := doc.QueryOne("html")
	require.NotNil(t, htmlEl)
	assert.NotContains(t, htmlEl.Text(), "$999")
}

func TestWalkTextRecursesIntoShadowRoots(t *testing.T) {
	doc := parse(t, shadowPage)

	var texts []string
	parents := map[string]string{}
	WalkText(doc.Body(), func(text string, parent Node) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		texts = append(texts, text)
		if parent != nil {
			parents[text] = parent.Tag()
		}
	})

	assert.Equal(t, []string{"Blue Dream", "3.5g", "$28", "Gelato 1g", "$12", "light child"}, texts)
	assert.Equal(t, "div", parents["$12"])
	assert.Equal(t, "p", parents["Gelato 1g"])
	assert.NotContains(t, texts, "inert $5")
}

func TestWalkTextNilRoot(t *testing.T) {
	called := false
	WalkText(nil, func(string, Node) { called = true })
	assert.False(t, called)
}

func TestClosest(t *testing.T) {
	doc := parse(t, shadowPage)
	link := doc.QueryOne(`a[href*="/menu/"]`)
	require.NotNil(t, link)

	li := link.Closest("li")
	require.NotNil(t, li)
	assert.Equal(t, "card", li.ClassName())
	assert.Nil(t, link.Closest("[role='listitem']"))
	assert.Nil(t, link.Closest("li[["))
}

func TestAttributesAndRender(t *testing.T) {
	doc := parse(t, shadowPage)
	li := doc.QueryOne("li.card")
	require.NotNil(t, li)

	li.SetAttr("data-ddd-id", "ddd-item-0")
	li.SetAttr("data-ddd-id", "ddd-item-1")
	v, ok := li.Attr("data-ddd-id")
	assert.True(t, ok)
	assert.Equal(t, "ddd-item-1", v)
	assert.Equal(t, li, doc.QueryOne(`[data-ddd-id="ddd-item-1"]`))

	out, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, out, `data-ddd-id="ddd-item-1"`)

	li.RemoveAttr("data-ddd-id")
	_, ok = li.Attr("data-ddd-id")
	assert.False(t, ok)
	assert.Nil(t, doc.QueryOne(`[data-ddd-id]`))
}

func TestMarkersPaths(t *testing.T) {
	doc := parse(t, `<html><head></head><body><div></div><div data-x="a"></div>`+
		`<x-host><template shadowrootmode="open"><p data-x="b">hi</p></template></x-host></body></html>`)

	markers := doc.Markers("data-x")
	require.Len(t, markers, 2)

	assert.Equal(t, []int{1, 1}, markers[0].Path)
	assert.Equal(t, "div", markers[0].Tag)
	assert.Equal(t, "a", markers[0].Value)

	assert.Equal(t, []int{1, 2, -1, 0}, markers[1].Path)
	assert.Equal(t, "p", markers[1].Tag)
	assert.Equal(t, "b", markers[1].Value)
}

func TestDocumentWithoutBody(t *testing.T) {
	doc := NewDocument(&html.Node{Type: html.DocumentNode})
	assert.Nil(t, doc.Body())
	assert.Empty(t, doc.QueryAll("div"))
	assert.Empty(t, doc.Markers("data-x"))
}
