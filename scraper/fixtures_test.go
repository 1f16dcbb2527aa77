package scraper

import (
	"testing"

	"dispodeals/dom"

	"github.com/stretchr/testify/require"
)

const weedmapsMenu = `<!DOCTYPE html>
<html><body>
<header><a href="/deals">Deals</a></header>
<main>
  <ul class="menu-list">
    <li class="product-card">
      <a href="/dispensaries/green-leaf/menu/blue-dream-123">Blue Dream Product Detail Page</a>
      <div class="weight">3.5g</div>
      <div class="price">$28</div>
    </li>
    <li class="product-card">
      <a href="/dispensaries/green-leaf/menu/gelato-77">Gelato</a>
      <div class="weight">1/8 oz</div>
      <div class="price">$45</div>
    </li>
    <li class="product-card">
      <a href="/dispensaries/green-leaf/menu/jack-herer-preroll">Jack Herer Pre-Roll</a>
      <div class="weight">1g</div>
      <div class="price">$12</div>
    </li>
  </ul>
</main>
</body></html>`

const dutchieMenu = `<!DOCTYPE html>
<html><body>
<div class="menu">
  <div class="card">
    <h3>Blue Dream</h3>
    <span>3.5g</span>
    <span class="price">$28</span>
  </div>
  <div class="card">
    <h3>Live Resin Cart</h3>
    <span>1g</span>
    <span class="price">$40</span>
  </div>
  <div class="card">
    <h3>Gummies</h3>
    <span>100mg</span>
    <span class="price">$12</span>
  </div>
</div>
</body></html>`

const shadowMenu = `<!DOCTYPE html>
<html><body>
<dutchie-menu>
  <template shadowrootmode="open">
    <section>
      <div class="card">
        <h3>Gelato</h3>
        <span>1/8 oz</span>
        <span>$35</span>
      </div>
      <product-tile>
        <template shadowrootmode="open">
          <div class="card">
            <h3>Wedding Cake</h3>
            <span>7g</span>
            <span>$42</span>
          </div>
        </template>
      </product-tile>
    </section>
  </template>
</dutchie-menu>
</body></html>`

const emptyMenu = `<!DOCTYPE html><html><body><div class="loading">Loading menu...</div></body></html>`

func mustParse(t *testing.T, s string) *dom.HTMLDocument {
	t.Helper()
	doc, err := dom.ParseHTMLString(s)
	require.NoError(t, err)
	return doc
}

// noBodyDoc is a document without a body element
type noBodyDoc struct{}

func (noBodyDoc) Body() dom.Node {
	return nil
}

func (noBodyDoc) QueryOne(string) dom.Node {
	return nil
}

func (noBodyDoc) QueryAll(string) []dom.Node {
	return nil
}

// hostileNode panics on every read, like markup that breaks DOM access
type hostileNode struct{}

func (hostileNode) Tag() string {
	panic("detached")
}

func (hostileNode) Attr(string) (string, bool) {
	panic("detached")
}

func (hostileNode) SetAttr(string, string) {
	panic("detached")
}

func (hostileNode) RemoveAttr(string) {
	panic("detached")
}

func (hostileNode) ClassName() string {
	panic("detached")
}

func (hostileNode) Text() string {
	panic("detached")
}

func (hostileNode) Parent() dom.Node {
	panic("detached")
}

func (hostileNode) Children() []dom.Node {
	panic("detached")
}

func (hostileNode) Content() []dom.Content {
	panic("detached")
}

func (hostileNode) QueryOne(string) dom.Node {
	panic("detached")
}

func (hostileNode) QueryAll(string) []dom.Node {
	panic("detached")
}

func (hostileNode) Closest(string) dom.Node {
	panic("detached")
}

// hostileDoc returns hostile nodes from every query
type hostileDoc struct{}

func (hostileDoc) Body() dom.Node {
	return hostileNode{}
}

func (hostileDoc) QueryOne(string) dom.Node {
	return hostileNode{}
}

func (hostileDoc) QueryAll(string) []dom.Node {
	return []dom.Node{hostileNode{}, hostileNode{}}
}
