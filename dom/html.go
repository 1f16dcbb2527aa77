package dom

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLDocument is a Document backed by an x/net/html parse tree.
// Shadow roots are read from declarative shadow DOM: a
// <template shadowrootmode="open|closed"> (or legacy shadowroot=) child of
// the host element. Not safe for concurrent use.
type HTMLDocument struct {
	root  *html.Node
	nodes map[*html.Node]*Element
}

// Element wraps an element node of an HTMLDocument
type Element struct {
	doc  *HTMLDocument
	node *html.Node
}

// Marker is an element carrying a marker attribute, addressed by its
// element-child path from <html>. A -1 step enters the shadow root.
type Marker struct {
	Path  []int  `json:"path"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// ParseHTML parses a full page
func ParseHTML(r io.Reader) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(root), nil
}

// ParseHTMLString parses a full page held in a string
func ParseHTMLString(s string) (*HTMLDocument, error) {
	return ParseHTML(strings.NewReader(s))
}

// NewDocument wraps an existing parse tree
func NewDocument(root *html.Node) *HTMLDocument {
	return &HTMLDocument{
		root:  root,
		nodes: make(map[*html.Node]*Element),
	}
}

func (d *HTMLDocument) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if el, ok := d.nodes[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.nodes[n] = el
	return el
}

// Body returns the <body> element or nil
func (d *HTMLDocument) Body() Node {
	if d.root == nil {
		return nil
	}
	body := findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if body == nil {
		return nil
	}
	return d.wrap(body)
}

func (d *HTMLDocument) QueryOne(selector string) Node {
	return d.queryOne(d.root, selector)
}

func (d *HTMLDocument) QueryAll(selector string) []Node {
	return d.queryAll(d.root, selector)
}

// Markers lists every element carrying attr, in document order
func (d *HTMLDocument) Markers(attr string) []Marker {
	if d.root == nil {
		return nil
	}
	htmlEl := findFirst(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Html
	})
	if htmlEl == nil {
		return nil
	}
	var out []Marker
	var walk, walkChildren func(n *html.Node, path []int)
	walk = func(n *html.Node, path []int) {
		if v, ok := getAttr(n, attr); ok {
			out = append(out, Marker{
				Path:  append([]int(nil), path...),
				Tag:   n.Data,
				Value: v,
			})
		}
		if sr := shadowRoot(n); sr != nil {
			walkChildren(sr, append(path, -1))
		}
		walkChildren(n, path)
	}
	walkChildren = func(parent *html.Node, path []int) {
		idx := 0
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || isShadowTemplate(c) {
				continue
			}
			if !isTemplate(c) {
				walk(c, append(path, idx))
			}
			idx++
		}
	}
	walk(htmlEl, nil)
	return out
}

// Render serializes the document, including any attributes set since parsing
func (d *HTMLDocument) Render() (string, error) {
	var sb strings.Builder
	if d.root == nil {
		return "", nil
	}
	if err := html.Render(&sb, d.root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (d *HTMLDocument) queryAll(from *html.Node, selector string) []Node {
	if from == nil {
		return nil
	}
	var out []Node
	goquery.NewDocumentFromNode(from).Find(selector).Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if isTemplate(n) || insideInertTemplate(n, from) {
			return
		}
		out = append(out, d.wrap(n))
	})
	return out
}

func (d *HTMLDocument) queryOne(from *html.Node, selector string) Node {
	if nodes := d.queryAll(from, selector); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

func (e *Element) Tag() string { return strings.ToLower(e.node.Data) }

func (e *Element) Attr(name string) (string, bool) { return getAttr(e.node, name) }

func (e *Element) SetAttr(name, value string) {
	for i := range e.node.Attr {
		if e.node.Attr[i].Namespace == "" && e.node.Attr[i].Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

func (e *Element) RemoveAttr(name string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

func (e *Element) ClassName() string {
	v, _ := getAttr(e.node, "class")
	return v
}

func (e *Element) Text() string {
	var sb strings.Builder
	collectText(e.node, &sb)
	return sb.String()
}

func (e *Element) Parent() Node {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode || isTemplate(p) {
		return nil
	}
	return e.doc.wrap(p)
}

func (e *Element) Children() []Node {
	var out []Node
	if sr := shadowRoot(e.node); sr != nil {
		for c := sr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && !isTemplate(c) {
				out = append(out, e.doc.wrap(c))
			}
		}
	}
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && !isTemplate(c) {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

func (e *Element) Content() []Content {
	var out []Content
	if sr := shadowRoot(e.node); sr != nil {
		out = e.doc.appendContent(out, sr, true)
	}
	return e.doc.appendContent(out, e.node, false)
}

func (d *HTMLDocument) appendContent(out []Content, parent *html.Node, shadow bool) []Content {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode:
			out = append(out, Content{Text: c.Data, Shadow: shadow})
		case c.Type == html.ElementNode && !skipsText(c):
			out = append(out, Content{Element: d.wrap(c), Shadow: shadow})
		}
	}
	return out
}

func (e *Element) QueryOne(selector string) Node { return e.doc.queryOne(e.node, selector) }

func (e *Element) QueryAll(selector string) []Node { return e.doc.queryAll(e.node, selector) }

func (e *Element) Closest(selector string) Node {
	for n := Node(e); n != nil; n = n.Parent() {
		el, ok := n.(*Element)
		if !ok {
			return nil
		}
		if goquery.NewDocumentFromNode(el.node).Is(selector) {
			return el
		}
	}
	return nil
}

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func isTemplate(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.DataAtom == atom.Template
}

func isShadowTemplate(n *html.Node) bool {
	if !isTemplate(n) || n.Parent == nil || n.Parent.Type != html.ElementNode {
		return false
	}
	if _, ok := getAttr(n, "shadowrootmode"); ok {
		return true
	}
	_, ok := getAttr(n, "shadowroot")
	return ok
}

// shadowRoot returns the declarative shadow root template of a host
func shadowRoot(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isShadowTemplate(c) {
			return c
		}
	}
	return nil
}

// insideInertTemplate reports whether n sits under a plain <template>
// between it and the query root
func insideInertTemplate(n, stop *html.Node) bool {
	for p := n.Parent; p != nil && p != stop; p = p.Parent {
		if isTemplate(p) && !isShadowTemplate(p) {
			return true
		}
	}
	return false
}

func skipsText(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Template, atom.Script, atom.Style, atom.Noscript:
		return true
	}
	return false
}

func collectText(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			if !skipsText(c) {
				collectText(c, sb)
			}
		}
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isTemplate(c) {
			continue
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}
