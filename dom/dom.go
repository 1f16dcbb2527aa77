package dom

// Node is an element in a page whose markup we do not control.
// Implementations expose shadow roots transparently to queries and text walks.
type Node interface {
	// Tag returns the lower-case element name
	Tag() string
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)
	ClassName() string

	// Text returns the textContent of the node. Shadow root content of the
	// node itself is not included, same as in a browser.
	Text() string

	// Parent returns the parent element, or nil at the document root and at
	// a shadow root boundary
	Parent() Node

	// Children returns element children, shadow root children first
	Children() []Node

	// Content returns the ordered child entries (elements and text) used by
	// text walks, shadow root entries first
	Content() []Content

	// QueryOne and QueryAll match CSS selectors against descendants,
	// including descendants inside shadow roots
	QueryOne(selector string) Node
	QueryAll(selector string) []Node

	// Closest returns the first of the node and its ancestors matching selector
	Closest(selector string) Node
}

// Content is one child entry of a node: either an element or a text run
type Content struct {
	Element Node
	Text    string
	// Shadow is set for entries that live directly in the node's shadow root
	Shadow bool
}

// Document is a parsed page
type Document interface {
	// Body returns the body element, or nil when the document has none
	Body() Node
	QueryOne(selector string) Node
	QueryAll(selector string) []Node
}

// WalkText calls fn for every text run under root in document order,
// descending into shadow roots. parent is the element owning the text; it is
// nil for text placed directly inside a shadow root.
func WalkText(root Node, fn func(text string, parent Node)) {
	if root == nil {
		return
	}
	for _, c := range root.Content() {
		if c.Element != nil {
			WalkText(c.Element, fn)
			continue
		}
		if c.Shadow {
			fn(c.Text, nil)
			continue
		}
		fn(c.Text, root)
	}
}
