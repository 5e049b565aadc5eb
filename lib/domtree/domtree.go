// Package domtree exposes a rendered document snapshot as a minimal
// read-only tree. The extraction pipeline only ever needs parents,
// children, text, attributes and layout geometry, so anything tree-shaped
// (a browser DOM dump, a server-rendered snapshot, a test fixture) can
// satisfy Node.
package domtree

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Rect is an element's layout box in pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Node is one element or text node. Implementations must be comparable,
// callers use nodes as map keys.
type Node interface {
	// Parent returns nil at the root.
	Parent() Node
	Children() []Node
	// Tag is the lowercase element tag, empty for text nodes.
	Tag() string
	// Text returns the literal text of a text node, or the descendant
	// text of an element joined with spaces. Whitespace is not preserved
	// exactly; consumers normalize it anyway.
	Text() string
	// Attr returns the value of the named attribute, or "".
	Attr(name string) string
	// BoundingBox returns the element's layout box. A static snapshot has
	// no layout engine, so geometry comes from the capture side (see
	// BBoxAttr); elements without it report a zero rect.
	BoundingBox() Rect
}

// BBoxAttr is the attribute holding an element's layout box, four
// space-separated numbers: "x y w h". Capture tooling annotates it onto
// the snapshot before the tree is parsed.
const BBoxAttr = "data-bbox"

type htmlNode struct {
	parent   *htmlNode
	children []*htmlNode
	tag      string
	text     string
	attrs    map[string]string
	bbox     Rect
}

func (n *htmlNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *htmlNode) Children() []Node {
	out := make([]Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *htmlNode) Tag() string { return n.tag }

func (n *htmlNode) Text() string {
	if n.tag == "" {
		return n.text
	}
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *htmlNode) appendText(b *strings.Builder) {
	if n.tag == "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.appendText(b)
	}
}

func (n *htmlNode) Attr(name string) string { return n.attrs[name] }

func (n *htmlNode) BoundingBox() Rect { return n.bbox }

// Parse reads an HTML snapshot into a tree, returning the root element.
func Parse(r io.Reader) (Node, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return fromHTML(root, nil), nil
}

// FromDocument adapts an already-parsed goquery document.
func FromDocument(doc *goquery.Document) Node {
	if len(doc.Selection.Nodes) == 0 {
		return fromHTML(&html.Node{Type: html.DocumentNode}, nil)
	}
	return fromHTML(doc.Selection.Nodes[0], nil)
}

func fromHTML(src *html.Node, parent *htmlNode) *htmlNode {
	n := &htmlNode{parent: parent}
	switch src.Type {
	case html.TextNode:
		n.text = src.Data
		return n
	case html.ElementNode:
		n.tag = strings.ToLower(src.Data)
	}

	n.attrs = make(map[string]string, len(src.Attr))
	for _, a := range src.Attr {
		n.attrs[strings.ToLower(a.Key)] = a.Val
	}
	n.bbox = parseBBox(n.attrs[BBoxAttr])

	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			n.children = append(n.children, fromHTML(c, n))
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				n.children = append(n.children, fromHTML(c, n))
			}
		}
	}
	return n
}

func parseBBox(v string) Rect {
	fields := strings.Fields(v)
	if len(fields) != 4 {
		return Rect{}
	}
	nums := make([]float64, 4)
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Rect{}
		}
		nums[i] = n
	}
	return Rect{X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
}

// Walk visits n and its descendants depth-first, pruning a subtree when
// fn returns false for its root.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Elements returns n and every descendant element in document order.
func Elements(n Node) []Node {
	var out []Node
	Walk(n, func(d Node) bool {
		if d.Tag() != "" {
			out = append(out, d)
		}
		return true
	})
	return out
}

// First returns the first descendant element (excluding n itself)
// satisfying pred, in document order.
func First(n Node, pred func(Node) bool) Node {
	var found Node
	Walk(n, func(d Node) bool {
		if found != nil {
			return false
		}
		if d != n && d.Tag() != "" && pred(d) {
			found = d
			return false
		}
		return true
	})
	return found
}

// TextNodes returns the literal text segments under n in document order.
func TextNodes(n Node) []string {
	var out []string
	Walk(n, func(d Node) bool {
		if d.Tag() == "" {
			out = append(out, d.Text())
		}
		return true
	})
	return out
}
