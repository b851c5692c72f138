// internal/browser/dom/capture.go
// Builds element descriptors from a parsed HTML snapshot. This is the
// authoring-side capture path: a demonstration records the page's DOM once,
// and everything downstream (candidate generation, hashing, back-fill) works
// from the immutable descriptors produced here.
package dom

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
)

// maxCapturedText bounds the text captured into a descriptor. Long text is a
// poor identity anchor and bloats persisted tool definitions.
const maxCapturedText = 64

// Parse parses an HTML document from r.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// DescriptorFromNode snapshots an element node into an ElementDescriptor.
// Attributes keep their document order, which the selector layer relies on.
func DescriptorFromNode(node *html.Node) schemas.ElementDescriptor {
	if node == nil || node.Type != html.ElementNode {
		return schemas.ElementDescriptor{}
	}

	attrs := make(schemas.AttrList, 0, len(node.Attr))
	for _, a := range node.Attr {
		attrs = append(attrs, schemas.Attr{Key: a.Key, Value: a.Val})
	}

	return schemas.ElementDescriptor{
		TagName:          strings.ToLower(node.Data),
		Attributes:       attrs,
		Text:             ElementText(node),
		OriginalSelector: SimpleSelector(node),
		OriginalXPath:    UniqueXPath(node),
	}
}

// ElementText collects the node's text content, trimmed and truncated at a
// rune boundary.
func ElementText(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	text := strings.Join(strings.Fields(sb.String()), " ")
	runes := []rune(text)
	if len(runes) > maxCapturedText {
		text = string(runes[:maxCapturedText])
	}
	return text
}

// SimpleSelector produces the raw captured CSS selector for a node: its
// ancestor chain joined with child combinators, each segment carrying the
// tag plus positional index. This is deliberately the brittle, positional
// form; making it robust is the selector package's job, not capture's.
func SimpleSelector(node *html.Node) string {
	var segments []string
	for n := node; n != nil && n.Type == html.ElementNode; n = n.Parent {
		tag := strings.ToLower(n.Data)
		if tag == "" {
			continue
		}
		seg := tag
		if id := attrValue(n, "id"); id != "" {
			segments = append([]string{seg + `[id="` + id + `"]`}, segments...)
			break
		}
		if idx := siblingIndex(n, tag); idx > 1 || hasLaterSibling(n, tag) {
			seg += ":nth-of-type(" + strconv.Itoa(idx) + ")"
		}
		segments = append([]string{seg}, segments...)
		if tag == "body" || tag == "html" {
			break
		}
	}
	return strings.Join(segments, " > ")
}

// UniqueXPath generates a robust XPath expression for a node, anchoring on
// the nearest ancestor id when one exists.
func UniqueXPath(node *html.Node) string {
	if node == nil {
		return ""
	}

	var path []string
	for n := node; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		tag := strings.ToLower(n.Data)
		if tag == "" {
			continue
		}

		// An ancestor id makes a shorter, more stable base than the full
		// root path.
		if id := attrValue(n, "id"); id != "" {
			path = append(path, `//*[@id='`+id+`']`)
			break
		}

		path = append(path, tag+"["+strconv.Itoa(siblingIndex(n, tag))+"]")
	}

	if len(path) == 0 {
		return "/"
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	xpath := strings.Join(path, "/")
	if !strings.HasPrefix(xpath, "//*[@id=") {
		xpath = "/" + xpath
	}
	return xpath
}

// FindElements walks the document and returns every element node the match
// function accepts, in document order.
func FindElements(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return found
}

// FindByID returns the first element with the given id attribute.
func FindByID(root *html.Node, id string) *html.Node {
	matches := FindElements(root, func(n *html.Node) bool {
		return attrValue(n, "id") == id
	})
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// siblingIndex is the 1-based index of n among preceding siblings sharing
// its tag.
func siblingIndex(n *html.Node, tag string) int {
	idx := 1
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prev.Type == html.ElementNode && strings.ToLower(prev.Data) == tag {
			idx++
		}
	}
	return idx
}

func hasLaterSibling(n *html.Node, tag string) bool {
	for next := n.NextSibling; next != nil; next = next.NextSibling {
		if next.Type == html.ElementNode && strings.ToLower(next.Data) == tag {
			return true
		}
	}
	return false
}

