// Package document is a thin accessor layer over a parsed XML tree. It exposes
// exactly what the registry loader needs: tag names, attributes that default
// to the empty string, and ordered children with text nodes kept in place.
package document

import (
	"github.com/beevik/etree"

	"github.com/glbind/glbind/internal/errors"
)

// Node is one element of a parsed document.
type Node struct {
	el *etree.Element
}

// Child is one ordered child of a Node: either an element or a run of text.
// Exactly one of Element and Text is meaningful; IsText reports which.
type Child struct {
	Element *Node
	Text    string
}

// IsText reports whether the child is a text node.
func (c Child) IsText() bool {
	return c.Element == nil
}

// Parse parses data and returns the root element.
func Parse(data []byte) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "malformed document"), errors.ErrParse)
	}

	root := doc.Root()
	if root == nil {
		return nil, errors.Wrap(errors.ErrParse, "document has no root element")
	}

	return &Node{el: root}, nil
}

// Tag returns the local tag name.
func (n *Node) Tag() string {
	return n.el.Tag
}

// Attr returns the value of the named attribute, or "" when it is absent.
func (n *Node) Attr(name string) string {
	return n.el.SelectAttrValue(name, "")
}

// Text returns the text that precedes the first child element, which for a
// leaf such as <name>GLint</name> is its whole content.
func (n *Node) Text() string {
	return n.el.Text()
}

// Elements returns the child elements in document order.
func (n *Node) Elements() []*Node {
	children := n.el.ChildElements()
	nodes := make([]*Node, 0, len(children))
	for _, child := range children {
		nodes = append(nodes, &Node{el: child})
	}
	return nodes
}

// Children returns element and text children in document order. XML comments,
// processing instructions and directives are dropped.
func (n *Node) Children() []Child {
	children := make([]Child, 0, len(n.el.Child))
	for _, tok := range n.el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			children = append(children, Child{Element: &Node{el: t}})
		case *etree.CharData:
			children = append(children, Child{Text: t.Data})
		}
	}
	return children
}
