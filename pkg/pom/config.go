package pom

import (
	"encoding/xml"
	"strings"
)

// Configuration is the loosely typed <configuration> value of a plugin.
//
// It is one of:
//   - *Node: a navigable element tree
//   - Opaque: content that is not an element tree (for example a bare
//     ${...} reference)
//
// A nil Configuration means the plugin declares none.
type Configuration interface {
	configuration()
}

// Opaque is plugin configuration that holds only character data.
type Opaque string

func (Opaque) configuration() {}

// Node is one element of a plugin configuration tree.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node

	value *string
}

func (*Node) configuration() {}

// NewNode returns an empty element named name.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// Child returns the first direct child named name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Value returns the text of the element. Elements that only contain child
// elements have no value.
func (n *Node) Value() (string, bool) {
	if n == nil || n.value == nil {
		return "", false
	}
	return *n.value, true
}

// SetValue sets the text of the element.
func (n *Node) SetValue(v string) {
	n.value = &v
}

// AddChild appends c to the children of n.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
}

// RemoveChild removes the child at index i. Out of range indexes are ignored.
func (n *Node) RemoveChild(i int) {
	if i < 0 || i >= len(n.Children) {
		return
	}
	n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
}

// UnmarshalXML builds the element tree rooted at start. Leaf elements get
// their trimmed character data as value, even when it is empty.
func (n *Node) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.Name = start.Name.Local
	for _, a := range start.Attr {
		if n.Attrs == nil {
			n.Attrs = make(map[string]string, len(start.Attr))
		}
		n.Attrs[a.Name.Local] = a.Value
	}

	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child := &Node{}
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			n.Children = append(n.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(n.Children) == 0 {
				n.SetValue(strings.TrimSpace(text.String()))
			}
			return nil
		}
	}
}

// toConfiguration classifies a decoded <configuration> element.
func toConfiguration(n *Node) Configuration {
	if n == nil {
		return nil
	}
	if len(n.Children) == 0 {
		if v, ok := n.Value(); ok && v != "" {
			return Opaque(v)
		}
	}
	return n
}
