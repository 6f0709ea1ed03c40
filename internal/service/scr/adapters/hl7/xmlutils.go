// Package hl7 maps between the HL7v3 markup wire format and the resource
// graph: inbound mappers (markup subtree -> entities) and the location-path
// facade they are built on.
package hl7

import (
	"strings"

	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
	"github.com/antchfx/xmlquery"
)

// Node is the markup document node handed to mappers. The xmlquery tree is an
// implementation detail of this package; mappers go through the facade below
// and never walk it directly.
type Node = xmlquery.Node

// Parse reads a markup document into a queryable tree.
func Parse(document string) (*Node, error) {
	return xmlquery.Parse(strings.NewReader(document))
}

// ValueAt extracts the scalar value at path. The path must resolve to
// something; a miss is a PathNotFoundError.
func ValueAt(node *Node, path string) (string, error) {
	found := xmlquery.FindOne(node, path)
	if found == nil {
		return "", exceptions.PathNotFoundError{Path: path}
	}
	return found.InnerText(), nil
}

// OptionalValueAt extracts the scalar value at path when present.
func OptionalValueAt(node *Node, path string) (string, bool) {
	found := xmlquery.FindOne(node, path)
	if found == nil {
		return "", false
	}
	return found.InnerText(), true
}

// OptionalNodeAt returns the first node matching path when present.
func OptionalNodeAt(node *Node, path string) (*Node, bool) {
	found := xmlquery.FindOne(node, path)
	return found, found != nil
}

// NodesAt returns every node matching path, in document order. No match is an
// empty sequence, not an error.
func NodesAt(node *Node, path string) []*Node {
	return xmlquery.Find(node, path)
}
