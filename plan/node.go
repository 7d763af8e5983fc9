package plan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Node is a node in a physical query execution plan tree
type Node interface {
	// ID returns the stable identity of this node. Side tables such as the
	// offload tag set key on it.
	ID() uuid.UUID
	// Children returns the nodes this node consumes, in order
	Children() []Node
	// SetChildren replaces the node's children
	SetChildren(children ...Node)
	// Schema returns the ordered attributes this node declares to its consumer
	Schema() []Attribute
	// ExplainInfo returns a one-line description for plan rendering
	ExplainInfo() string
}

type baseNode struct {
	id       uuid.UUID
	children []Node
}

func newBaseNode(children ...Node) baseNode {
	return baseNode{id: uuid.New(), children: children}
}

func (b *baseNode) ID() uuid.UUID { return b.id }

func (b *baseNode) Children() []Node { return b.children }

func (b *baseNode) SetChildren(children ...Node) { b.children = children }

// Explain renders a plan tree as an indented multi-line string
func Explain(root Node) string {
	var sb strings.Builder
	explainNode(&sb, root, 0)
	return sb.String()
}

func explainNode(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.ExplainInfo())
	sb.WriteString("\n")
	for _, child := range n.Children() {
		explainNode(sb, child, depth+1)
	}
}

func formatSchema(attrs []Attribute) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = a.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
