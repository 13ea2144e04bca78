package sg

import (
	"fmt"
	"strings"
)

// Path is a chain of nodes from a head node down to a tail, each node a
// child of the previous one. Paths identify one occurrence of a node that
// is shared by several parents.
type Path struct {
	nodes   []Node
	indices []int
}

// NewPath creates a path containing only head.
func NewPath(head Node) *Path {
	p := &Path{}
	if head != nil {
		p.push(head, -1)
	}
	return p
}

// Append extends the path with the child at index of the tail. It panics
// if the tail is not a Parent or index is out of range.
func (p *Path) Append(index int) *Path {
	par, ok := p.Tail().(Parent)
	if !ok {
		panic(fmt.Sprintf("sg: path tail %s has no children", describe(p.Tail())))
	}
	kids := par.Children()
	if index < 0 || index >= len(kids) {
		panic(fmt.Sprintf("sg: child index %d out of range [0,%d)", index, len(kids)))
	}
	p.push(kids[index], index)
	return p
}

// AppendNode extends the path with n, which must be a child of the tail.
// The first occurrence of n among the tail's children is used.
func (p *Path) AppendNode(n Node) *Path {
	if par, ok := p.Tail().(Parent); ok {
		for i, c := range par.Children() {
			if c == n {
				p.push(n, i)
				return p
			}
		}
	}
	panic(fmt.Sprintf("sg: %s is not a child of %s", describe(n), describe(p.Tail())))
}

func (p *Path) push(n Node, index int) {
	p.nodes = append(p.nodes, n)
	p.indices = append(p.indices, index)
}

func (p *Path) pop() {
	last := len(p.nodes) - 1
	p.nodes[last] = nil
	p.nodes = p.nodes[:last]
	p.indices = p.indices[:last]
}

// Len returns the number of nodes in the path.
func (p *Path) Len() int { return len(p.nodes) }

// Head returns the first node, or nil for an empty path.
func (p *Path) Head() Node {
	if len(p.nodes) == 0 {
		return nil
	}
	return p.nodes[0]
}

// Tail returns the last node, or nil for an empty path.
func (p *Path) Tail() Node {
	if len(p.nodes) == 0 {
		return nil
	}
	return p.nodes[len(p.nodes)-1]
}

// Node returns the i-th node.
func (p *Path) Node(i int) Node { return p.nodes[i] }

// Index returns the child index of the i-th node within node i-1.
// The head has index -1.
func (p *Path) Index(i int) int { return p.indices[i] }

// Contains reports whether n is on the path.
func (p *Path) Contains(n Node) bool {
	for _, m := range p.nodes {
		if m == n {
			return true
		}
	}
	return false
}

// Copy returns an independent copy of the path.
func (p *Path) Copy() *Path {
	return &Path{
		nodes:   append([]Node(nil), p.nodes...),
		indices: append([]int(nil), p.indices...),
	}
}

// Truncate shortens the path to its first n nodes.
func (p *Path) Truncate(n int) {
	for len(p.nodes) > n {
		p.pop()
	}
}

// Equal reports whether both paths visit the same nodes through the
// same child indices.
func (p *Path) Equal(o *Path) bool {
	if p.Len() != o.Len() {
		return false
	}
	for i := range p.nodes {
		if p.nodes[i] != o.nodes[i] || p.indices[i] != o.indices[i] {
			return false
		}
	}
	return true
}

// String formats the path as "Separator#1/Cube#4".
func (p *Path) String() string {
	var sb strings.Builder
	for i, n := range p.nodes {
		if i > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(describe(n))
	}
	return sb.String()
}

// describe returns the node name, or its type name and id.
func describe(n Node) string {
	if n == nil {
		return "<nil>"
	}
	b := n.Base()
	if name := b.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("%s#%d", TypeName(n), b.ID())
}

// TypeName returns the unqualified type name of n, such as "Separator".
func TypeName(n Node) string {
	t := fmt.Sprintf("%T", n)
	t = strings.TrimPrefix(t, "*")
	if i := strings.LastIndexByte(t, '.'); i >= 0 {
		t = t[i+1:]
	}
	return t
}
