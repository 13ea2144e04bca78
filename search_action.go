package sg

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SearchInterest selects which matches a SearchAction keeps.
type SearchInterest uint8

const (
	SearchFirst SearchInterest = iota
	SearchLast
	SearchAll
)

// SearchAction finds paths to nodes by identity, name or type.
// Criteria combine: a node matches when it satisfies all that are set.
type SearchAction struct {
	ActionBase

	node     Node
	name     string
	match    func(Node) bool
	interest SearchInterest
	all      bool

	paths []*Path
}

// NewSearchAction creates a search action that follows switch
// selections. It enables only SwitchKind and OverrideKind.
func NewSearchAction(opts ...ActionOption) *SearchAction {
	a := &SearchAction{}
	a.InitAction(a, kindSet(SwitchKind, OverrideKind), opts...)
	return a
}

// SetNode searches for n.
func (a *SearchAction) SetNode(n Node) *SearchAction {
	a.node = n
	return a
}

// SetName searches for nodes named name.
func (a *SearchAction) SetName(name string) *SearchAction {
	a.name = name
	return a
}

// SetFunc searches for nodes accepted by match.
func (a *SearchAction) SetFunc(match func(Node) bool) *SearchAction {
	a.match = match
	return a
}

// SetInterest selects which matches are kept.
func (a *SearchAction) SetInterest(i SearchInterest) *SearchAction {
	a.interest = i
	return a
}

// SetSearchingAll makes the search visit every child of switches.
func (a *SearchAction) SetSearchingAll(all bool) *SearchAction {
	a.all = all
	return a
}

// Reset clears the criteria and results.
func (a *SearchAction) Reset() {
	a.node, a.name, a.match = nil, "", nil
	a.interest, a.all = SearchFirst, false
	a.paths = nil
}

// SearchType searches for nodes of type T.
func SearchType[T Node](a *SearchAction) *SearchAction {
	return a.SetFunc(isType[T])
}

func (a *SearchAction) visitsAllChildren() bool { return a.all }

// BeginApply clears previous results.
func (a *SearchAction) BeginApply(*State) { a.paths = nil }

// EndApply does nothing.
func (a *SearchAction) EndApply(*State) {}

// Path returns the found path, or nil. With SearchAll it is the first.
func (a *SearchAction) Path() *Path {
	if len(a.paths) == 0 {
		return nil
	}
	return a.paths[0]
}

// Paths returns every found path.
func (a *SearchAction) Paths() []*Path { return a.paths }

func (a *SearchAction) matches(n Node) bool {
	if a.node == nil && a.name == "" && a.match == nil {
		return false
	}
	if a.node != nil && n != a.node {
		return false
	}
	if a.name != "" && n.Base().Name() != a.name {
		return false
	}
	return a.match == nil || a.match(n)
}

// Visit records matches and continues with the generic behavior.
func (a *SearchAction) Visit(n Node) {
	if a.matches(n) {
		p := a.CurPath().Copy()
		switch a.interest {
		case SearchFirst:
			a.paths = []*Path{p}
			a.Abort()
			return
		case SearchLast:
			a.paths = []*Path{p}
		default:
			a.paths = append(a.paths, p)
		}
	}
	if _, ok := n.(Shape); ok {
		return
	}
	a.ActionBase.Visit(n)
}

// OutlineEntry is one line of a WriteAction outline.
type OutlineEntry struct {
	Depth    int    `yaml:"depth"`
	Type     string `yaml:"type"`
	Name     string `yaml:"name,omitempty"`
	Label    string `yaml:"label,omitempty"`
	Children int    `yaml:"children,omitempty"`
}

// String formats the entry indented by depth.
func (e OutlineEntry) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", e.Depth))
	if e.Label != "" {
		sb.WriteString(e.Label)
		sb.WriteByte(' ')
	}
	sb.WriteString(e.Type)
	if e.Name != "" && !strings.HasPrefix(e.Label, "USE") {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	return sb.String()
}

// WriteAction produces a debug outline of a graph. Nodes reachable
// through more than one parent are labeled DEF at their first occurrence
// and USE, without children, afterwards.
type WriteAction struct {
	ActionBase

	refs    map[Node]int
	defined map[Node]string
	entries []OutlineEntry
}

// NewWriteAction creates a write action. It enables no element kinds.
func NewWriteAction(opts ...ActionOption) *WriteAction {
	a := &WriteAction{}
	a.InitAction(a, kindSet(), opts...)
	return a
}

// BeginApply resets the outline.
func (a *WriteAction) BeginApply(*State) {
	a.refs = make(map[Node]int)
	a.defined = make(map[Node]string)
	a.entries = nil
}

// EndApply does nothing.
func (a *WriteAction) EndApply(*State) {}

// countRefs counts references to every node reachable from n, descending
// into each node once.
func (a *WriteAction) countRefs(n Node) {
	a.refs[n]++
	if a.refs[n] > 1 {
		return
	}
	if p, ok := n.(Parent); ok {
		for _, c := range p.Children() {
			a.countRefs(c)
		}
	}
}

// Outline returns the entries of the last Apply.
func (a *WriteAction) Outline() []OutlineEntry { return a.entries }

// String returns the outline, one entry per line.
func (a *WriteAction) String() string {
	lines := make([]string, len(a.entries))
	for i, e := range a.entries {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// YAML encodes the outline.
func (a *WriteAction) YAML() ([]byte, error) {
	return yaml.Marshal(a.entries)
}

// Visit appends an entry for n and descends into its children unless n
// was already written.
func (a *WriteAction) Visit(n Node) {
	if a.CurPath().Len() == 1 {
		a.countRefs(n)
	}
	e := OutlineEntry{
		Depth: a.CurPath().Len() - 1,
		Type:  TypeName(n),
		Name:  n.Base().Name(),
	}
	p, isParent := n.(Parent)
	if isParent {
		e.Children = len(p.Children())
	}
	if label, seen := a.defined[n]; seen {
		e.Label = "USE " + label
		e.Children = 0
		a.entries = append(a.entries, e)
		return
	}
	if a.refs[n] > 1 {
		label := e.Name
		if label == "" {
			label = fmt.Sprintf("%s_%d", e.Type, n.Base().ID())
		}
		a.defined[n] = label
		e.Label = "DEF " + label
	}
	a.entries = append(a.entries, e)
	if isParent {
		a.TraverseChildren(p)
	}
}
