package sg

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// nameRegistry maps node names to the nodes carrying them.
var (
	namesMu sync.RWMutex
	names   = make(map[string][]Node)
)

// SetName names the node. Names are NFC-normalised; characters that are
// not valid in an identifier are replaced by '_', and a name starting
// with a digit gets a '_' prefix. An empty name clears the name.
// SetName returns the name actually stored.
func (b *NodeBase) SetName(name string) string {
	clean := cleanName(name)
	if clean != name {
		Logger().Warn("sg: node name adjusted", "requested", name, "stored", clean)
	}

	b.mu.Lock()
	old := b.name
	b.name = clean
	b.mu.Unlock()

	namesMu.Lock()
	defer namesMu.Unlock()
	if old != "" {
		list := names[old]
		for i, n := range list {
			if n.Base() == b {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(names, old)
		} else {
			names[old] = list
		}
	}
	if clean != "" && b.self != nil {
		names[clean] = append(names[clean], b.self)
	}
	return clean
}

// NodeByName returns the most recently named node called name.
func NodeByName(name string) (Node, bool) {
	namesMu.RLock()
	defer namesMu.RUnlock()
	list := names[norm.NFC.String(name)]
	if len(list) == 0 {
		return nil, false
	}
	return list[len(list)-1], true
}

// NodesByName returns every node called name, in naming order.
func NodesByName(name string) []Node {
	namesMu.RLock()
	defer namesMu.RUnlock()
	list := names[norm.NFC.String(name)]
	out := make([]Node, len(list))
	copy(out, list)
	return out
}

func cleanName(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
			sb.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				sb.WriteRune('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
