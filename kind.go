package sg

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/jinzhu/copier"
)

// Kind identifies one category of traversal state. It is also the index of
// the element stack that holds that state inside a State.
type Kind uint16

// Built-in element kinds. The order is the stack index and must not change.
const (
	ModelMatrixKind Kind = iota
	ViewingMatrixKind
	ProjectionMatrixKind
	ViewportKind
	MaterialKind
	MaterialBindingKind
	NormalBindingKind
	DrawStyleKind
	LineWidthKind
	PointSizeKind
	CoordinateKind
	NormalKind
	ClipPlaneKind
	ComplexityKind
	PickStyleKind
	LightModelKind
	ShaderKind
	TextureKind
	SwitchKind
	OverrideKind
	BackendFeaturesKind

	numBuiltinKinds
)

// Value is the payload of an element instance.
//
// Values are treated as immutable once stored: a write replaces the value
// of the depth-local instance, it never mutates a value that another depth
// may still be borrowing.
type Value interface {
	// Equal reports whether other holds the same state.
	Equal(other Value) bool

	// Clone returns a copy that shares no mutable memory with the receiver.
	Clone() Value
}

// KindInfo describes an element kind.
type KindInfo struct {
	// Name is the unique kind name, e.g. "ModelMatrix".
	Name string

	// Default is the value every State starts with at depth 0.
	Default Value

	// Accumulates marks kinds whose writes derive from the inherited
	// value (matrix multiplication, clip plane lists). A write to such a
	// kind inside a cache recording counts as a read of the old value.
	Accumulates bool
}

// builtinKinds is the static registration table for the built-in kinds,
// indexed by Kind.
var builtinKinds = [numBuiltinKinds]KindInfo{
	ModelMatrixKind:      {Name: "ModelMatrix", Default: matrixValue(identityMatrix), Accumulates: true},
	ViewingMatrixKind:    {Name: "ViewingMatrix", Default: matrixValue(identityMatrix)},
	ProjectionMatrixKind: {Name: "ProjectionMatrix", Default: matrixValue(identityMatrix)},
	ViewportKind:         {Name: "Viewport", Default: DefaultViewport()},
	MaterialKind:         {Name: "Material", Default: DefaultMaterial()},
	MaterialBindingKind:  {Name: "MaterialBinding", Default: BindOverall},
	NormalBindingKind:    {Name: "NormalBinding", Default: BindPerVertexIndexed},
	DrawStyleKind:        {Name: "DrawStyle", Default: StyleFilled},
	LineWidthKind:        {Name: "LineWidth", Default: floatValue(1)},
	PointSizeKind:        {Name: "PointSize", Default: floatValue(1)},
	CoordinateKind:       {Name: "Coordinate", Default: vec3List(nil)},
	NormalKind:           {Name: "Normal", Default: vec3List(nil)},
	ClipPlaneKind:        {Name: "ClipPlane", Default: planeList(nil), Accumulates: true},
	ComplexityKind:       {Name: "Complexity", Default: floatValue(0.5)},
	PickStyleKind:        {Name: "PickStyle", Default: PickShape},
	LightModelKind:       {Name: "LightModel", Default: LightPhong},
	ShaderKind:           {Name: "Shader", Default: (*Shader)(nil)},
	TextureKind:          {Name: "Texture", Default: (*Texture)(nil)},
	SwitchKind:           {Name: "Switch", Default: intValue(-1)},
	OverrideKind:         {Name: "Override", Default: newOverrideMask(), Accumulates: true},
	BackendFeaturesKind:  {Name: "BackendFeatures", Default: featuresValue(0)},
}

// Extension kinds registered at run time.
var (
	kindsMu    sync.RWMutex
	extKinds   []KindInfo
	kindByName = builtinNames()
)

func builtinNames() map[string]Kind {
	m := make(map[string]Kind, numBuiltinKinds)
	for k := Kind(0); k < numBuiltinKinds; k++ {
		m[builtinKinds[k].Name] = k
	}
	return m
}

// Info returns the descriptor of k.
// Info panics with a ContractError for an unregistered kind.
func (k Kind) Info() KindInfo {
	if k < numBuiltinKinds {
		return builtinKinds[k]
	}
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	i := int(k - numBuiltinKinds)
	if i >= len(extKinds) {
		contractViolation("Kind.Info", 0, fmt.Errorf("%w: %d", ErrUnknownKind, k))
	}
	return extKinds[i]
}

// String returns the kind name.
func (k Kind) String() string {
	if !k.registered() {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return k.Info().Name
}

func (k Kind) registered() bool {
	return int(k) < NumKinds()
}

// NumKinds returns the number of registered kinds, built-in included.
func NumKinds() int {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	return int(numBuiltinKinds) + len(extKinds)
}

// BuiltinKinds returns all built-in kinds in stack-index order.
func BuiltinKinds() []Kind {
	out := make([]Kind, numBuiltinKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// LookupKind returns the kind registered under name.
func LookupKind(name string) (Kind, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	k, ok := kindByName[name]
	return k, ok
}

// KindOption configures an extension kind.
type KindOption func(*KindInfo)

// Accumulating marks an extension kind as accumulating.
func Accumulating() KindOption {
	return func(info *KindInfo) { info.Accumulates = true }
}

// RegisterKind registers an extension element kind and returns its index.
//
// Registration is explicit and idempotent: registering a name twice with a
// default of the same dynamic type returns the existing kind. Registering a
// name again with a different default type panics, as does an empty name.
//
// def may implement Value. Any other type is wrapped: equality then uses
// go-cmp (unexported fields included) and Clone makes a deep copy.
//
// Kinds registered after a State was created are treated as disabled by
// that State.
func RegisterKind(name string, def any, opts ...KindOption) Kind {
	if name == "" {
		panic("sg: RegisterKind name is empty")
	}
	v := wrapValue(def)

	kindsMu.Lock()
	defer kindsMu.Unlock()

	if k, ok := kindByName[name]; ok {
		existing := kindInfoLocked(k)
		if reflect.TypeOf(existing.Default) != reflect.TypeOf(v) || !sameWrapped(existing.Default, v) {
			panic("sg: RegisterKind called twice for " + name + " with a different type")
		}
		return k
	}

	info := KindInfo{Name: name, Default: v}
	for _, opt := range opts {
		opt(&info)
	}
	k := numBuiltinKinds + Kind(len(extKinds))
	extKinds = append(extKinds, info)
	kindByName[name] = k
	Logger().Debug("sg: element kind registered", "kind", name, "index", k)
	return k
}

// kindInfoLocked returns the descriptor of k; kindsMu must be held.
func kindInfoLocked(k Kind) KindInfo {
	if k < numBuiltinKinds {
		return builtinKinds[k]
	}
	return extKinds[k-numBuiltinKinds]
}

// unregisterKind drops an extension kind. Tests only.
func unregisterKind(name string) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	k, ok := kindByName[name]
	if !ok || k < numBuiltinKinds {
		return
	}
	delete(kindByName, name)
	extKinds[k-numBuiltinKinds] = KindInfo{Name: name + "(unregistered)", Default: anyValue{}}
}

// anyValue adapts an arbitrary payload to Value.
type anyValue struct{ v any }

var exportAll = cmp.Exporter(func(reflect.Type) bool { return true })

func (a anyValue) Equal(other Value) bool {
	b, ok := other.(anyValue)
	if !ok {
		return false
	}
	return cmp.Equal(a.v, b.v, exportAll)
}

func (a anyValue) Clone() Value {
	if a.v == nil {
		return a
	}
	dst := reflect.New(reflect.TypeOf(a.v))
	if err := copier.CopyWithOption(dst.Interface(), a.v, copier.Option{DeepCopy: true}); err != nil {
		Logger().Warn("sg: extension value copied by reference", "type", fmt.Sprintf("%T", a.v), "err", err)
		return a
	}
	return anyValue{v: dst.Elem().Interface()}
}

func wrapValue(v any) Value {
	if val, ok := v.(Value); ok {
		return val
	}
	return anyValue{v: v}
}

func unwrapValue(v Value) any {
	if a, ok := v.(anyValue); ok {
		return a.v
	}
	return v
}

func sameWrapped(a, b Value) bool {
	wa, okA := a.(anyValue)
	wb, okB := b.(anyValue)
	if !okA || !okB {
		return true
	}
	return reflect.TypeOf(wa.v) == reflect.TypeOf(wb.v)
}
