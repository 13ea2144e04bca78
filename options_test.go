package sg

import (
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/sg/recording"
)

// TestDefaultActionOptions tests the defaults every action starts from.
func TestDefaultActionOptions(t *testing.T) {
	o := defaultActionOptions()
	if o.policy == nil {
		t.Fatal("default policy is nil")
	}
	if !o.policy.ShouldCache(nil, CacheStats{UntouchedTraversals: DefaultAutoCacheThreshold}) {
		t.Error("default policy should cache after the default threshold")
	}
	if o.policy.ShouldCache(nil, CacheStats{UntouchedTraversals: DefaultAutoCacheThreshold - 1}) {
		t.Error("default policy should not cache before the default threshold")
	}
	if o.pickRadius != 0.05 {
		t.Errorf("pickRadius = %v, want 0.05", o.pickRadius)
	}
	if o.kinds != nil {
		t.Error("kinds should be nil so the action defaults apply")
	}
}

// TestWithEnabledKindsReplacesDefaults tests that WithEnabledKinds wins
// over the action's default kind set.
func TestWithEnabledKindsReplacesDefaults(t *testing.T) {
	a := NewBoundingBoxAction(WithEnabledKinds(ModelMatrixKind))
	kinds := a.EnabledKinds()
	if kinds.GetCardinality() != 1 || !kinds.Contains(uint32(ModelMatrixKind)) {
		t.Errorf("enabled kinds = %v, want only ModelMatrix", kinds.ToArray())
	}
}

// TestWithExtraKindsAddsToDefaults tests that WithExtraKinds keeps the
// defaults.
func TestWithExtraKindsAddsToDefaults(t *testing.T) {
	a := NewSearchAction(WithExtraKinds(DrawStyleKind))
	kinds := a.EnabledKinds()
	for _, k := range []Kind{SwitchKind, OverrideKind, DrawStyleKind} {
		if !kinds.Contains(uint32(k)) {
			t.Errorf("kind %v missing from %v", k, kinds.ToArray())
		}
	}
}

// TestWithCachePolicyNilKeepsDefault tests that a nil policy is ignored.
func TestWithCachePolicyNilKeepsDefault(t *testing.T) {
	a := NewRenderAction(WithCachePolicy(nil))
	if a.Policy() == nil {
		t.Fatal("Policy() is nil")
	}

	a = NewRenderAction(WithCachePolicy(NeverCache()))
	if a.Policy().ShouldCache(nil, CacheStats{UntouchedTraversals: 100}) {
		t.Error("NeverCache policy was not applied")
	}
}

// TestWithContextID tests the context id option.
func TestWithContextID(t *testing.T) {
	a := NewRenderAction(WithContextID(42))
	if a.ContextID() != 42 {
		t.Errorf("ContextID() = %d, want 42", a.ContextID())
	}
}

// TestWithBackend tests that a configured backend is used as the target.
func TestWithBackend(t *testing.T) {
	rec := recording.NewRecorder()
	a := NewRenderAction(WithBackend(rec))
	if a.Backend() != rec {
		t.Error("Backend() did not return the configured backend")
	}
}

// fakeDevice reports a surface format.
type fakeDevice struct {
	NullDeviceHandle
	format gputypes.TextureFormat
}

func (d fakeDevice) SurfaceFormat() gputypes.TextureFormat { return d.format }

// TestWithDeviceSetsViewportFormat tests that the device surface format
// becomes the viewport format.
func TestWithDeviceSetsViewportFormat(t *testing.T) {
	dev := fakeDevice{format: gputypes.TextureFormatBGRA8Unorm}
	a := NewRenderAction(WithDevice(dev), WithViewport(Viewport{Width: 10, Height: 10}))
	if a.Viewport().Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("viewport format = %v, want BGRA8Unorm", a.Viewport().Format)
	}

	a = NewRenderAction(WithDevice(NullDeviceHandle{}))
	if a.Viewport().Format != DefaultViewport().Format {
		t.Errorf("null device changed the viewport format to %v", a.Viewport().Format)
	}
}

// TestPickOptions tests the pick-only options.
func TestPickOptions(t *testing.T) {
	a := NewPickAction(WithPickAll(), WithStopAtFirst(), WithPickRadius(0.5))
	if !a.opts.pickAll || !a.opts.stopAtFirst {
		t.Error("pick flags not applied")
	}
	if a.opts.pickRadius != 0.5 {
		t.Errorf("pickRadius = %v, want 0.5", a.opts.pickRadius)
	}

	a = NewPickAction(WithPickRadius(-1))
	if a.opts.pickRadius != 0.05 {
		t.Errorf("negative radius should be ignored, got %v", a.opts.pickRadius)
	}
}

// TestParseCachePolicy tests policy names from configuration.
func TestParseCachePolicy(t *testing.T) {
	tests := []struct {
		name  string
		stats CacheStats
		want  bool
	}{
		{"always", CacheStats{}, true},
		{"never", CacheStats{UntouchedTraversals: 10}, false},
		{"auto", CacheStats{UntouchedTraversals: 3}, true},
		{"", CacheStats{UntouchedTraversals: 1}, false},
		{"cost", CacheStats{LastCost: time.Second}, true},
		{"cost", CacheStats{LastCost: time.Microsecond}, false},
	}
	for _, tt := range tests {
		p, ok := ParseCachePolicy(tt.name, 3, time.Millisecond)
		if !ok {
			t.Fatalf("ParseCachePolicy(%q) not ok", tt.name)
		}
		if got := p.ShouldCache(nil, tt.stats); got != tt.want {
			t.Errorf("%q.ShouldCache(%+v) = %v, want %v", tt.name, tt.stats, got, tt.want)
		}
	}

	if _, ok := ParseCachePolicy("sometimes", 0, 0); ok {
		t.Error("unknown policy name accepted")
	}
}
