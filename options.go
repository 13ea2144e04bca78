package sg

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/gogpu/sg/recording"
)

// ActionOption configures an action during creation.
//
// Example:
//
//	// Render into the software rasterizer for context 7, caching
//	// separators that stayed unchanged for three frames.
//	ra := sg.NewRenderAction(
//	    sg.WithBackend(raster.NewBackend()),
//	    sg.WithContextID(7),
//	    sg.WithCachePolicy(sg.AutoCache(3)),
//	)
type ActionOption func(*actionOptions)

// actionOptions holds optional configuration shared by all actions.
// Options that do not apply to an action are ignored by it.
type actionOptions struct {
	kinds  *roaring.Bitmap
	extra  []Kind
	policy CachePolicy

	contextID uint64
	backend   recording.Backend
	device    DeviceHandle
	viewport  *Viewport

	pickAll     bool
	stopAtFirst bool
	pickRadius  float64
}

// defaultActionOptions returns the default action options.
func defaultActionOptions() actionOptions {
	return actionOptions{
		policy:     AutoCache(DefaultAutoCacheThreshold),
		pickRadius: 0.05,
	}
}

// WithEnabledKinds replaces the action's default set of enabled element
// kinds. Reads of other kinds return their defaults; writes to them are
// dropped.
func WithEnabledKinds(kinds ...Kind) ActionOption {
	return func(o *actionOptions) {
		o.kinds = kindSet(kinds...)
	}
}

// WithExtraKinds enables kinds in addition to the action's defaults,
// typically extension kinds registered with RegisterKind.
func WithExtraKinds(kinds ...Kind) ActionOption {
	return func(o *actionOptions) {
		o.extra = append(o.extra, kinds...)
	}
}

// WithCachePolicy sets the policy separators in CacheAuto mode consult.
// A nil policy keeps the default AutoCache policy.
func WithCachePolicy(p CachePolicy) ActionOption {
	return func(o *actionOptions) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithContextID selects the render context whose cache book holds the
// action's render caches. Actions rendering into different graphics
// contexts must use different ids.
func WithContextID(id uint64) ActionOption {
	return func(o *actionOptions) {
		o.contextID = id
	}
}

// WithBackend sets the backend a RenderAction draws into.
func WithBackend(b recording.Backend) ActionOption {
	return func(o *actionOptions) {
		o.backend = b
	}
}

// WithDevice sets the host GPU device. Its surface format becomes the
// viewport format.
func WithDevice(d DeviceHandle) ActionOption {
	return func(o *actionOptions) {
		o.device = d
	}
}

// WithViewport sets the initial viewport.
func WithViewport(vp Viewport) ActionOption {
	return func(o *actionOptions) {
		o.viewport = &vp
	}
}

// WithPickAll makes a PickAction report every hit instead of the nearest.
func WithPickAll() ActionOption {
	return func(o *actionOptions) {
		o.pickAll = true
	}
}

// WithStopAtFirst makes a PickAction abort the traversal at the first hit
// found, which need not be the nearest.
func WithStopAtFirst() ActionOption {
	return func(o *actionOptions) {
		o.stopAtFirst = true
	}
}

// WithPickRadius sets the world-space distance within which lines and
// points count as hit.
func WithPickRadius(r float64) ActionOption {
	return func(o *actionOptions) {
		if r > 0 {
			o.pickRadius = r
		}
	}
}

// kindSet builds a bitmap of kinds.
func kindSet(kinds ...Kind) *roaring.Bitmap {
	bm := roaring.New()
	for _, k := range kinds {
		bm.Add(uint32(k))
	}
	return bm
}

// allKinds returns every registered kind, extension kinds included.
func allKinds() *roaring.Bitmap {
	bm := roaring.New()
	bm.AddRange(0, uint64(NumKinds()))
	return bm
}
