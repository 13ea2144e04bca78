package sg

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// sg never creates a device. A host that owns one passes it to
// RenderAction with WithDevice; the surface format it reports becomes the
// format of the initial viewport.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle without a device, used for CPU-only
// rendering.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

// viewportFor returns vp with its format taken from the device surface,
// unless the device reports none.
func viewportFor(vp Viewport, dev DeviceHandle) Viewport {
	if dev == nil {
		return vp
	}
	if f := dev.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		vp.Format = f
	}
	return vp
}
