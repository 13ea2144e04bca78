// Package recording captures render traversal output as draw commands.
//
// The recording system is what makes separator render caches possible: a
// RenderAction that builds a cache draws through a Recorder (teed with the
// real backend), and a later traversal whose cache is still valid replays
// the finished Recording instead of walking the subgraph.
//
// # Architecture
//
// The system follows a Command Pattern with three main components:
//
//   - Recorder: captures Backend calls as commands
//   - Recording: stores commands and resources for replay
//   - Backend: draws commands to a specific output
//
// Resources (primitive batches, images, shaders) are stored in a
// ResourcePool and referenced by typed handles (MeshRef, ImageRef,
// ShaderRef) so a Recording never aliases caller memory.
//
// # Basic Usage
//
//	rec := recording.NewRecorder()
//	rec.SetModelMatrix(linear.Translate(0, 1, 0))
//	rec.SetMaterial(recording.Material{Diffuse: linear.Red, Lit: true})
//	rec.Draw(&recording.Primitives{Mode: recording.Triangles, Positions: tri})
//	r := rec.FinishRecording()
//
//	// Replay inside an open frame
//	r.Replay(backend)
//
//	// Or as a frame of its own
//	r.Playback(backend)
//
// # Backend Registration
//
// Backends register themselves by name in init(), following the
// database/sql driver pattern, and are created with NewBackend:
//
//	import _ "github.com/gogpu/sg/recording/backends/raster"
//
//	b, err := recording.NewBackend("raster")
//
// Built-in backends:
//
//   - raster: software rasterizer producing an *image.RGBA (PNG output)
//   - trace: text log of every call, for debugging and tests
//
// # Thread Safety
//
// Recorder is not safe for concurrent use. A finished Recording is
// read-only and may be replayed from several goroutines into distinct
// backends.
package recording
