// Package sg provides a retained-mode 3D scene graph for Go.
//
// # Overview
//
// A scene is a directed acyclic graph of nodes. Property nodes such as
// [Material], [DrawStyle] and [Translation] write traversal state;
// shapes such as [Cube] and [Sphere] read it; groups order their children
// and [Separator] scopes everything its children set. A node may have
// several parents, and a [Path] names one occurrence of a shared node.
//
// Operations on a graph are actions. An action walks the graph depth
// first, carrying a [State]: one stack of element values per [Kind].
// The built-in actions are:
//
//   - [RenderAction] draws into a [recording.Backend] or records a frame
//   - [BoundingBoxAction] computes world-space bounds
//   - [PickAction] intersects a ray with the shapes
//   - [CallbackAction] reports triangles, segments and points
//   - [SearchAction] finds nodes by name, identity or type
//   - [PrimitiveCountAction] counts what a render would draw
//   - [WriteAction] produces an outline of the graph
//
// # Quick Start
//
//	root := sg.NewSeparator(
//	    sg.NewCamera(sg.Perspective),
//	    sg.NewTranslation(1, 0, 0),
//	    sg.NewMaterial(),
//	    sg.NewCube(1, 1, 1),
//	)
//
//	b, err := sg.Render(root, "raster", sg.WithViewport(sg.DefaultViewport()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = b.(recording.FileBackend).SaveToFile("cube.png")
//
// Backends register themselves by name; import them for their side
// effects:
//
//	import _ "github.com/gogpu/sg/recording/backends/raster"
//
// # Element Caching
//
// Separators cache what their children produced: a render recording per
// render context and a bounding box. A cache remembers every inherited
// element value the children read while it was built, and stays valid
// as long as those values are unchanged at the next traversal. Editing
// a node touches its ancestors, which drops the caches that include it.
// Whether a separator builds a cache is decided by its [CacheMode] and
// the action's [CachePolicy].
//
// [Cache] exposes the same mechanism for custom nodes and actions.
//
// # Render Contexts
//
// Render caches are kept per render context id, so that one graph can be
// drawn into several devices. [DestroyRenderContext] releases a context
// and [RenderContextStats] reports its book.
//
// # Extension
//
// [RegisterKind] adds an element kind carrying any Go value. Custom
// nodes embed [NodeBase] and implement [Actor] or one of the per-action
// handler interfaces; custom actions embed [ActionBase].
//
// # Thread Safety
//
// Nodes may be edited and traversed from any goroutine. An action
// instance is not reentrant: apply it from one goroutine at a time, and
// never from inside its own traversal.
//
// # Logging
//
// sg logs nothing by default. Call [SetLogger] with a [log/slog] logger
// to see cache activity and contract violations.
package sg
