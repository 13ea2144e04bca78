package sg

import (
	"github.com/gogpu/sg/internal/ctxbook"
)

// ContextStats describes the cache book of one render context.
type ContextStats = ctxbook.Stats

// SetContextCapacity sets how many separator caches a render context
// keeps before evicting the least recently used. It applies to contexts
// created afterwards; n <= 0 restores the default.
func SetContextCapacity(n int) { ctxbook.SetCapacity(n) }

// DestroyRenderContext drops every cache held for render context id. Call
// it when the graphics context behind id goes away. Destroying an unknown
// context does nothing.
func DestroyRenderContext(id uint64) error {
	return ctxbook.Destroy(id)
}

// TeardownRenderContexts destroys every render context. Hosts call it at
// shutdown; the errors of all contexts are returned together.
func TeardownRenderContexts() error {
	return ctxbook.Teardown()
}

// RenderContexts returns the ids of the render contexts holding caches.
func RenderContexts() []uint64 { return ctxbook.Contexts() }

// RenderContextStats returns the statistics of every live render context,
// ordered by id.
func RenderContextStats() []ContextStats { return ctxbook.AllStats() }
