package recording

import "image"

// ResourcePool stores resources referenced by recording commands.
// Resources are stored in slices indexed by their reference types.
// Mutable resources are cloned on Add so a recording never changes after
// it was captured.
//
// ResourcePool is not safe for concurrent use while being filled. A
// finished Recording only reads its pool and may be replayed concurrently.
type ResourcePool struct {
	meshes  []*Primitives
	images  []image.Image
	shaders []*Shader
}

// NewResourcePool creates an empty resource pool with pre-allocated capacity.
func NewResourcePool() *ResourcePool {
	return &ResourcePool{
		meshes:  make([]*Primitives, 0, 16),
		images:  make([]image.Image, 0, 4),
		shaders: make([]*Shader, 0, 2),
	}
}

// AddMesh adds a primitive batch to the pool and returns its reference.
// The batch is cloned.
func (p *ResourcePool) AddMesh(m *Primitives) MeshRef {
	if m != nil {
		m = m.Clone()
	}
	p.meshes = append(p.meshes, m)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return MeshRef(uint32(len(p.meshes) - 1))
}

// Mesh returns the batch for the given reference, or nil.
func (p *ResourcePool) Mesh(ref MeshRef) *Primitives {
	if int(ref) >= len(p.meshes) {
		return nil
	}
	return p.meshes[ref]
}

// MeshCount returns the number of batches in the pool.
func (p *ResourcePool) MeshCount() int { return len(p.meshes) }

// AddImage adds an image to the pool and returns its reference.
// Images are stored by reference; texture images are immutable.
// A nil image yields InvalidRef.
func (p *ResourcePool) AddImage(img image.Image) ImageRef {
	if img == nil {
		return ImageRef(InvalidRef)
	}
	for i, have := range p.images {
		if have == img {
			// #nosec G115 -- pool size is bounded by available memory
			return ImageRef(uint32(i))
		}
	}
	p.images = append(p.images, img)
	// #nosec G115 -- pool size is bounded by available memory
	return ImageRef(uint32(len(p.images) - 1))
}

// Image returns the image for the given reference, or nil.
func (p *ResourcePool) Image(ref ImageRef) image.Image {
	if int(ref) >= len(p.images) {
		return nil
	}
	return p.images[ref]
}

// ImageCount returns the number of images in the pool.
func (p *ResourcePool) ImageCount() int { return len(p.images) }

// AddShader adds a shader to the pool and returns its reference.
// Shaders with the same key share one entry. A nil shader yields
// InvalidRef.
func (p *ResourcePool) AddShader(s *Shader) ShaderRef {
	if s == nil {
		return ShaderRef(InvalidRef)
	}
	for i, have := range p.shaders {
		if have.Key == s.Key {
			// #nosec G115 -- pool size is bounded by available memory
			return ShaderRef(uint32(i))
		}
	}
	p.shaders = append(p.shaders, s)
	// #nosec G115 -- pool size is bounded by available memory
	return ShaderRef(uint32(len(p.shaders) - 1))
}

// Shader returns the shader for the given reference, or nil.
func (p *ResourcePool) Shader(ref ShaderRef) *Shader {
	if int(ref) >= len(p.shaders) {
		return nil
	}
	return p.shaders[ref]
}

// ShaderCount returns the number of shaders in the pool.
func (p *ResourcePool) ShaderCount() int { return len(p.shaders) }

// Clear removes all resources from the pool.
// This does not release the underlying memory; use NewResourcePool for that.
func (p *ResourcePool) Clear() {
	clear(p.meshes)
	p.meshes = p.meshes[:0]
	p.images = p.images[:0]
	p.shaders = p.shaders[:0]
}
