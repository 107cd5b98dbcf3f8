package tube

import "github.com/go-gl/mathgl/mgl32"

// Surface is the renderable side of a tube: the arrays a graphics backend
// consumes. Every array is owned by the Mesh that created the Surface and is
// read-only to hosts. Stale normals are refreshed through Mesh.RefreshNormals.
type Surface struct {
	Vertices  []mgl32.Vec3
	Triangles []int
	Normals   []mgl32.Vec3

	normalsStale bool
	onRelease    func()
	released     bool
}

// OnRelease registers fn to run once when the owning mesh is released.
// Hosts use it to dispose of GPU-side copies.
func (s *Surface) OnRelease(fn func()) {
	s.onRelease = fn
}

// Released reports whether the owning mesh has been released.
func (s *Surface) Released() bool { return s.released }

// NormalsStale reports whether vertices moved since normals were last
// computed.
func (s *Surface) NormalsStale() bool { return s.normalsStale }

func (s *Surface) setVertices(v []mgl32.Vec3) {
	s.Vertices = v
	s.normalsStale = true
}

func (s *Surface) setTriangles(t []int) {
	s.Triangles = t
	s.recalculateNormals()
}

// recalculateNormals rebuilds per-vertex normals as the area-weighted sum of
// the face normals of every triangle touching the vertex.
func (s *Surface) recalculateNormals() {
	if cap(s.Normals) >= len(s.Vertices) {
		s.Normals = s.Normals[:len(s.Vertices)]
		for i := range s.Normals {
			s.Normals[i] = mgl32.Vec3{}
		}
	} else {
		s.Normals = make([]mgl32.Vec3, len(s.Vertices))
	}

	for t := 0; t+2 < len(s.Triangles); t += 3 {
		a, b, c := s.Triangles[t], s.Triangles[t+1], s.Triangles[t+2]
		if a >= len(s.Vertices) || b >= len(s.Vertices) || c >= len(s.Vertices) {
			continue
		}
		// cross product length is twice the triangle area
		face := s.Vertices[b].Sub(s.Vertices[a]).Cross(s.Vertices[c].Sub(s.Vertices[a]))
		s.Normals[a] = s.Normals[a].Add(face)
		s.Normals[b] = s.Normals[b].Add(face)
		s.Normals[c] = s.Normals[c].Add(face)
	}
	for i, n := range s.Normals {
		if n.Len() > 0 {
			s.Normals[i] = n.Normalize()
		}
	}
	s.normalsStale = false
}

func (s *Surface) release() {
	if s.released {
		return
	}
	s.released = true
	s.Vertices = nil
	s.Triangles = nil
	s.Normals = nil
	if s.onRelease != nil {
		s.onRelease()
	}
}
