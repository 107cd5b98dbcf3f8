// Package tube builds triangulated tube meshes around a polyline of nodes.
//
// Every node gets a ring of Quality vertices in the XY plane; consecutive
// rings are stitched into a quad strip with no end caps. Rings are never
// oriented along the line, so the mesh reads as a ribbon when the line runs
// along x.
package tube

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MinQuality is the smallest ring that still encloses an area.
const MinQuality = 3

var (
	ErrIndexOutOfRange = errors.New("node index out of range")
	ErrQuality         = errors.New("ring quality must be at least 3")
	ErrRadius          = errors.New("radius must be positive")
)

// Mesh is a tube around an ordered sequence of nodes. It is not safe for
// concurrent use.
type Mesh struct {
	nodes     []mgl32.Vec3
	radius    float32
	quality   int
	generated bool
	surface   *Surface
}

// New creates an empty mesh. Nothing is generated until nodes are added.
func New(radius float32, quality int) (*Mesh, error) {
	if err := validate(radius, quality); err != nil {
		return nil, err
	}
	return &Mesh{
		radius:  radius,
		quality: quality,
		surface: &Surface{},
	}, nil
}

// FromNodes creates a generated mesh around a copy of nodes.
func FromNodes(nodes []mgl32.Vec3, radius float32, quality int) (*Mesh, error) {
	m, err := New(radius, quality)
	if err != nil {
		return nil, err
	}
	m.ReplaceNodes(nodes)
	return m, nil
}

func validate(radius float32, quality int) error {
	if quality < MinQuality {
		return fmt.Errorf("%w: got %d", ErrQuality, quality)
	}
	if !(radius > 0) {
		return fmt.Errorf("%w: got %v", ErrRadius, radius)
	}
	return nil
}

// Nodes returns the centerline. The slice is owned by the mesh.
func (m *Mesh) Nodes() []mgl32.Vec3 { return m.nodes }

// Len returns the node count.
func (m *Mesh) Len() int { return len(m.nodes) }

func (m *Mesh) Radius() float32 { return m.radius }
func (m *Mesh) Quality() int    { return m.quality }

// IsGenerated reports whether vertices and triangles have been built at
// least once.
func (m *Mesh) IsGenerated() bool { return m.generated }

// Surface returns the renderable arrays.
func (m *Mesh) Surface() *Surface { return m.surface }

// Node returns the node at index.
func (m *Mesh) Node(index int) (mgl32.Vec3, error) {
	if err := m.checkIndex(index); err != nil {
		return mgl32.Vec3{}, err
	}
	return m.nodes[index], nil
}

// AddNode appends a node and rebuilds the whole mesh. Use AddNodes when
// adding more than one.
func (m *Mesh) AddNode(position mgl32.Vec3) {
	m.nodes = append(m.nodes, position)
	m.generate()
}

// AddNodes appends positions and rebuilds once.
func (m *Mesh) AddNodes(positions []mgl32.Vec3) {
	m.nodes = append(m.nodes, positions...)
	m.generate()
}

// ReplaceNodes replaces the centerline with a copy of positions.
func (m *Mesh) ReplaceNodes(positions []mgl32.Vec3) {
	m.nodes = append(make([]mgl32.Vec3, 0, len(positions)), positions...)
	m.generate()
}

// UpdateNode moves one node. With updateVerts the node's ring is recomputed
// right away; without it the ring stays stale until UpdateVerts is called,
// which lets callers move many nodes and pay for one flush.
func (m *Mesh) UpdateNode(position mgl32.Vec3, index int, updateVerts bool) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	m.nodes[index] = position
	if updateVerts {
		m.ring(m.surface.Vertices, index)
		m.surface.normalsStale = true
	}
	return nil
}

// UpdateVerts recomputes every ring from the current nodes.
func (m *Mesh) UpdateVerts() {
	if m.surface.released {
		return
	}
	verts := m.surface.Vertices
	if len(verts) != m.quality*len(m.nodes) {
		verts = make([]mgl32.Vec3, m.quality*len(m.nodes))
	}
	for y := range m.nodes {
		m.ring(verts, y)
	}
	m.surface.setVertices(verts)
}

// UpdateVertsAt recomputes the ring of a single node.
func (m *Mesh) UpdateVertsAt(index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	m.ring(m.surface.Vertices, index)
	m.surface.normalsStale = true
	return nil
}

// RefreshNormals recomputes the surface normals if vertices moved since they
// were last computed.
func (m *Mesh) RefreshNormals() {
	if m.surface.released || !m.surface.normalsStale {
		return
	}
	m.surface.recalculateNormals()
}

// SetScale sets the tube radius.
func (m *Mesh) SetScale(radius float32) error {
	if err := validate(radius, m.quality); err != nil {
		return err
	}
	m.radius = radius
	if m.generated {
		m.UpdateVerts()
	}
	return nil
}

// SetQuality sets the number of vertices per ring.
func (m *Mesh) SetQuality(quality int) error {
	if err := validate(m.radius, quality); err != nil {
		return err
	}
	m.quality = quality
	if m.generated {
		m.generate()
	}
	return nil
}

// Release drops the mesh data and fires the surface release hook. A
// released mesh must not be used again.
func (m *Mesh) Release() {
	m.nodes = nil
	m.surface.release()
}

func (m *Mesh) checkIndex(index int) error {
	if index < 0 || index >= len(m.nodes) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(m.nodes))
	}
	return nil
}

func (m *Mesh) generate() {
	if m.surface.released {
		return
	}
	m.surface.Vertices = nil
	m.UpdateVerts()
	m.surface.setTriangles(triangles(len(m.nodes), m.quality))
	m.generated = true
}

// ring writes the vertices of node y into verts. The angle is taken from the
// flattened vertex index, not the index within the ring, so each ring starts
// at a different phase.
func (m *Mesh) ring(verts []mgl32.Vec3, y int) {
	q := m.quality
	r := float64(m.radius)
	node := m.nodes[y]
	for i := q * y; i < q*y+q; i++ {
		angle := 2*math.Pi*float64(i)/float64(q) + 1
		verts[i] = node.Add(mgl32.Vec3{
			float32(math.Sin(angle) * r),
			float32(math.Cos(angle) * r),
			0,
		})
	}
}

// triangles stitches n rings of quality vertices into a closed quad strip.
func triangles(n, quality int) []int {
	if n < 2 {
		return []int{}
	}
	tris := make([]int, quality*(n-1)*6)
	for i, y, i0 := 0, 0, 0; y < n-1; y++ {
		for x := 0; x < quality; x, i, i0 = x+1, i+6, i0+1 {
			tris[i] = i0
			tris[i+1] = quality + i0
			tris[i+4] = quality + i0
			tris[i+2] = 1 + i0
			tris[i+3] = 1 + i0
			tris[i+5] = 1 + quality + i0

			// last quad of the band wraps back to the first vertex of each ring
			if x == quality-1 {
				tris[i+3] = i0
				tris[i+4] = 1 + i0
				tris[i+5] = i0 - (quality - 1)
			}
		}
	}
	return tris
}
