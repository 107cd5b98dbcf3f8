package tube

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

func line(n int) []mgl32.Vec3 {
	nodes := make([]mgl32.Vec3, n)
	for i := range nodes {
		nodes[i] = mgl32.Vec3{float32(i), float32(i % 3), float32(i) * 0.5}
	}
	return nodes
}

func mustFromNodes(t *testing.T, nodes []mgl32.Vec3, radius float32, quality int) *Mesh {
	t.Helper()
	m, err := FromNodes(nodes, radius, quality)
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	return m
}

func TestGeneratedCounts(t *testing.T) {
	for n := 2; n <= 9; n++ {
		for q := 3; q <= 12; q++ {
			m := mustFromNodes(t, line(n), 0.5, q)
			s := m.Surface()
			if got, want := len(s.Vertices), q*n; got != want {
				t.Fatalf("n=%d q=%d: expected %d vertices, got %d", n, q, want, got)
			}
			if got, want := len(s.Triangles)/3, q*(n-1)*2; got != want {
				t.Fatalf("n=%d q=%d: expected %d triangles, got %d", n, q, want, got)
			}
			if len(s.Normals) != len(s.Vertices) {
				t.Fatalf("n=%d q=%d: expected %d normals, got %d", n, q, len(s.Vertices), len(s.Normals))
			}
			for _, idx := range s.Triangles {
				if idx < 0 || idx > q*n-1 {
					t.Fatalf("n=%d q=%d: triangle index %d out of bounds", n, q, idx)
				}
			}
		}
	}
}

func TestShortLinesHaveNoTriangles(t *testing.T) {
	for _, n := range []int{0, 1} {
		m := mustFromNodes(t, line(n), 0.5, 4)
		if len(m.Surface().Triangles) != 0 {
			t.Fatalf("n=%d: expected no triangles, got %d indices", n, len(m.Surface().Triangles))
		}
		if len(m.Surface().Vertices) != 4*n {
			t.Fatalf("n=%d: expected %d vertices, got %d", n, 4*n, len(m.Surface().Vertices))
		}
	}
}

func TestTriangleTopologyWrapsRing(t *testing.T) {
	got := triangles(2, 3)
	want := []int{
		0, 3, 1, 1, 3, 4,
		1, 4, 2, 2, 4, 5,
		2, 5, 3, 2, 3, 0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("triangles mismatch (-want +got):\n%s", diff)
	}
}

func TestRingUsesFlattenedIndexPhase(t *testing.T) {
	nodes := []mgl32.Vec3{{0, 0, 0}, {1, 2, 3}}
	m := mustFromNodes(t, nodes, 2, 4)
	verts := m.Surface().Vertices

	for i, v := range verts {
		node := nodes[i/4]
		angle := 2*math.Pi*float64(i)/4 + 1
		want := mgl32.Vec3{
			node.X() + float32(math.Sin(angle)*2),
			node.Y() + float32(math.Cos(angle)*2),
			node.Z(),
		}
		if !v.ApproxEqual(want) {
			t.Fatalf("vertex %d: expected %v, got %v", i, want, v)
		}
	}
}

func TestUpdateVertsAtTouchesOnlyOneRing(t *testing.T) {
	const q = 6
	m := mustFromNodes(t, line(5), 0.25, q)
	before := append([]mgl32.Vec3(nil), m.Surface().Vertices...)

	if err := m.UpdateNode(mgl32.Vec3{9, 9, 9}, 2, false); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if diff := cmp.Diff(before, m.Surface().Vertices); diff != "" {
		t.Fatalf("staged update changed vertices:\n%s", diff)
	}

	if err := m.UpdateVertsAt(2); err != nil {
		t.Fatalf("UpdateVertsAt: %v", err)
	}
	after := m.Surface().Vertices
	for i := range after {
		inRing := i >= q*2 && i < q*2+q
		if !inRing && after[i] != before[i] {
			t.Fatalf("vertex %d outside ring changed: %v -> %v", i, before[i], after[i])
		}
		if inRing && after[i] == before[i] {
			t.Fatalf("vertex %d inside ring did not change", i)
		}
	}
}

func TestStagedUpdatesFlushMatchesRebuild(t *testing.T) {
	m := mustFromNodes(t, line(6), 0.5, 5)
	moved := line(6)
	for i := range moved {
		moved[i][1] += 3
		if err := m.UpdateNode(moved[i], i, false); err != nil {
			t.Fatalf("UpdateNode(%d): %v", i, err)
		}
	}
	m.UpdateVerts()

	fresh := mustFromNodes(t, moved, 0.5, 5)
	if diff := cmp.Diff(fresh.Surface().Vertices, m.Surface().Vertices); diff != "" {
		t.Fatalf("flushed vertices differ from rebuild (-want +got):\n%s", diff)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	m := mustFromNodes(t, line(3), 0.5, 3)
	for _, idx := range []int{-1, 3, 100} {
		if err := m.UpdateNode(mgl32.Vec3{}, idx, true); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("UpdateNode(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
		if err := m.UpdateVertsAt(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("UpdateVertsAt(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
		if _, err := m.Node(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("Node(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
	if diff := cmp.Diff(line(3), m.Nodes()); diff != "" {
		t.Fatalf("rejected updates mutated nodes:\n%s", diff)
	}
}

func TestAddNodesMatchesRepeatedAddNode(t *testing.T) {
	nodes := line(7)

	one, err := New(0.5, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range nodes {
		one.AddNode(n)
	}

	batch, err := New(0.5, 4)
	if err != nil {
		t.Fatal(err)
	}
	batch.AddNode(nodes[0])
	batch.AddNodes(nodes[1:])

	if diff := cmp.Diff(one.Nodes(), batch.Nodes()); diff != "" {
		t.Fatalf("nodes differ:\n%s", diff)
	}
	if diff := cmp.Diff(one.Surface().Vertices, batch.Surface().Vertices); diff != "" {
		t.Fatalf("vertices differ:\n%s", diff)
	}
	if diff := cmp.Diff(one.Surface().Triangles, batch.Surface().Triangles); diff != "" {
		t.Fatalf("triangles differ:\n%s", diff)
	}
}

func TestReplaceNodesCopiesInput(t *testing.T) {
	nodes := line(3)
	m := mustFromNodes(t, nodes, 0.5, 3)
	nodes[0] = mgl32.Vec3{42, 42, 42}
	if m.Nodes()[0] == nodes[0] {
		t.Fatal("expected mesh to keep its own copy of the nodes")
	}
}

func TestSetQualityIsIdempotent(t *testing.T) {
	once := mustFromNodes(t, line(4), 0.5, 3)
	if err := once.SetQuality(8); err != nil {
		t.Fatal(err)
	}
	twice := mustFromNodes(t, line(4), 0.5, 3)
	for range 2 {
		if err := twice.SetQuality(8); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(once.Surface(), twice.Surface(), cmp.AllowUnexported(Surface{})); diff != "" {
		t.Fatalf("repeated SetQuality changed the mesh:\n%s", diff)
	}
	if got := len(twice.Surface().Vertices); got != 8*4 {
		t.Fatalf("expected 32 vertices, got %d", got)
	}
}

func TestSetScaleRecomputesVertices(t *testing.T) {
	m := mustFromNodes(t, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}, 1, 4)
	if err := m.SetScale(3); err != nil {
		t.Fatal(err)
	}
	for i, v := range m.Surface().Vertices {
		d := v.Sub(m.Nodes()[i/4]).Len()
		if math.Abs(float64(d)-3) > 1e-5 {
			t.Fatalf("vertex %d: expected distance 3 from node, got %v", i, d)
		}
	}
	if len(m.Surface().Triangles) != 4*6 {
		t.Fatalf("expected topology untouched, got %d indices", len(m.Surface().Triangles))
	}
}

func TestSettersBeforeGenerationDoNotBuild(t *testing.T) {
	m, err := New(0.1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetQuality(10); err != nil {
		t.Fatal(err)
	}
	if err := m.SetScale(0.5); err != nil {
		t.Fatal(err)
	}
	if m.IsGenerated() {
		t.Fatal("expected mesh to stay ungenerated")
	}
	m.AddNode(mgl32.Vec3{})
	if !m.IsGenerated() || len(m.Surface().Vertices) != 10 {
		t.Fatalf("expected one ring of 10 vertices, got %d", len(m.Surface().Vertices))
	}
}

func TestConfigurationErrors(t *testing.T) {
	if _, err := New(0.5, 2); !errors.Is(err, ErrQuality) {
		t.Fatalf("expected ErrQuality, got %v", err)
	}
	if _, err := New(0, 3); !errors.Is(err, ErrRadius) {
		t.Fatalf("expected ErrRadius, got %v", err)
	}
	m := mustFromNodes(t, line(2), 0.5, 3)
	if err := m.SetQuality(1); !errors.Is(err, ErrQuality) {
		t.Fatalf("expected ErrQuality, got %v", err)
	}
	if m.Quality() != 3 {
		t.Fatalf("expected quality to stay 3, got %d", m.Quality())
	}
	if err := m.SetScale(-1); !errors.Is(err, ErrRadius) {
		t.Fatalf("expected ErrRadius, got %v", err)
	}
}

func TestReleaseRunsHookOnce(t *testing.T) {
	m := mustFromNodes(t, line(3), 0.5, 3)
	calls := 0
	m.Surface().OnRelease(func() { calls++ })

	m.Release()
	m.Release()

	if calls != 1 {
		t.Fatalf("expected release hook to run once, got %d", calls)
	}
	if !m.Surface().Released() || m.Len() != 0 {
		t.Fatal("expected released mesh to drop its data")
	}
}
