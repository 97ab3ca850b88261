package mesh

import (
	"strings"
	"testing"
)

func unitCube() *Mesh {
	v := [][3]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	f := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom (z=0), outward normal -z
		{4, 5, 6}, {4, 6, 7}, // top (z=1), outward normal +z
		{0, 1, 5}, {0, 5, 4}, // front (y=0)
		{1, 2, 6}, {1, 6, 5}, // right (x=1)
		{2, 3, 7}, {2, 7, 6}, // back (y=1)
		{3, 0, 4}, {3, 4, 7}, // left (x=0)
	}
	return New(v, f)
}

func TestEulerCharacteristicClosedMesh(t *testing.T) {
	m := unitCube()
	if err := m.Build(); err != nil {
		t.Fatal(err)
	}
	if ec := m.EulerCharacteristic(); ec != 2 {
		t.Fatalf("Euler characteristic = %d, want 2", ec)
	}
}

func TestEllipsoidIsClosed(t *testing.T) {
	m := Ellipsoid(1.2, 0.7, 0.7, 2)
	if ec := m.EulerCharacteristic(); ec != 2 {
		t.Fatalf("ellipsoid Euler characteristic = %d, want 2", ec)
	}
	if m.NumVertices() == 0 || m.NumFaces() == 0 {
		t.Fatal("empty ellipsoid mesh")
	}
}

func TestVolumeOfUnitCube(t *testing.T) {
	m := unitCube()
	if v := m.Volume(); v < 0.999 || v > 1.001 {
		t.Fatalf("Volume() = %f, want 1", v)
	}
}

func TestOBJRoundTrip(t *testing.T) {
	m := unitCube()
	var sb strings.Builder
	if err := Save(&sb, m); err != nil {
		t.Fatal(err)
	}
	back, err := Load(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatal(err)
	}
	if back.NumVertices() != m.NumVertices() || back.NumFaces() != m.NumFaces() {
		t.Fatalf("round-trip mismatch: got %d/%d, want %d/%d",
			back.NumVertices(), back.NumFaces(), m.NumVertices(), m.NumFaces())
	}
}

func TestLoadRejectsNonClosedMesh(t *testing.T) {
	obj := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	if _, err := Load(strings.NewReader(obj)); err == nil {
		t.Fatal("expected error loading a single open triangle")
	}
}

func TestVertexNeighborsSymmetric(t *testing.T) {
	m := unitCube()
	if err := m.Build(); err != nil {
		t.Fatal(err)
	}
	for v := 0; v < m.NumVertices(); v++ {
		for _, n := range m.VertexNeighbors(v) {
			found := false
			for _, back := range m.VertexNeighbors(n) {
				if back == v {
					found = true
				}
			}
			if !found {
				t.Fatalf("neighbor relation not symmetric: %d -> %d", v, n)
			}
		}
	}
}
