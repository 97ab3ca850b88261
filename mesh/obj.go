package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Load reads the §6 Wavefront OBJ subset: lines beginning "v " (three
// floats) and "f " (three 1-based vertex indices, no texture/normal).
// Anything else is ignored, matching the original `wavefront.read_obj`
// collaborator this repo treats as an external, interface-only dependency
// (§1).
func Load(r io.Reader) (*Mesh, error) {
	var vertices [][3]float64
	var faces [][3]int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(text, "v "):
			fields := strings.Fields(text)[1:]
			if len(fields) < 3 {
				return nil, fmt.Errorf("mesh: line %d: malformed vertex %q", line, text)
			}
			var p [3]float64
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i], 64)
				if err != nil {
					return nil, fmt.Errorf("mesh: line %d: %w", line, err)
				}
				p[i] = f
			}
			vertices = append(vertices, p)
		case strings.HasPrefix(text, "f "):
			fields := strings.Fields(text)[1:]
			if len(fields) < 3 {
				return nil, fmt.Errorf("mesh: line %d: malformed face %q", line, text)
			}
			var f [3]int
			for i := 0; i < 3; i++ {
				// Faces may carry /vt/vn suffixes; only the vertex index matters.
				idxStr := strings.SplitN(fields[i], "/", 2)[0]
				idx, err := strconv.Atoi(idxStr)
				if err != nil {
					return nil, fmt.Errorf("mesh: line %d: %w", line, err)
				}
				f[i] = idx - 1 // 1-based -> 0-based
			}
			faces = append(faces, f)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	m := New(vertices, faces)
	if err := m.Build(); err != nil {
		return nil, fmt.Errorf("mesh: bad input geometry: %w", err)
	}
	if ec := m.EulerCharacteristic(); ec != 2 {
		return nil, fmt.Errorf("mesh: bad input geometry: Euler characteristic %d, want 2 (non-closed mesh)", ec)
	}
	return m, nil
}

// Save writes the mesh in the same §6 OBJ subset.
func Save(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	for _, v := range m.Vertices {
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", v[0], v[1], v[2]); err != nil {
			return err
		}
	}
	for _, f := range m.Faces {
		if _, err := fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}
