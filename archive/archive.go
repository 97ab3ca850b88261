// Package archive persists mission ticks to disk (§4.12): one record per
// tick plus a one-time run-parameters header, as a plain-text file with a
// commented header and one line per sample, Julian-date stamped via
// soniakeys/meeus/julian.
package archive

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/soniakeys/meeus/julian"

	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
)

// Params is the one-time run header (§4.12): asteroid identity and the
// controller/integrator settings the run was driven with.
type Params struct {
	AsteroidName string
	Mu, Rho      float64
	Omega        float64
	AbsTol       float64
	RelTol       float64
}

// Tick is one archived sample: mission time, the full dynamics state, and
// the guidance mode active when it was recorded.
type Tick struct {
	T     float64
	Mode  string
	State dynamics.State
}

// Store is the persistence boundary the orchestrator ticks against.
type Store interface {
	WriteParams(p Params) error
	WriteTick(t Tick) error
	ReadTick(index int) (Tick, error)
	Close() error
}

// MemStore is an in-memory, slice-backed Store, used by tests; the
// cmd/dumbbell binary always writes through a FileStore.
type MemStore struct {
	Params Params
	Ticks  []Tick
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) WriteParams(p Params) error {
	m.Params = p
	return nil
}

func (m *MemStore) WriteTick(t Tick) error {
	m.Ticks = append(m.Ticks, t)
	return nil
}

func (m *MemStore) ReadTick(index int) (Tick, error) {
	if index < 0 || index >= len(m.Ticks) {
		return Tick{}, fmt.Errorf("archive: tick index %d out of range [0,%d)", index, len(m.Ticks))
	}
	return m.Ticks[index], nil
}

func (m *MemStore) Close() error { return nil }

// FileStore is a text-file-backed Store, one line per tick, with a
// commented header naming its columns (§4.12): plain text rather than a
// binary encoding, the 18-element dumbbell state written space-separated
// instead of an orbital-elements vector.
type FileStore struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	ticks  []Tick // kept in memory too, so ReadTick doesn't need a second pass parser
	params Params
}

// NewFileStore creates (or truncates) path and writes nothing until
// WriteParams is called.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return &FileStore{path: path, f: f, w: bufio.NewWriter(f)}, nil
}

// WriteParams writes the one-time run header: asteroid parameters, a
// creation timestamp, and the column layout of the ticks that follow.
func (fs *FileStore) WriteParams(p Params) error {
	fs.params = p
	_, err := fmt.Fprintf(fs.w, `# Creation date (UTC): %s
# Asteroid: %s (mu=%g, rho=%g, omega=%g)
# Integrator tolerances: abs=%g rel=%g
# Records are <jd> <t> <mode> <18-element state, space separated>
`, time.Now().UTC(), p.AsteroidName, p.Mu, p.Rho, p.Omega, p.AbsTol, p.RelTol)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	return fs.w.Flush()
}

// WriteTick appends one tick record, flushing immediately so a crash
// mid-run loses at most the record in flight, not the whole file.
func (fs *FileStore) WriteTick(t Tick) error {
	jd := julian.TimeToJD(time.Unix(0, 0).UTC().Add(time.Duration(t.T * float64(time.Second))))
	if _, err := fmt.Fprintf(fs.w, "%f %f %s", jd, t.T, t.Mode); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	s := t.State
	for i := 0; i < 18; i++ {
		if _, err := fmt.Fprintf(fs.w, " %f", s[i]); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
	}
	if _, err := fs.w.WriteString("\n"); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	fs.ticks = append(fs.ticks, t)
	return fs.w.Flush()
}

// ReadTick returns the index'th tick written so far in this process. A
// FileStore reopened from a prior run's file is not resumable in this
// package; that would need a text-parsing counterpart to WriteTick's
// writer, which no command in §6 requires.
func (fs *FileStore) ReadTick(index int) (Tick, error) {
	if index < 0 || index >= len(fs.ticks) {
		return Tick{}, fmt.Errorf("archive: tick index %d out of range [0,%d)", index, len(fs.ticks))
	}
	return fs.ticks[index], nil
}

// Close flushes and closes the underlying file.
func (fs *FileStore) Close() error {
	if err := fs.w.Flush(); err != nil {
		fs.f.Close()
		return fmt.Errorf("archive: %w", err)
	}
	return fs.f.Close()
}
