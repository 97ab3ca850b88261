package archive

import (
	"path/filepath"
	"testing"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
)

func sampleTick(t float64) Tick {
	s := dynamics.NewState([3]float64{1, 0, 0}, [3]float64{0, 0.1, 0}, attitude.Identity3(), [3]float64{})
	return Tick{T: t, Mode: "explore", State: s}
}

func TestMemStoreRoundTripsTicks(t *testing.T) {
	m := NewMemStore()
	if err := m.WriteParams(Params{AsteroidName: "itokawa"}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := m.WriteTick(sampleTick(float64(i))); err != nil {
			t.Fatal(err)
		}
	}
	got, err := m.ReadTick(1)
	if err != nil {
		t.Fatal(err)
	}
	if got.T != 1 {
		t.Fatalf("ReadTick(1).T = %f, want 1", got.T)
	}
	if _, err := m.ReadTick(3); err == nil {
		t.Fatal("ReadTick out of range should error")
	}
}

func TestFileStoreWritesHeaderAndTicks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.txt")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteParams(Params{AsteroidName: "castalia", Mu: 0.01, Rho: 2100, Omega: 0.0003, AbsTol: 1e-9, RelTol: 1e-9}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := fs.WriteTick(sampleTick(float64(i))); err != nil {
			t.Fatal(err)
		}
	}
	got, err := fs.ReadTick(4)
	if err != nil {
		t.Fatal(err)
	}
	if got.T != 4 {
		t.Fatalf("ReadTick(4).T = %f, want 4", got.T)
	}
	if err := fs.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFileStoreReadTickOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.txt")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Close()
	if _, err := fs.ReadTick(0); err == nil {
		t.Fatal("ReadTick on an empty store should error")
	}
}
