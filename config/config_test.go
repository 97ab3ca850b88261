package config

import (
	"os"
	"testing"
)

func TestDefaultHasPositiveTolerances(t *testing.T) {
	cfg := Default()
	if cfg.AbsTol <= 0 || cfg.RelTol <= 0 {
		t.Fatalf("default tolerances must be positive: %+v", cfg)
	}
	if cfg.VertexCap <= 0 {
		t.Fatalf("default vertex cap must be positive: %d", cfg.VertexCap)
	}
}

func TestLoadWithoutEnvVarReturnsDefaults(t *testing.T) {
	os.Unsetenv("DUMBBELL_CONFIG")
	cfg := Load(nil)
	want := Default()
	if cfg != want {
		t.Fatalf("Load() without DUMBBELL_CONFIG = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadWithMissingConfFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("DUMBBELL_CONFIG", dir)
	defer os.Unsetenv("DUMBBELL_CONFIG")
	cfg := Load(nil)
	want := Default()
	if cfg != want {
		t.Fatalf("Load() with empty dir = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadOverlaysPartialConfigFile(t *testing.T) {
	dir := t.TempDir()
	contents := "integrator:\n  abs_tol: 1e-6\nlidar:\n  grid: 32\n"
	if err := os.WriteFile(dir+"/conf.yaml", []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	os.Setenv("DUMBBELL_CONFIG", dir)
	defer os.Unsetenv("DUMBBELL_CONFIG")

	cfg := Load(nil)
	if cfg.AbsTol != 1e-6 {
		t.Fatalf("AbsTol = %v, want 1e-6", cfg.AbsTol)
	}
	if cfg.Lidar.Grid != 32 {
		t.Fatalf("Lidar.Grid = %v, want 32", cfg.Lidar.Grid)
	}
	// Unset keys still fall back to defaults.
	want := Default()
	if cfg.RelTol != want.RelTol {
		t.Fatalf("RelTol = %v, want default %v", cfg.RelTol, want.RelTol)
	}
}
