// Package config loads the simulator's tunable parameters (§4.11):
// integrator tolerances, controller gains, mesh vertex cap, phase
// horizons, and the LIDAR head geometry, via viper. Every field has a
// sane default, so a missing environment variable or config file is a
// supported mode, not a fatal error.
package config

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/spf13/viper"
)

// Lidar holds the §4.4 sensor head geometry.
type Lidar struct {
	FOVx  float64
	FOVy  float64
	Range float64
	Grid  int
}

// Phases holds the §9 mission FSM's per-phase time horizons, in
// seconds.
type Phases struct {
	ExploreHorizon float64
	RefineHorizon  float64
	LandHorizon    float64
}

// Config is the full set of §4.11 tunables.
type Config struct {
	AbsTol    float64
	RelTol    float64
	Kp        float64
	Kv        float64
	KR        float64
	Kw        float64
	VertexCap int
	Phases    Phases
	Lidar     Lidar
}

// Default returns the §4.11 default configuration, used whenever no
// config file is found or a key is absent from it.
func Default() Config {
	return Config{
		AbsTol:    1e-9,
		RelTol:    1e-9,
		Kp:        0, // 0 signals "derive from DefaultGains(mass, inertia)" at wiring time
		Kv:        0,
		KR:        0,
		Kw:        0,
		VertexCap: 20000,
		Phases: Phases{
			ExploreHorizon: 3600 * 6,
			RefineHorizon:  3600 * 2,
			LandHorizon:    3600,
		},
		Lidar: Lidar{
			FOVx:  0.349, // ~20 degrees, matching a narrow mapping head
			FOVy:  0.349,
			Range: 5,
			Grid:  16,
		},
	}
}

// Load reads conf.yaml from the directory named by the DUMBBELL_CONFIG
// environment variable, overlaying it on Default(). A missing env var or
// config file is not an error: Load logs at debug and returns the
// defaults (§4.11's "all-defaultable" contract).
func Load(logger kitlog.Logger) Config {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	cfg := Default()

	confPath := os.Getenv("DUMBBELL_CONFIG")
	if confPath == "" {
		logger.Log("level", "debug", "subsys", "config", "msg", "DUMBBELL_CONFIG not set, using defaults")
		return cfg
	}

	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		logger.Log("level", "debug", "subsys", "config", "msg", fmt.Sprintf("no conf.yaml in %s, using defaults", confPath), "err", err)
		return cfg
	}

	if v.IsSet("integrator.abs_tol") {
		cfg.AbsTol = v.GetFloat64("integrator.abs_tol")
	}
	if v.IsSet("integrator.rel_tol") {
		cfg.RelTol = v.GetFloat64("integrator.rel_tol")
	}
	if v.IsSet("control.kp") {
		cfg.Kp = v.GetFloat64("control.kp")
	}
	if v.IsSet("control.kv") {
		cfg.Kv = v.GetFloat64("control.kv")
	}
	if v.IsSet("control.kr") {
		cfg.KR = v.GetFloat64("control.kr")
	}
	if v.IsSet("control.kw") {
		cfg.Kw = v.GetFloat64("control.kw")
	}
	if v.IsSet("mesh.vertex_cap") {
		cfg.VertexCap = v.GetInt("mesh.vertex_cap")
	}
	if v.IsSet("phases.explore_horizon") {
		cfg.Phases.ExploreHorizon = v.GetFloat64("phases.explore_horizon")
	}
	if v.IsSet("phases.refine_horizon") {
		cfg.Phases.RefineHorizon = v.GetFloat64("phases.refine_horizon")
	}
	if v.IsSet("phases.land_horizon") {
		cfg.Phases.LandHorizon = v.GetFloat64("phases.land_horizon")
	}
	if v.IsSet("lidar.fov_x") {
		cfg.Lidar.FOVx = v.GetFloat64("lidar.fov_x")
	}
	if v.IsSet("lidar.fov_y") {
		cfg.Lidar.FOVy = v.GetFloat64("lidar.fov_y")
	}
	if v.IsSet("lidar.range") {
		cfg.Lidar.Range = v.GetFloat64("lidar.range")
	}
	if v.IsSet("lidar.grid") {
		cfg.Lidar.Grid = v.GetInt("lidar.grid")
	}

	logger.Log("level", "info", "subsys", "config", "msg", "loaded config", "path", confPath)
	return cfg
}
