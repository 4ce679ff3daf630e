// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics     PhysicsConfig             `yaml:"physics"`
	Ballistics  BallisticsConfig          `yaml:"ballistics"`
	Penetration PenetrationConfig         `yaml:"penetration"`
	Erosion     ErosionConfig             `yaml:"erosion"`
	Ricochet    RicochetConfig            `yaml:"ricochet"`
	Reactive    ReactiveConfig            `yaml:"reactive"`
	Fuze        FuzeConfig                `yaml:"fuze"`
	Collision   CollisionConfig           `yaml:"collision"`
	Materials   map[string]MaterialConfig `yaml:"materials"`
	Rounds      map[string]RoundConfig    `yaml:"rounds"`
	Scenarios   []ScenarioConfig          `yaml:"scenarios"`
	Telemetry   TelemetryConfig           `yaml:"telemetry"`
	Diagnostics DiagnosticsConfig         `yaml:"diagnostics"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds the fixed-step parameters.
type PhysicsConfig struct {
	DT          float64    `yaml:"dt"`
	Gravity     [3]float64 `yaml:"gravity"`      // m/s^2, world frame (Z up)
	AirDensity  float64    `yaml:"air_density"`  // kg/m^3 at sea level
	ScaleHeight float64    `yaml:"scale_height"` // m, exponential atmosphere
}

// BallisticsConfig holds integrator and lifecycle thresholds.
type BallisticsConfig struct {
	ContinuationSpeed      float64 `yaml:"continuation_speed"`       // m/s; slower rounds are removed
	DefaultDrag            string  `yaml:"default_drag"`             // none | analytic | numerical
	WaterSpeedRetention    float64 `yaml:"water_speed_retention"`    // fraction of speed kept per second underwater
	WaterDisintegrateBelow float64 `yaml:"water_disintegrate_below"` // mm; smaller calibers break up on water entry
	WaterFuzeDelay         float64 `yaml:"water_fuze_delay"`         // s before a submerged shell detonates
	MaxLifetime            float64 `yaml:"max_lifetime"`             // s, cap when a round sets none
}

// PenetrationConfig holds the closed-form penetration constants.
type PenetrationConfig struct {
	VFactor             float64    `yaml:"v_factor"`
	Mu                  [3]float64 `yaml:"mu"`
	SabotMu             [3]float64 `yaml:"sabot_mu"`
	SabotDensity        float64    `yaml:"sabot_density"`        // g/cm^3
	ConventionalDensity float64    `yaml:"conventional_density"` // g/cm^3
	SabotLengthRatio    float64    `yaml:"sabot_length_ratio"`   // L/D above which a round counts as sabot
	HERatioMin          float64    `yaml:"he_ratio_min"`
	HERatioMax          float64    `yaml:"he_ratio_max"`
	MinCosine           float64    `yaml:"min_cosine"` // floor for thickness projection
}

// ErosionConfig holds the mass-loss calibration constants.
type ErosionConfig struct {
	JetFormationA            float64 `yaml:"jet_formation_a"` // 14
	JetFormationB            float64 `yaml:"jet_formation_b"` // 10
	HighVelocity             float64 `yaml:"high_velocity"`   // m/s
	Hypervelocity            float64 `yaml:"hypervelocity"`   // m/s
	MinLengthRatio           float64 `yaml:"min_length_ratio"`
	HyperBase                float64 `yaml:"hyper_base"`
	HyperSlope               float64 `yaml:"hyper_slope"`
	RelaxationScale          float64 `yaml:"relaxation_scale"` // s per mm of caliber
	SabotDensityRatio        float64 `yaml:"sabot_density_ratio"`
	ConventionalDensityRatio float64 `yaml:"conventional_density_ratio"`
	PendingLossFraction      float64 `yaml:"pending_loss_fraction"` // of mass queued per moderate-speed penetration
	MinViableFraction        float64 `yaml:"min_viable_fraction"`   // of launch mass
}

// RicochetConfig holds ricochet probabilities and attenuation.
type RicochetConfig struct {
	SceneryMaxCaliber  float64 `yaml:"scenery_max_caliber"` // mm
	RollMin            float64 `yaml:"roll_min"`
	RollMax            float64 `yaml:"roll_max"`
	SpeedRetention     float64 `yaml:"speed_retention"`
	AngleDivisor       float64 `yaml:"angle_divisor"`
	PartMinAngle       float64 `yaml:"part_min_angle"`       // deg from normal
	PartToleranceScale float64 `yaml:"part_tolerance_scale"` // m/s crash tolerance at which the chance saturates
	PartHighSpeed      float64 `yaml:"part_high_speed"`      // m/s; chance scales down above this
}

// ReactiveConfig holds reactive-armor interaction constants.
type ReactiveConfig struct {
	SabotSteepAngle    float64 `yaml:"sabot_steep_angle"` // deg from normal
	SabotMassFactor    float64 `yaml:"sabot_mass_factor"`
	SabotCaliberFactor float64 `yaml:"sabot_caliber_factor"`
}

// FuzeConfig holds fuze timing.
type FuzeConfig struct {
	ArmingFactor float64 `yaml:"arming_factor"`
	DefaultDelay float64 `yaml:"default_delay"`
}

// CollisionConfig holds collision pipeline sizing.
type CollisionConfig struct {
	RelativeFrame    bool    `yaml:"relative_frame"`
	BaseSearchRadius float64 `yaml:"base_search_radius"`
	HitBufferSize    int     `yaml:"hit_buffer_size"`
	VesselBufferSize int     `yaml:"vessel_buffer_size"`
}

// MaterialConfig is a named armor preset.
type MaterialConfig struct {
	Strength        float64    `yaml:"strength"`
	Ductility       float64    `yaml:"ductility"`
	Hardness        float64    `yaml:"hardness"`
	Density         float64    `yaml:"density"`
	SafeTemperature float64    `yaml:"safe_temperature"`
	Softening       float64    `yaml:"softening"`
	VFactor         float64    `yaml:"v_factor"` // 0 = penetration.v_factor
	Mu              [3]float64 `yaml:"mu"`       // zero = penetration.mu
	SabotMu         [3]float64 `yaml:"sabot_mu"` // zero = penetration.sabot_mu
}

// BeehiveConfig describes sub-munitions.
type BeehiveConfig struct {
	Count     int     `yaml:"count"`
	Caliber   float64 `yaml:"caliber"`
	Mass      float64 `yaml:"mass"`
	Fragments int     `yaml:"fragments"`
	APMod     float64 `yaml:"ap_mod"`
}

// RoundConfig describes a projectile type.
type RoundConfig struct {
	Kind                 string         `yaml:"kind"` // bullet | rocket
	Caliber              float64        `yaml:"caliber"`
	Mass                 float64        `yaml:"mass"`
	MuzzleVelocity       float64        `yaml:"muzzle_velocity"`
	BallisticCoefficient float64        `yaml:"ballistic_coefficient"`
	APMod                float64        `yaml:"ap_mod"`
	Sabot                bool           `yaml:"sabot"`
	TNTMass              float64        `yaml:"tnt_mass"`
	Warhead              string         `yaml:"warhead"`
	Fuze                 string         `yaml:"fuze"`
	DetonationRange      float64        `yaml:"detonation_range"`
	BlastRadius          float64        `yaml:"blast_radius"`
	FuzeDelay            float64        `yaml:"fuze_delay"`
	Lifetime             float64        `yaml:"lifetime"`
	Drag                 string         `yaml:"drag"`
	Incendiary           bool           `yaml:"incendiary"`
	StealResources       bool           `yaml:"steal_resources"`
	DamageMult           float64        `yaml:"damage_mult"`
	TracerWidth          float64        `yaml:"tracer_width"`
	Beehive              *BeehiveConfig `yaml:"beehive"`
	Nuclear              bool           `yaml:"nuclear"`
	NukeYield            float64        `yaml:"nuke_yield"`
	Thrust               float64        `yaml:"thrust"`
	BurnTime             float64        `yaml:"burn_time"`
}

// ReactiveArmorConfig describes reactive armor on a part.
type ReactiveArmorConfig struct {
	Modifier     float64 `yaml:"modifier"`
	Sensitivity  float64 `yaml:"sensitivity"`
	NonExplosive bool    `yaml:"non_explosive"`
	Sections     int     `yaml:"sections"`
}

// PartConfig describes one collider on a vessel.
type PartConfig struct {
	Name           string               `yaml:"name"`
	Shape          string               `yaml:"shape"` // sphere | box
	Offset         [3]float64           `yaml:"offset"`
	Radius         float64              `yaml:"radius"`
	HalfExtents    [3]float64           `yaml:"half_extents"`
	Rotation       [3]float64           `yaml:"rotation"` // yaw, pitch, roll in degrees
	Material       string               `yaml:"material"`
	Thickness      float64              `yaml:"thickness"` // mm
	HP             float64              `yaml:"hp"`
	CrashTolerance float64              `yaml:"crash_tolerance"`
	EVA            bool                 `yaml:"eva"`
	Ignored        bool                 `yaml:"ignored"`
	Temperature    float64              `yaml:"temperature"`
	Reactive       *ReactiveArmorConfig `yaml:"reactive"`
}

// VesselConfig describes a target or firing craft.
type VesselConfig struct {
	Name         string       `yaml:"name"`
	Team         string       `yaml:"team"`
	Position     [3]float64   `yaml:"position"`
	Velocity     [3]float64   `yaml:"velocity"`
	Acceleration [3]float64   `yaml:"acceleration"`
	Parts        []PartConfig `yaml:"parts"`
}

// SceneryConfig describes a static box (terrain feature or building).
type SceneryConfig struct {
	Name        string     `yaml:"name"`
	Center      [3]float64 `yaml:"center"`
	HalfExtents [3]float64 `yaml:"half_extents"`
	Rotation    [3]float64 `yaml:"rotation"`
}

// GunConfig describes a salvo fired during a scenario.
type GunConfig struct {
	Vessel    string     `yaml:"vessel"`
	Weapon    string     `yaml:"weapon"` // part name on the firing vessel
	Round     string     `yaml:"round"`
	Direction [3]float64 `yaml:"direction"`
	Target    string     `yaml:"target"` // aim at this vessel when direction is zero
	Count     int        `yaml:"count"`
	Interval  float64    `yaml:"interval"` // s between shots
	Start     float64    `yaml:"start"`    // s into the scenario
}

// ScenarioConfig is a named engagement for the headless runner.
type ScenarioConfig struct {
	Name     string          `yaml:"name"`
	Duration float64         `yaml:"duration"` // s
	Ocean    bool            `yaml:"ocean"`
	Vessels  []VesselConfig  `yaml:"vessels"`
	Scenery  []SceneryConfig `yaml:"scenery"`
	Guns     []GunConfig     `yaml:"guns"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	PoolSize            int     `yaml:"pool_size"`
}

// DiagnosticsConfig holds fault-reporting settings.
type DiagnosticsConfig struct {
	SentryDSN string `yaml:"sentry_dsn"`
	LogLevel  string `yaml:"log_level"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Gravity       r3.Vec
	HalfDT        float64
	ScenarioIndex map[string]int
	RoundNames    []string // sorted
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values that would make the integrator or pool meaningless.
func (c *Config) validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Collision.HitBufferSize < 1 {
		return fmt.Errorf("collision.hit_buffer_size must be at least 1")
	}
	if c.Telemetry.PoolSize < 1 {
		return fmt.Errorf("telemetry.pool_size must be at least 1")
	}
	for name, r := range c.Rounds {
		if r.Caliber <= 0 || r.Mass <= 0 {
			return fmt.Errorf("round %q: caliber and mass must be positive", name)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	g := c.Physics.Gravity
	c.Derived.Gravity = r3.Vec{X: g[0], Y: g[1], Z: g[2]}
	c.Derived.HalfDT = c.Physics.DT / 2

	// Materials fall back to the global curve parameters
	for name, m := range c.Materials {
		if m.VFactor == 0 {
			m.VFactor = c.Penetration.VFactor
		}
		if m.Mu == ([3]float64{}) {
			m.Mu = c.Penetration.Mu
		}
		if m.SabotMu == ([3]float64{}) {
			m.SabotMu = c.Penetration.SabotMu
		}
		c.Materials[name] = m
	}

	c.Derived.ScenarioIndex = make(map[string]int, len(c.Scenarios))
	for i, s := range c.Scenarios {
		c.Derived.ScenarioIndex[s.Name] = i
	}

	c.Derived.RoundNames = make([]string, 0, len(c.Rounds))
	for name := range c.Rounds {
		c.Derived.RoundNames = append(c.Derived.RoundNames, name)
	}
	sort.Strings(c.Derived.RoundNames)
}

// Scenario looks up a scenario by name.
func (c *Config) Scenario(name string) (*ScenarioConfig, bool) {
	i, ok := c.Derived.ScenarioIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Scenarios[i], true
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
