package systems

import (
	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/config"
)

// Params are the calibration values the core reads every tick.
// Built once from config so the hot path never touches the config tree.
type Params struct {
	DT                float64
	ContinuationSpeed float64

	// Water
	WaterSpeedRetention    float64
	WaterDisintegrateBelow float64
	WaterFuzeDelay         float64

	// Penetration
	VFactor             float64
	Mu                  components.MuParams
	SabotMu             components.MuParams
	SabotDensity        float64
	ConventionalDensity float64
	SabotLengthRatio    float64
	HERatioMin          float64
	HERatioMax          float64
	MinCosine           float64

	Erosion  config.ErosionConfig
	Ricochet config.RicochetConfig
	Reactive config.ReactiveConfig

	ArmingFactor float64
	DefaultDelay float64

	RelativeFrame    bool
	BaseSearchRadius float64
	HitBufferSize    int
	VesselBufferSize int
}

// NewParams extracts core parameters from a loaded config.
func NewParams(cfg *config.Config) Params {
	return Params{
		DT:                     cfg.Physics.DT,
		ContinuationSpeed:      cfg.Ballistics.ContinuationSpeed,
		WaterSpeedRetention:    cfg.Ballistics.WaterSpeedRetention,
		WaterDisintegrateBelow: cfg.Ballistics.WaterDisintegrateBelow,
		WaterFuzeDelay:         cfg.Ballistics.WaterFuzeDelay,
		VFactor:                cfg.Penetration.VFactor,
		Mu:                     cfg.Penetration.Mu,
		SabotMu:                cfg.Penetration.SabotMu,
		SabotDensity:           cfg.Penetration.SabotDensity,
		ConventionalDensity:    cfg.Penetration.ConventionalDensity,
		SabotLengthRatio:       cfg.Penetration.SabotLengthRatio,
		HERatioMin:             cfg.Penetration.HERatioMin,
		HERatioMax:             cfg.Penetration.HERatioMax,
		MinCosine:              cfg.Penetration.MinCosine,
		Erosion:                cfg.Erosion,
		Ricochet:               cfg.Ricochet,
		Reactive:               cfg.Reactive,
		ArmingFactor:           cfg.Fuze.ArmingFactor,
		DefaultDelay:           cfg.Fuze.DefaultDelay,
		RelativeFrame:          cfg.Collision.RelativeFrame,
		BaseSearchRadius:       cfg.Collision.BaseSearchRadius,
		HitBufferSize:          cfg.Collision.HitBufferSize,
		VesselBufferSize:       cfg.Collision.VesselBufferSize,
	}
}

// DefaultParams returns parameters from the embedded defaults.
func DefaultParams() Params {
	return NewParams(config.Default())
}
