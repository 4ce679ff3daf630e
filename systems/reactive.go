package systems

import (
	"github.com/pthm-cable/ordnance/components"
	"github.com/pthm-cable/ordnance/config"
)

// ReactiveOutcome is the effect reactive armor has on one hit.
type ReactiveOutcome struct {
	Multiplier float64 // applied to effective thickness
	Triggered  bool
	Consume    bool // explosive section spent
	Shattered  bool // sabot broke up on a steep hit
}

// ReactiveArmorCheck evaluates reactive armor against a hit that would otherwise
// penetrate. Non-explosive RA always applies and is never consumed. Explosive RA
// needs a live section and a caliber at or above its sensitivity, and is not set
// off by rounds that detonate on contact.
func ReactiveArmorCheck(pf float64, ra *components.ReactiveArmor, caliber float64, sabot bool, hitAngle float64, explosiveImpact bool, r config.ReactiveConfig) ReactiveOutcome {
	out := ReactiveOutcome{Multiplier: 1}
	if ra == nil || pf <= 1 {
		return out
	}
	if ra.NonExplosive {
		out.Multiplier = ra.Modifier
		out.Triggered = true
		return out
	}
	if ra.Sections <= 0 || caliber < ra.Sensitivity || explosiveImpact {
		return out
	}
	out.Multiplier = ra.Modifier
	out.Triggered = true
	out.Consume = true
	out.Shattered = sabot && hitAngle >= r.SabotSteepAngle
	return out
}

// ApplySabotShatter breaks a long rod into a shorter, fatter remnant.
func ApplySabotShatter(p *components.Projectile, r config.ReactiveConfig) {
	p.Mass *= r.SabotMassFactor
	p.Caliber *= r.SabotCaliberFactor
	p.Length = 0
}
