package systems

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/ordnance/components"
)

// Validate returns the configuration problems of a freshly spawned projectile.
// None of them are fatal; the core simply skips branches that do not apply.
func Validate(p *components.Projectile) []string {
	var issues []string
	if p.Caliber <= 0 {
		issues = append(issues, fmt.Sprintf("non-positive caliber %.2f", p.Caliber))
	}
	if p.Mass <= 0 {
		issues = append(issues, fmt.Sprintf("non-positive mass %.3f", p.Mass))
	}
	if p.Fuze != components.FuzeNone && !p.Explosive() {
		issues = append(issues, fmt.Sprintf("%s fuze with no explosive payload", p.Fuze))
	}
	if p.Fuze.Proximity() && p.DetonationRange <= 0 {
		issues = append(issues, "proximity fuze with zero detonation range")
	}
	if p.Kind == components.KindRocket && p.Thrust <= 0 && p.BurnTime > 0 {
		issues = append(issues, "rocket burn time without thrust")
	}
	return issues
}

// LogValidation logs each problem Validate finds as a warning.
func LogValidation(p *components.Projectile, round string) {
	for _, issue := range Validate(p) {
		slog.Warn("projectile config", "round", round, "id", p.ID, "issue", issue)
	}
}
