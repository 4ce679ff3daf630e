package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Pool state at window end
	Active    int `csv:"active"`
	Exhausted int `csv:"exhausted"`

	// Events during window
	Shots        int     `csv:"shots"`
	Hits         int     `csv:"hits"`
	Penetrations int     `csv:"penetrations"`
	Stops        int     `csv:"stops"`
	Ricochets    int     `csv:"ricochets"`
	SoftHits     int     `csv:"soft_hits"`
	Detonations  int     `csv:"detonations"`
	Expired      int     `csv:"expired"`
	Faults       int     `csv:"faults"`
	PenRate      float64 `csv:"pen_rate"`

	// Impact speed distribution
	ImpactSpeedMean float64 `csv:"impact_speed_mean"`
	ImpactSpeedP10  float64 `csv:"impact_speed_p10"`
	ImpactSpeedP50  float64 `csv:"impact_speed_p50"`
	ImpactSpeedP90  float64 `csv:"impact_speed_p90"`

	MassLost float64 `csv:"mass_lost"` // kg eroded or ablated
}

// Summarize returns the mean and empirical 10th, 50th and 90th percentiles.
// Returns zeros for an empty slice.
func Summarize(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("active", s.Active),
		slog.Int("exhausted", s.Exhausted),
		slog.Int("shots", s.Shots),
		slog.Int("hits", s.Hits),
		slog.Int("penetrations", s.Penetrations),
		slog.Int("stops", s.Stops),
		slog.Int("ricochets", s.Ricochets),
		slog.Int("soft_hits", s.SoftHits),
		slog.Int("detonations", s.Detonations),
		slog.Int("expired", s.Expired),
		slog.Int("faults", s.Faults),
		slog.Float64("pen_rate", s.PenRate),
		slog.Float64("impact_speed_mean", s.ImpactSpeedMean),
		slog.Float64("impact_speed_p50", s.ImpactSpeedP50),
		slog.Float64("mass_lost", s.MassLost),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"active", s.Active,
		"shots", s.Shots,
		"hits", s.Hits,
		"penetrations", s.Penetrations,
		"stops", s.Stops,
		"ricochets", s.Ricochets,
		"detonations", s.Detonations,
		"expired", s.Expired,
		"faults", s.Faults,
		"pen_rate", s.PenRate,
		"impact_speed_p10", s.ImpactSpeedP10,
		"impact_speed_p50", s.ImpactSpeedP50,
		"impact_speed_p90", s.ImpactSpeedP90,
	)
}
