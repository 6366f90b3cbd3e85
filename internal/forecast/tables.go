// Package forecast estimates monthly growth rates from plan history and
// projects future prices from them.
package forecast

// RateBand is a horizon bucket. A band applies to horizons up to MaxYears;
// MaxYears == 0 marks the open-ended last band.
type RateBand struct {
	MaxYears float64 `toml:"max_years"`
	Default  float64 `toml:"default"` // rate used when there is too little history
	Lo       float64 `toml:"lo"`
	Hi       float64 `toml:"hi"`
}

// CeilingBand caps how far the price may grow over the horizon.
type CeilingBand struct {
	MaxYears   float64 `toml:"max_years"`
	Multiplier float64 `toml:"multiplier"`
}

// Tables holds every threshold the estimator uses.
type Tables struct {
	Bands    []RateBand    `toml:"bands"`
	Ceilings []CeilingBand `toml:"ceilings"`

	NoHorizonYears     float64 `toml:"no_horizon_years"`
	NoHorizonMaxReturn float64 `toml:"no_horizon_max_return"`

	HistoryYears      int     `toml:"history_years"`
	MinHistoryRows    int     `toml:"min_history_rows"`
	FallbackHistRate  float64 `toml:"fallback_hist_rate"`
	GeometricFallback float64 `toml:"geometric_fallback"`

	PenaltyThreshold float64 `toml:"penalty_threshold"`
	PenaltyStep      float64 `toml:"penalty_step"`
	PenaltyPerStep   float64 `toml:"penalty_per_step"`
	PenaltyFloor     float64 `toml:"penalty_floor"`
}

// DefaultTables returns the stock estimator thresholds.
func DefaultTables() Tables {
	return Tables{
		Bands: []RateBand{
			{MaxYears: 5, Default: 0.005, Lo: 0.0050, Hi: 0.0080},
			{MaxYears: 10, Default: 0.004, Lo: 0.0040, Hi: 0.0070},
			{MaxYears: 20, Default: 0.0035, Lo: 0.0035, Hi: 0.0060},
			{MaxYears: 0, Default: 0.003, Lo: 0.0030, Hi: 0.0055},
		},
		Ceilings: []CeilingBand{
			{MaxYears: 10, Multiplier: 2.0},
			{MaxYears: 20, Multiplier: 3.0},
			{MaxYears: 0, Multiplier: 3.5},
		},
		NoHorizonYears:     10,
		NoHorizonMaxReturn: 0.008,
		HistoryYears:       5,
		MinHistoryRows:     12,
		FallbackHistRate:   0.004,
		GeometricFallback:  0.003,
		PenaltyThreshold:   90,
		PenaltyStep:        10,
		PenaltyPerStep:     0.0003,
		PenaltyFloor:       0.0025,
	}
}

// Band returns the rate band for a horizon in years.
func (t Tables) Band(years float64) RateBand {
	for _, b := range t.Bands {
		if b.MaxYears == 0 || years <= b.MaxYears {
			return b
		}
	}
	if len(t.Bands) == 0 {
		return RateBand{}
	}
	return t.Bands[len(t.Bands)-1]
}

// Ceiling returns the growth multiplier cap for a horizon in years.
func (t Tables) Ceiling(years float64) float64 {
	for _, c := range t.Ceilings {
		if c.MaxYears == 0 || years <= c.MaxYears {
			return c.Multiplier
		}
	}
	if len(t.Ceilings) == 0 {
		return 1
	}
	return t.Ceilings[len(t.Ceilings)-1].Multiplier
}
