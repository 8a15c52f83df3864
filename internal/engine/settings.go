package engine

// Settings holds simulator and search configuration.
type Settings struct {
	// Simulator
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"` // Beam steps before the trace is cut short
	BoundsMargin  int `json:"bounds_margin" yaml:"bounds_margin"`   // Half-block units a beam may travel past the board edge

	// Search
	OrderSlots    bool `json:"order_slots" yaml:"order_slots"`       // Hot-slot and target-distance ordering of cells
	StateCache    bool `json:"state_cache" yaml:"state_cache"`       // Skip layouts already simulated
	Workers       int  `json:"workers" yaml:"workers"`               // Parallel workers over position combinations, <=1 runs inline
	ProgressEvery int  `json:"progress_every" yaml:"progress_every"` // Debug log interval in candidates, 0 = off
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 5000,
		BoundsMargin:  10,
		OrderSlots:    true,
		StateCache:    false,
		Workers:       1,
		ProgressEvery: 1000,
	}
}

// normalized fills zero simulator limits with defaults.
func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.MaxIterations <= 0 {
		s.MaxIterations = d.MaxIterations
	}
	if s.BoundsMargin <= 0 {
		s.BoundsMargin = d.BoundsMargin
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	return s
}
