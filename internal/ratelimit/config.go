package ratelimit

// Config holds rate limiter configuration.
type Config struct {
	Strategy       Strategy `yaml:"strategy" json:"strategy"`
	RequestsPerSec float64  `yaml:"requests_per_second" json:"requests_per_second"`
	Burst          int      `yaml:"burst" json:"burst"`
}

// DefaultConfig returns sensible defaults for a low-concurrency lab server.
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategyTokenBucket,
		RequestsPerSec: 1.0,
		Burst:          3,
	}
}

func applyDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Strategy == "" {
		cfg.Strategy = def.Strategy
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = def.RequestsPerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	return cfg
}
