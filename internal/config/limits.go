package config

type Limits struct {
	RateLimit          RateLimitConfig `yaml:"rate_limit" validate:"required"`
	ReviewPreviewChars int             `yaml:"review_preview_chars" validate:"required,min=100,max=100000"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

func DefaultLimits() Limits {
	return Limits{
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         15,
		},
		ReviewPreviewChars: 1000,
	}
}
