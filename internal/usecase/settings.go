package usecase

import "time"

const (
	// Telegram treats restrictions shorter than 30 seconds or longer than
	// 366 days as permanent.
	MinRestrictionDuration = 30 * time.Second
	MaxRestrictionDuration = 366 * 24 * time.Hour

	MaxWindowSize = 64
)

// Settings are the per-deployment game parameters shared by every chat.
type Settings struct {
	RestrictionDuration time.Duration
	TempLifetime        time.Duration
	HealingConstant     int64
	HealingLocation     *time.Location
	WindowSize          int
	StrictTargets       bool
}

func (s Settings) Validate() error {
	if s.RestrictionDuration < MinRestrictionDuration || s.RestrictionDuration > MaxRestrictionDuration {
		return newError(ErrorInvalidConfig, "restriction_duration_out_of_range", nil)
	}
	if s.TempLifetime <= 0 {
		return newError(ErrorInvalidConfig, "temp_lifetime_not_positive", nil)
	}
	if s.HealingConstant == 0 {
		return newError(ErrorInvalidConfig, "healing_constant_zero", nil)
	}
	if s.HealingLocation == nil {
		return newError(ErrorInvalidConfig, "healing_location_missing", nil)
	}
	if s.WindowSize < 1 || s.WindowSize > MaxWindowSize {
		return newError(ErrorInvalidConfig, "window_size_out_of_range", nil)
	}
	return nil
}
