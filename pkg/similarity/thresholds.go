package similarity

import (
	"errors"
	"fmt"
)

// Default thresholds.
const (
	DefaultMinimum        = 0.5
	DefaultIdeal          = 0.5
	DefaultExtractMinimum = 0.3
)

// Threshold validation errors.
var (
	ErrThresholdRange   = errors.New("threshold must be within [0, 1]")
	ErrExtractAboveMain = errors.New("extract minimum must not exceed the minimum")
)

// Thresholds is the acceptance policy for candidate pairs.
type Thresholds struct {
	// Minimum is the inclusive score a direct one-to-one match must reach.
	Minimum float64 `mapstructure:"minimum" json:"minimum" yaml:"minimum"`
	// Ideal is the score secondary hierarchy matches must reach.
	Ideal float64 `mapstructure:"ideal" json:"ideal" yaml:"ideal"`
	// ExtractMinimum is the coverage extract, inline, split and merge resolution must reach.
	ExtractMinimum float64 `mapstructure:"extract_minimum" json:"extract_minimum" yaml:"extract_minimum"`
}

// DefaultThresholds returns the default policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Minimum:        DefaultMinimum,
		Ideal:          DefaultIdeal,
		ExtractMinimum: DefaultExtractMinimum,
	}
}

// Validate checks the policy values.
func (t Thresholds) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"minimum", t.Minimum},
		{"ideal", t.Ideal},
		{"extract_minimum", t.ExtractMinimum},
	}

	for _, f := range fields {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s=%v", ErrThresholdRange, f.name, f.value)
		}
	}

	if t.ExtractMinimum > t.Minimum {
		return fmt.Errorf("%w: %v > %v", ErrExtractAboveMain, t.ExtractMinimum, t.Minimum)
	}

	return nil
}

// Accepts reports whether a direct match score passes the policy.
func (t Thresholds) Accepts(score float64) bool {
	return score >= t.Minimum
}

// AcceptsSecondary reports whether a hierarchy fan-out score passes the policy.
func (t Thresholds) AcceptsSecondary(score float64) bool {
	return score >= t.Ideal
}

// AcceptsCoverage reports whether an extract or inline coverage passes the policy.
func (t Thresholds) AcceptsCoverage(coverage float64) bool {
	return coverage >= t.ExtractMinimum
}
