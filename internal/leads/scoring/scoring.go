// Package scoring computes lead priority scores.
package scoring

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"donorops_backend/internal/leads/domain"
)

const (
	// Base score. Leads start at 50 and the factors add from there.
	baseScore = 50

	// quantityDivisor and quantityCap bound the device-count bonus:
	// min(round(quantity/10), 25).
	quantityDivisor = 10
	quantityCap     = 25

	// Creation scores are clamped to this band; manual priority edits may
	// use the wider [0,100] band via ClampManual.
	minScore = 10
	maxScore = 100
)

// Weights is the tunable part of the model. Source weights reflect observed
// conversion quality per channel; timeline bonuses reward stated urgency.
type Weights struct {
	SourceWeights  map[string]int `yaml:"sourceWeights"`
	DefaultSource  int            `yaml:"defaultSource"`
	UrgentBonus    int            `yaml:"urgentBonus"`
	ImmediateBonus int            `yaml:"immediateBonus"`
}

// DefaultWeights returns the built-in model.
func DefaultWeights() Weights {
	return Weights{
		SourceWeights: map[string]int{
			"Professional Referral": 15,
			"Existing Donor":        12,
			"Reddit (r/sysadmin)":   10,
			"LinkedIn":              8,
			"Conference":            6,
			"Website Form":          4,
		},
		DefaultSource:  2,
		UrgentBonus:    8,
		ImmediateBonus: 12,
	}
}

// LoadWeights reads a YAML override file. An empty path returns the
// defaults; fields absent from the file keep their default values.
func LoadWeights(path string) (Weights, error) {
	weights := DefaultWeights()
	if path == "" {
		return weights, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read scoring weights: %w", err)
	}
	if err := yaml.Unmarshal(raw, &weights); err != nil {
		return Weights{}, fmt.Errorf("parse scoring weights: %w", err)
	}
	return weights, nil
}

// Scorer scores leads against a fixed weight model.
type Scorer struct {
	weights Weights
}

// New creates a scorer.
func New(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes the priority for a lead. Pure function: missing fields
// contribute zero or the default weight, and the result is clamped to
// [10,100]. Both timeline bonuses stack when both substrings appear.
func (s *Scorer) Score(lead domain.Lead) int {
	score := baseScore

	if lead.EstimatedQuantity > 0 {
		bonus := int(math.Round(float64(lead.EstimatedQuantity) / quantityDivisor))
		if bonus > quantityCap {
			bonus = quantityCap
		}
		score += bonus
	}

	if weight, ok := s.weights.SourceWeights[lead.Source]; ok {
		score += weight
	} else {
		score += s.weights.DefaultSource
	}

	timeline := strings.ToLower(lead.Timeline)
	if strings.Contains(timeline, "urgent") {
		score += s.weights.UrgentBonus
	}
	if strings.Contains(timeline, "immediate") {
		score += s.weights.ImmediateBonus
	}

	return clamp(score, minScore, maxScore)
}

// ClampManual bounds an operator-edited priority. Out-of-range values are
// clamped rather than rejected.
func ClampManual(priority int) int {
	return clamp(priority, 0, maxScore)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
