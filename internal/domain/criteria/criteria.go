// Package criteria defines the fixed scoring axes and their bounds.
//
// The criteria list is process-wide configuration: immutable at runtime and
// injected into the components that need it rather than read from a global.
// It defines the legal key space for a judgment's criteria scores.
package criteria

import "fmt"

// Criterion is one scored axis with an inclusive maximum.
type Criterion struct {
	ID       string `koanf:"id" validate:"required"`
	Label    string `koanf:"label"`
	MaxScore int    `koanf:"max_score" validate:"gt=0"`
}

// List is an ordered criteria configuration.
type List []Criterion

// Default returns the standard four-axis judging configuration.
func Default() List {
	return List{
		{ID: "innovation", Label: "Innovation & Creativity", MaxScore: 20},
		{ID: "technical", Label: "Technical Implementation", MaxScore: 30},
		{ID: "presentation", Label: "Presentation & Defense", MaxScore: 25},
		{ID: "usability", Label: "Usability", MaxScore: 25},
	}
}

// TwoAxis returns the slider-variant configuration: two always-present
// numeric axes with a shared bound.
func TwoAxis() List {
	return List{
		{ID: "behavior", Label: "Behavior", MaxScore: 10},
		{ID: "work", Label: "Work", MaxScore: 10},
	}
}

// Lookup returns the criterion with the given id.
func (l List) Lookup(id string) (Criterion, bool) {
	for _, c := range l {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// IDs returns the criterion ids in configuration order.
func (l List) IDs() []string {
	ids := make([]string, len(l))
	for i, c := range l {
		ids[i] = c.ID
	}
	return ids
}

// TotalMax is the maximum achievable total for a single judgment.
func (l List) TotalMax() int {
	sum := 0
	for _, c := range l {
		sum += c.MaxScore
	}
	return sum
}

// Validate checks the list is usable: non-empty, positive bounds, unique ids.
func (l List) Validate() error {
	if len(l) == 0 {
		return ErrEmptyList
	}
	seen := make(map[string]struct{}, len(l))
	for _, c := range l {
		if c.ID == "" {
			return fmt.Errorf("%w: missing id", ErrInvalidCriterion)
		}
		if c.MaxScore <= 0 {
			return fmt.Errorf("%w: %s has non-positive max score", ErrInvalidCriterion, c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidCriterion, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// Clamp coerces v into [0, max]. Idempotent: clamping a clamped value is a no-op.
func Clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
