// Package status classifies judgment completeness.
package status

import (
	"github.com/okian/jury/internal/domain/criteria"
	"github.com/okian/jury/internal/domain/model"
)

// Status is the completeness of one judge's judgment of one entry.
type Status string

const (
	// Unjudged means no record exists for the (judge, entry) pair.
	Unjudged Status = "unjudged"
	// Partial means a record exists but not every criterion is set.
	Partial Status = "partial"
	// Complete means every configured criterion carries a value.
	Complete Status = "complete"
)

// Classifier derives a status from a judge's record. A nil record always
// classifies as Unjudged.
type Classifier interface {
	Classify(rec *model.JudgmentRecord) Status
}

// CriteriaClassifier classifies against a configured criteria list: a record
// is Complete only when every criterion id is a key in its scores. A score of
// zero counts as set; only absence counts as missing.
type CriteriaClassifier struct {
	list criteria.List
}

// NewCriteriaClassifier creates a classifier for the given criteria list.
func NewCriteriaClassifier(list criteria.List) *CriteriaClassifier {
	return &CriteriaClassifier{list: list}
}

// Classify implements Classifier.
func (c *CriteriaClassifier) Classify(rec *model.JudgmentRecord) Status {
	if rec == nil {
		return Unjudged
	}
	for _, criterion := range c.list {
		if _, set := rec.CriteriaScores[criterion.ID]; !set {
			return Partial
		}
	}
	return Complete
}

// TwoAxisClassifier serves the slider variant: the axes always carry a value
// (defaulting to zero), so any persisted record is Complete and only the
// presence of a record matters.
type TwoAxisClassifier struct{}

// NewTwoAxisClassifier creates a presence-based classifier.
func NewTwoAxisClassifier() *TwoAxisClassifier {
	return &TwoAxisClassifier{}
}

// Classify implements Classifier.
func (c *TwoAxisClassifier) Classify(rec *model.JudgmentRecord) Status {
	if rec == nil {
		return Unjudged
	}
	return Complete
}

var (
	_ Classifier = (*CriteriaClassifier)(nil)
	_ Classifier = (*TwoAxisClassifier)(nil)
)
