package criteria

import (
	"github.com/jakechorley/referee-designation/pkg/core/designation"
)

// LevelCriterion vetoes referees whose qualification is below the category minimum.
// Applies to every role, scorer included.
type LevelCriterion struct{}

// NewLevelCriterion creates a LevelCriterion
func NewLevelCriterion() *LevelCriterion {
	return &LevelCriterion{}
}

func (c *LevelCriterion) Name() string {
	return "Level"
}

func (c *LevelCriterion) IsCandidateValid(rc *designation.RunContext, candidate *designation.ScoredCandidate) bool {
	if candidate.Category == nil {
		return false
	}
	return candidate.Referee.Level >= candidate.Category.MinLevel
}
