package criteria

import (
	"github.com/jakechorley/referee-designation/pkg/core/designation"
)

// Defaults returns the constraints every production run applies
func Defaults(cfg designation.Config) []designation.Criterion {
	return []designation.Criterion{
		NewTravelCriterion(cfg.Travel),
		NewLevelCriterion(),
	}
}
