package criteria

import (
	"github.com/jakechorley/referee-designation/pkg/core/designation"
)

// TravelCriterion vetoes referees who cannot reach the venue.
//
// Validity:
//   - Referees driving (slot declared with transport AND own transport) must live
//     within the driving radius of the venue
//   - Everyone else must live within the walking/short-trip radius
type TravelCriterion struct {
	policy designation.TravelPolicy
}

// NewTravelCriterion creates a TravelCriterion for the given radii
func NewTravelCriterion(policy designation.TravelPolicy) *TravelCriterion {
	return &TravelCriterion{policy: policy}
}

func (c *TravelCriterion) Name() string {
	return "Travel"
}

func (c *TravelCriterion) IsCandidateValid(rc *designation.RunContext, candidate *designation.ScoredCandidate) bool {
	return c.policy.IsTravelFeasible(candidate.Referee.Home, candidate.Match.Venue, candidate.TravelsWithTransport())
}
