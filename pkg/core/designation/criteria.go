package designation

// Criterion is a hard constraint a candidate must satisfy to be designated.
// Criteria act as vetoes: if ANY criterion rejects a candidate, it is not ranked.
// The same check is re-run by ValidateRun over the committed assignments.
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// IsCandidateValid reports whether the candidate may hold the role on the match
	IsCandidateValid(rc *RunContext, candidate *ScoredCandidate) bool
}

// Violation is a broken invariant found when validating a run
type Violation struct {
	MatchID     string
	Role        Role
	RefereeID   string
	Check       string
	Description string
}
