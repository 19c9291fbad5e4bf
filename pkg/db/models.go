package db

import "time"

// Venue is a sports hall where matches are played
type Venue struct {
	ID   string
	Name string
	Lat  float64
	Lng  float64
}

// Category holds the staffing rules of a competition category
type Category struct {
	ID             string
	Name           string
	MinReferees    int
	RequiresScorer bool
	Priority       int
	MinLevel       int
	LabelRefereeA  string
	LabelRefereeB  string
	LabelScorer    string
}

// Referee is an official who can be designated to matches
type Referee struct {
	ID           string
	Name         string
	Email        string
	Level        int
	Lat          float64
	Lng          float64
	HasTransport bool
	Active       bool
}

// Match is a scheduled game, joined with its venue
type Match struct {
	ID         string
	MatchDate  string // YYYY-MM-DD
	Slot       int
	VenueID    string
	VenueName  string
	VenueLat   float64
	VenueLng   float64
	CategoryID string
	HomeTeam   string
	AwayTeam   string
	Cancelled  bool
}

// Availability is one referee's declared slot states for one day.
// Slot values are "unavailable", "with_transport" or "without_transport".
type Availability struct {
	RefereeID string
	Date      string // YYYY-MM-DD
	Slot1     string
	Slot2     string
	Slot3     string
	Slot4     string
	Note      string
}

// Designation is the holder and status of one role on one match
type Designation struct {
	MatchID   string
	Role      string
	RefereeID string
	Status    string
	UpdatedAt time.Time
}

// Rejection records a referee turning down a role
type Rejection struct {
	ID         string
	MatchID    string
	Role       string
	RefereeID  string
	RejectedAt time.Time
	// Implicit is set when the rejection was inferred from a response timeout
	Implicit bool
}

// Shortfall is a role a run could not fill
type Shortfall struct {
	ID         string
	RunID      string
	MatchID    string
	CategoryID string
	MatchDate  string // YYYY-MM-DD
	Slot       int
	Role       string
	Reason     string
	CreatedAt  time.Time
}

// Run records one designation run
type Run struct {
	ID          string
	WindowStart string // YYYY-MM-DD
	WindowEnd   string // YYYY-MM-DD
	StartedAt   time.Time
	Assigned    int
	Shortfalls  int
	Violations  int
	Forced      bool
}
