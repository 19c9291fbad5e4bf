package model

import (
	"encoding/json"
	"fmt"
)

// Offer is a designation sent to a referee for acceptance
type Offer struct {
	MatchID      string `json:"matchId"`
	Role         string `json:"role"`
	RoleLabel    string `json:"roleLabel"`
	RefereeID    string `json:"refereeId"`
	RefereeName  string `json:"refereeName"`
	Email        string `json:"email,omitempty"`
	Date         string `json:"date"` // YYYY-MM-DD
	Slot         int    `json:"slot"`
	VenueName    string `json:"venueName"`
	CategoryName string `json:"categoryName"`
	HomeTeam     string `json:"homeTeam,omitempty"`
	AwayTeam     string `json:"awayTeam,omitempty"`
	Federation   string `json:"federation"`
}

// Response is a referee's answer to an offer
type Response struct {
	MatchID   string `json:"matchId"`
	Role      string `json:"role"`
	RefereeID string `json:"refereeId"`
	Accepted  bool   `json:"accepted"`
}

// DecodeResponse parses a JSON response and checks its required fields
func DecodeResponse(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.MatchID == "" || resp.Role == "" || resp.RefereeID == "" {
		return Response{}, fmt.Errorf("response is missing matchId, role or refereeId")
	}
	return resp, nil
}
