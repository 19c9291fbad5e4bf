package gmailclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/referee-designation/pkg/core/model"
)

// slotTimes names the four daily slots in offer emails
var slotTimes = map[int]string{
	1: "morning (slot 1)",
	2: "midday (slot 2)",
	3: "afternoon (slot 3)",
	4: "evening (slot 4)",
}

// SendOffer emails a designation offer to the referee
func (c *Client) SendOffer(ctx context.Context, offer model.Offer) error {
	if offer.Email == "" {
		return fmt.Errorf("referee %s has no email address", offer.RefereeID)
	}
	subject, body := composeOffer(offer)
	return c.SendEmail(ctx, offer.Email, subject, body)
}

func composeOffer(offer model.Offer) (string, string) {
	subject := fmt.Sprintf("Designation: %s %s on %s", offer.CategoryName, offer.RoleLabel, offer.Date)

	slot, ok := slotTimes[offer.Slot]
	if !ok {
		slot = fmt.Sprintf("slot %d", offer.Slot)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", offer.RefereeName)
	fmt.Fprintf(&b, "You have been designated as %s for the following match:\n\n", offer.RoleLabel)
	fmt.Fprintf(&b, "  %s vs %s\n", offer.HomeTeam, offer.AwayTeam)
	fmt.Fprintf(&b, "  %s, %s\n", offer.CategoryName, offer.Date)
	fmt.Fprintf(&b, "  %s at %s\n\n", slot, offer.VenueName)
	b.WriteString("Please reply to accept or decline this designation.\n")
	fmt.Fprintf(&b, "Match reference: %s / %s\n\n", offer.MatchID, offer.Role)
	fmt.Fprintf(&b, "Thanks,\n%s\n", offer.Federation)

	return subject, b.String()
}
