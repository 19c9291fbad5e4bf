package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/core/designation"
	"github.com/jakechorley/referee-designation/pkg/core/model"
	"github.com/jakechorley/referee-designation/pkg/db"
)

// OfferDispatcher delivers designation offers to referees
type OfferDispatcher interface {
	SendOffer(ctx context.Context, offer model.Offer) error
}

// PublishStore defines the database operations needed for publishing designations
type PublishStore interface {
	GetCategories(ctx context.Context) ([]db.Category, error)
	GetReferees(ctx context.Context) ([]db.Referee, error)
	GetMatches(ctx context.Context, from, to time.Time) ([]db.Match, error)
	GetDesignations(ctx context.Context, from, to time.Time) ([]db.Designation, error)
	CommitAssignment(ctx context.Context, matchID, role, refereeID, status string) error
}

// FailedOffer is an offer that could not be delivered; its designation stays Tentative
type FailedOffer struct {
	Offer model.Offer
	Error string
}

// PublishResult contains the outcome of publishing designations
type PublishResult struct {
	Sent   []model.Offer
	Failed []FailedOffer
}

// PublishDesignations notifies every referee holding a Tentative designation in
// [from, to] and moves the designation to Notified once the offer is delivered.
// A nil dispatcher marks designations Notified without sending anything.
func PublishDesignations(
	ctx context.Context,
	store PublishStore,
	dispatcher OfferDispatcher,
	cfg *config.Config,
	logger *zap.Logger,
	from, to string,
) (*PublishResult, error) {
	logger.Info("Publishing designations", zap.String("from", from), zap.String("to", to))

	start, end, err := parseWindow(from, to)
	if err != nil {
		return nil, err
	}

	offers, err := pendingOffers(ctx, store, cfg, start, end)
	if err != nil {
		return nil, err
	}
	logger.Debug("Found tentative designations", zap.Int("count", len(offers)))

	result := &PublishResult{}
	for _, offer := range offers {
		if dispatcher != nil {
			if err := dispatcher.SendOffer(ctx, offer); err != nil {
				logger.Warn("Failed to send offer",
					zap.String("match_id", offer.MatchID),
					zap.String("role", offer.Role),
					zap.String("referee_id", offer.RefereeID),
					zap.Error(err))
				result.Failed = append(result.Failed, FailedOffer{Offer: offer, Error: err.Error()})
				continue
			}
		}

		if err := store.CommitAssignment(ctx, offer.MatchID, offer.Role, offer.RefereeID, designation.StatusNotified.String()); err != nil {
			return result, fmt.Errorf("failed to mark designation notified: %w", err)
		}

		logger.Debug("Offer sent",
			zap.String("match_id", offer.MatchID),
			zap.String("role", offer.Role),
			zap.String("referee_id", offer.RefereeID))
		result.Sent = append(result.Sent, offer)
	}

	logger.Info("Designations published",
		zap.Int("sent", len(result.Sent)),
		zap.Int("failed", len(result.Failed)))

	return result, nil
}

// pendingOffers builds an offer for every Tentative designation on a live match
func pendingOffers(ctx context.Context, store PublishStore, cfg *config.Config, start, end time.Time) ([]model.Offer, error) {
	matchRows, err := store.GetMatches(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}
	designationRows, err := store.GetDesignations(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch designations: %w", err)
	}
	refereeRows, err := store.GetReferees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch referees: %w", err)
	}
	categoryRows, err := store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	matches := make(map[string]db.Match, len(matchRows))
	for _, m := range matchRows {
		matches[m.ID] = m
	}
	referees := make(map[string]db.Referee, len(refereeRows))
	for _, r := range refereeRows {
		referees[r.ID] = r
	}
	categories := make(map[string]designation.Category, len(categoryRows))
	for _, c := range categoryRows {
		categories[c.ID] = toCategory(c)
	}

	var offers []model.Offer
	for _, des := range designationRows {
		if des.Status != designation.StatusTentative.String() {
			continue
		}
		match, ok := matches[des.MatchID]
		if !ok || match.Cancelled {
			continue
		}
		ref, ok := referees[des.RefereeID]
		if !ok {
			return nil, fmt.Errorf("designation %s/%s references unknown referee %s", des.MatchID, des.Role, des.RefereeID)
		}
		role, err := designation.ParseRole(des.Role)
		if err != nil {
			return nil, fmt.Errorf("designation on match %s: %w", des.MatchID, err)
		}
		category := categories[match.CategoryID]

		offers = append(offers, model.Offer{
			MatchID:      match.ID,
			Role:         des.Role,
			RoleLabel:    category.Label(role),
			RefereeID:    ref.ID,
			RefereeName:  ref.Name,
			Email:        ref.Email,
			Date:         match.MatchDate,
			Slot:         match.Slot,
			VenueName:    match.VenueName,
			CategoryName: category.Name,
			HomeTeam:     match.HomeTeam,
			AwayTeam:     match.AwayTeam,
			Federation:   cfg.Federation,
		})
	}
	return offers, nil
}
