// internal/matching/service.go

package matching

import (
	"context"
	"log"
	"time"
)

// Notifier is the outbound side-channel boundary. Delivery is fire and
// forget: the engine requests it and never learns whether it succeeded.
type Notifier interface {
	NotifyLiked(ctx context.Context, targetID int64)
	NotifyMatched(ctx context.Context, userA, userB int64)
}

// Service implements the matching engine: candidate selection with exclusion
// rules, the reaction ledger, and mutual-match detection.
//
// Every operation is stateless between calls — all state lives in the store —
// so concurrent callers and horizontal scaling are safe.
type Service interface {
	// SelectCandidate picks an unseen, eligible candidate for the viewer and
	// records the exposure. Returns (nil, nil) when nobody is left to show.
	// Returns ErrNotEligible when the viewer precondition is unmet.
	SelectCandidate(ctx context.Context, viewerID int64) (*Candidate, error)

	// RecordReaction appends a like/dislike to the reaction ledger
	RecordReaction(ctx context.Context, likerID, targetID int64, isLike bool) error

	// ProcessLike evaluates mutuality for an already-recorded like and, on a
	// reciprocal like, creates the match exactly once across all concurrent
	// callers. Only the call that created the row reports Matched=true and
	// triggers notifications.
	ProcessLike(ctx context.Context, likerID, targetID int64) (*MatchOutcome, error)

	// React records the reaction and, for likes, runs match resolution —
	// the two steps the conversational front-end always performs together
	React(ctx context.Context, likerID, targetID int64, isLike bool) (*MatchOutcome, error)

	// GetMatches lists the user's matches with partner cards
	GetMatches(ctx context.Context, userID int64) ([]*MatchedUser, error)

	// CountLikesReceived returns how many distinct users liked this user
	CountLikesReceived(ctx context.Context, userID int64) (int64, error)
}

type service struct {
	repo     Repository
	notifier Notifier
	cache    *LikeCountCache // optional; nil disables caching
	cooldown time.Duration
}

// NewService creates a new matching service. cache may be nil when Redis is
// not configured.
func NewService(repo Repository, notifier Notifier, cache *LikeCountCache, cooldown time.Duration) Service {
	if cooldown <= 0 {
		cooldown = 24 * time.Hour
	}
	return &service{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		cooldown: cooldown,
	}
}

func (s *service) SelectCandidate(ctx context.Context, viewerID int64) (*Candidate, error) {
	start := time.Now()
	defer observeSelectionDuration(start)

	viewer, err := s.repo.GetViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	if !viewer.Eligible() {
		return nil, ErrNotEligible
	}

	candidate, err := s.repo.PickCandidate(ctx, viewerID, *viewer.Gender, s.cooldown)
	if err != nil {
		return nil, err
	}

	if candidate == nil {
		recordEmptySelection()
		return nil, nil
	}

	recordCandidateServed()
	return candidate, nil
}

func (s *service) RecordReaction(ctx context.Context, likerID, targetID int64, isLike bool) error {
	if likerID == targetID {
		return ErrSelfReaction
	}

	if err := s.repo.InsertReaction(ctx, likerID, targetID, isLike); err != nil {
		return err
	}

	recordReaction(isLike)

	if isLike && s.cache != nil {
		s.cache.Invalidate(ctx, targetID)
	}

	return nil
}

func (s *service) ProcessLike(ctx context.Context, likerID, targetID int64) (*MatchOutcome, error) {
	if likerID == targetID {
		return nil, ErrSelfReaction
	}

	// Any historical like from the target counts — a later dislike does not
	// erase it.
	reciprocal, err := s.repo.HasLike(ctx, targetID, likerID)
	if err != nil {
		return nil, err
	}

	if !reciprocal {
		if s.notifier != nil {
			s.notifier.NotifyLiked(ctx, targetID)
		}
		return &MatchOutcome{Matched: false}, nil
	}

	created, err := s.repo.CreateMatchIfAbsent(ctx, likerID, targetID)
	if err != nil {
		return nil, err
	}

	if !created {
		// Someone else (a concurrent caller, or a retry of this call) already
		// materialized the match. Not an error, and no second notification.
		return &MatchOutcome{Matched: false}, nil
	}

	recordMatch()
	log.Printf("match created: users %d and %d", likerID, targetID)

	if s.notifier != nil {
		s.notifier.NotifyMatched(ctx, likerID, targetID)
	}

	return &MatchOutcome{Matched: true}, nil
}

func (s *service) React(ctx context.Context, likerID, targetID int64, isLike bool) (*MatchOutcome, error) {
	// The like must be durable before mutuality is evaluated; if this fails
	// the resolver must not run at all.
	if err := s.RecordReaction(ctx, likerID, targetID, isLike); err != nil {
		return nil, err
	}

	if !isLike {
		return &MatchOutcome{Matched: false}, nil
	}

	return s.ProcessLike(ctx, likerID, targetID)
}

func (s *service) GetMatches(ctx context.Context, userID int64) ([]*MatchedUser, error) {
	return s.repo.GetUserMatches(ctx, userID)
}

func (s *service) CountLikesReceived(ctx context.Context, userID int64) (int64, error) {
	if s.cache != nil {
		if count, ok := s.cache.Get(ctx, userID); ok {
			return count, nil
		}
	}

	count, err := s.repo.CountLikesReceived(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, count)
	}

	return count, nil
}
