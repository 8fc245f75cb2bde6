// internal/matching/service_test.go

package matching

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository is an in-memory Repository with the same invariants as the
// SQL implementation: append-only logs and a unique canonical match pair.
type fakeRepository struct {
	mu sync.Mutex

	viewers    map[int64]*Viewer
	candidates []*Candidate // returned round-robin by PickCandidate
	nextPick   int
	views      []ViewEvent
	reactions  []Reaction
	matches    map[[2]int64]*Match

	pickErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		viewers: make(map[int64]*Viewer),
		matches: make(map[[2]int64]*Match),
	}
}

func (f *fakeRepository) GetViewer(ctx context.Context, viewerID int64) (*Viewer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	viewer, ok := f.viewers[viewerID]
	if !ok {
		return nil, ErrViewerNotFound
	}
	return viewer, nil
}

func (f *fakeRepository) PickCandidate(ctx context.Context, viewerID int64, viewerGender string, cooldown time.Duration) (*Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pickErr != nil {
		return nil, f.pickErr
	}
	if f.nextPick >= len(f.candidates) {
		return nil, nil
	}

	candidate := f.candidates[f.nextPick]
	f.nextPick++
	f.views = append(f.views, ViewEvent{
		ViewerID: viewerID,
		TargetID: candidate.ID,
		ViewedAt: time.Now(),
	})
	return candidate, nil
}

func (f *fakeRepository) InsertReaction(ctx context.Context, likerID, targetID int64, isLike bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reactions = append(f.reactions, Reaction{
		LikerID:  likerID,
		TargetID: targetID,
		IsLike:   isLike,
	})
	return nil
}

func (f *fakeRepository) HasLike(ctx context.Context, likerID, targetID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.reactions {
		if r.LikerID == likerID && r.TargetID == targetID && r.IsLike {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) CreateMatchIfAbsent(ctx context.Context, userA, userB int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u1, u2 := CanonicalPair(userA, userB)
	key := [2]int64{u1, u2}
	if _, exists := f.matches[key]; exists {
		return false, nil
	}

	f.matches[key] = &Match{
		ID:        int64(len(f.matches) + 1),
		User1ID:   u1,
		User2ID:   u2,
		MatchedAt: time.Now(),
	}
	return true, nil
}

func (f *fakeRepository) GetUserMatches(ctx context.Context, userID int64) ([]*MatchedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*MatchedUser
	for _, m := range f.matches {
		if m.User1ID == userID || m.User2ID == userID {
			out = append(out, &MatchedUser{Match: *m})
		}
	}
	return out, nil
}

func (f *fakeRepository) CountLikesReceived(ctx context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[int64]bool)
	for _, r := range f.reactions {
		if r.TargetID == userID && r.IsLike {
			seen[r.LikerID] = true
		}
	}
	return int64(len(seen)), nil
}

// fakeNotifier records delivered notifications
type fakeNotifier struct {
	mu      sync.Mutex
	liked   []int64
	matched [][2]int64
}

func (f *fakeNotifier) NotifyLiked(ctx context.Context, targetID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liked = append(f.liked, targetID)
}

func (f *fakeNotifier) NotifyMatched(ctx context.Context, userA, userB int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matched = append(f.matched, [2]int64{userA, userB})
}

func strPtr(s string) *string { return &s }

func eligibleViewer(id int64, gender string) *Viewer {
	return &Viewer{ID: id, Gender: strPtr(gender), Verified: true, Banned: false}
}

func TestSelectCandidate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns candidate and records view", func(t *testing.T) {
		repo := newFakeRepository()
		repo.viewers[1] = eligibleViewer(1, "male")
		repo.candidates = []*Candidate{{ID: 2, FirstName: strPtr("Anna")}}

		svc := NewService(repo, nil, nil, 24*time.Hour)

		candidate, err := svc.SelectCandidate(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, candidate)
		assert.Equal(t, int64(2), candidate.ID)

		require.Len(t, repo.views, 1)
		assert.Equal(t, int64(1), repo.views[0].ViewerID)
		assert.Equal(t, int64(2), repo.views[0].TargetID)
	})

	t.Run("nil when pool is exhausted", func(t *testing.T) {
		repo := newFakeRepository()
		repo.viewers[1] = eligibleViewer(1, "male")

		svc := NewService(repo, nil, nil, 24*time.Hour)

		candidate, err := svc.SelectCandidate(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, candidate)
		assert.Empty(t, repo.views)
	})

	t.Run("unverified viewer is not eligible", func(t *testing.T) {
		repo := newFakeRepository()
		repo.viewers[1] = &Viewer{ID: 1, Gender: strPtr("male"), Verified: false}
		repo.candidates = []*Candidate{{ID: 2}}

		svc := NewService(repo, nil, nil, 24*time.Hour)

		_, err := svc.SelectCandidate(ctx, 1)
		assert.ErrorIs(t, err, ErrNotEligible)
		assert.Empty(t, repo.views, "no view may be recorded for a rejected viewer")
	})

	t.Run("banned viewer is not eligible", func(t *testing.T) {
		repo := newFakeRepository()
		repo.viewers[1] = &Viewer{ID: 1, Gender: strPtr("male"), Verified: true, Banned: true}

		svc := NewService(repo, nil, nil, 24*time.Hour)

		_, err := svc.SelectCandidate(ctx, 1)
		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("viewer without gender is not eligible", func(t *testing.T) {
		repo := newFakeRepository()
		repo.viewers[1] = &Viewer{ID: 1, Verified: true}

		svc := NewService(repo, nil, nil, 24*time.Hour)

		_, err := svc.SelectCandidate(ctx, 1)
		assert.ErrorIs(t, err, ErrNotEligible)
	})

	t.Run("unknown viewer", func(t *testing.T) {
		repo := newFakeRepository()

		svc := NewService(repo, nil, nil, 24*time.Hour)

		_, err := svc.SelectCandidate(ctx, 42)
		assert.ErrorIs(t, err, ErrViewerNotFound)
	})
}

func TestRecordReaction(t *testing.T) {
	ctx := context.Background()

	t.Run("appends to the ledger", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo, nil, nil, 24*time.Hour)

		require.NoError(t, svc.RecordReaction(ctx, 1, 2, true))
		require.NoError(t, svc.RecordReaction(ctx, 1, 2, false))
		require.NoError(t, svc.RecordReaction(ctx, 1, 2, true))

		// Append-only: repeated reactions accumulate, nothing is overwritten
		assert.Len(t, repo.reactions, 3)
	})

	t.Run("rejects self reaction", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo, nil, nil, 24*time.Hour)

		err := svc.RecordReaction(ctx, 7, 7, true)
		assert.ErrorIs(t, err, ErrSelfReaction)
		assert.Empty(t, repo.reactions)
	})
}

func TestProcessLike(t *testing.T) {
	ctx := context.Background()

	t.Run("no match without reciprocal like", func(t *testing.T) {
		repo := newFakeRepository()
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier, nil, 24*time.Hour)

		require.NoError(t, svc.RecordReaction(ctx, 1, 2, true))
		outcome, err := svc.ProcessLike(ctx, 1, 2)
		require.NoError(t, err)
		assert.False(t, outcome.Matched)

		assert.Equal(t, []int64{2}, notifier.liked)
		assert.Empty(t, notifier.matched)
	})

	t.Run("mutual like creates exactly one match", func(t *testing.T) {
		repo := newFakeRepository()
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier, nil, 24*time.Hour)

		out1, err := svc.React(ctx, 1, 2, true)
		require.NoError(t, err)
		assert.False(t, out1.Matched)

		out2, err := svc.React(ctx, 2, 1, true)
		require.NoError(t, err)
		assert.True(t, out2.Matched)

		require.Len(t, repo.matches, 1)
		m := repo.matches[[2]int64{1, 2}]
		require.NotNil(t, m)
		assert.Equal(t, int64(1), m.User1ID)
		assert.Equal(t, int64(2), m.User2ID)

		require.Len(t, notifier.matched, 1)
	})

	t.Run("dislike then like still matches", func(t *testing.T) {
		// A like is never erased by a later dislike from the same user
		repo := newFakeRepository()
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier, nil, 24*time.Hour)

		_, err := svc.React(ctx, 2, 1, true)
		require.NoError(t, err)
		_, err = svc.React(ctx, 2, 1, false)
		require.NoError(t, err)

		outcome, err := svc.React(ctx, 1, 2, true)
		require.NoError(t, err)
		assert.True(t, outcome.Matched)
	})

	t.Run("dislike never triggers resolution", func(t *testing.T) {
		repo := newFakeRepository()
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier, nil, 24*time.Hour)

		_, err := svc.React(ctx, 2, 1, true)
		require.NoError(t, err)

		outcome, err := svc.React(ctx, 1, 2, false)
		require.NoError(t, err)
		assert.False(t, outcome.Matched)
		assert.Empty(t, repo.matches)
	})

	t.Run("retry after existing match is absorbed", func(t *testing.T) {
		repo := newFakeRepository()
		notifier := &fakeNotifier{}
		svc := NewService(repo, notifier, nil, 24*time.Hour)

		_, err := svc.React(ctx, 1, 2, true)
		require.NoError(t, err)
		out, err := svc.React(ctx, 2, 1, true)
		require.NoError(t, err)
		require.True(t, out.Matched)

		// A duplicate resolution reports no new match and sends nothing
		out, err = svc.ProcessLike(ctx, 2, 1)
		require.NoError(t, err)
		assert.False(t, out.Matched)

		assert.Len(t, repo.matches, 1)
		assert.Len(t, notifier.matched, 1)
	})

	t.Run("rejects self like", func(t *testing.T) {
		repo := newFakeRepository()
		svc := NewService(repo, nil, nil, 24*time.Hour)

		_, err := svc.ProcessLike(ctx, 3, 3)
		assert.ErrorIs(t, err, ErrSelfReaction)
	})
}

func TestProcessLikeConcurrent(t *testing.T) {
	// Both sides resolve the same mutual like at once; exactly one caller may
	// win and exactly one match row may exist afterwards.
	ctx := context.Background()
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil, 24*time.Hour)

	require.NoError(t, svc.RecordReaction(ctx, 1, 2, true))
	require.NoError(t, svc.RecordReaction(ctx, 2, 1, true))

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		liker, target := int64(1), int64(2)
		if i%2 == 0 {
			liker, target = 2, 1
		}

		wg.Add(1)
		go func(liker, target int64) {
			defer wg.Done()
			out, err := svc.ProcessLike(ctx, liker, target)
			if err != nil {
				results <- false
				return
			}
			results <- out.Matched
		}(liker, target)
	}

	wg.Wait()
	close(results)

	winners := 0
	for matched := range results {
		if matched {
			winners++
		}
	}

	assert.Equal(t, 1, winners, "exactly one resolution may create the match")
	assert.Len(t, repo.matches, 1)
	assert.Len(t, notifier.matched, 1, "only the winner notifies")
}

func TestCountLikesReceived(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := NewService(repo, nil, nil, 24*time.Hour)

	require.NoError(t, svc.RecordReaction(ctx, 1, 5, true))
	require.NoError(t, svc.RecordReaction(ctx, 2, 5, true))
	require.NoError(t, svc.RecordReaction(ctx, 2, 5, true)) // duplicate liker
	require.NoError(t, svc.RecordReaction(ctx, 3, 5, false))

	count, err := svc.CountLikesReceived(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
