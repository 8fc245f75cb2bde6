// internal/matching/models_test.go

package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPair(t *testing.T) {
	tests := []struct {
		name  string
		a, b  int64
		want1 int64
		want2 int64
	}{
		{"already ordered", 1, 2, 1, 2},
		{"reversed", 9, 4, 4, 9},
		{"large ids", 1000000, 999999, 999999, 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u1, u2 := CanonicalPair(tt.a, tt.b)
			assert.Equal(t, tt.want1, u1)
			assert.Equal(t, tt.want2, u2)

			// The key must not depend on argument order
			r1, r2 := CanonicalPair(tt.b, tt.a)
			assert.Equal(t, u1, r1)
			assert.Equal(t, u2, r2)
		})
	}
}

func TestMatchOther(t *testing.T) {
	m := Match{User1ID: 3, User2ID: 8}

	assert.Equal(t, int64(8), m.Other(3))
	assert.Equal(t, int64(3), m.Other(8))
}

func TestViewerEligible(t *testing.T) {
	gender := "female"

	tests := []struct {
		name   string
		viewer Viewer
		want   bool
	}{
		{"verified with gender", Viewer{Gender: &gender, Verified: true}, true},
		{"unverified", Viewer{Gender: &gender, Verified: false}, false},
		{"banned", Viewer{Gender: &gender, Verified: true, Banned: true}, false},
		{"no gender", Viewer{Verified: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.viewer.Eligible())
		})
	}
}
