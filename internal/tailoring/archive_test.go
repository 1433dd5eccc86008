package tailoring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newPattern(company, role string) types.NewPattern {
	return types.NewPattern{
		JobAnalysis:     *sampleAnalysis(),
		TailoredContent: types.TailoredContent{SelectedExperiences: []string{"x"}},
		TargetCompany:   company,
		TargetRole:      role,
	}
}

func TestMemoryArchive_AppendThenQueryReturnsOnce(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryArchive()

	id, err := a.Append(ctx, newPattern("Acme Corp", "Backend Engineer"))
	require.NoError(t, err)
	_, err = a.Append(ctx, newPattern("Globex", "Backend Engineer"))
	require.NoError(t, err)

	got, err := a.Query(ctx, types.PatternFilter{Company: "acme"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
}

func TestMemoryArchive_QueryFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := NewMemoryArchiveWithClock(clock.now)

	first, _ := a.Append(ctx, newPattern("Acme", "Backend Engineer"))
	second, _ := a.Append(ctx, newPattern("Acme", "Data Engineer"))
	third, _ := a.Append(ctx, newPattern("Initech", "Backend Lead"))

	require.NoError(t, a.RecordFeedback(ctx, first, types.Feedback{SuccessRating: 8}))
	require.NoError(t, a.RecordFeedback(ctx, second, types.Feedback{SuccessRating: 4}))

	all, err := a.Query(ctx, types.PatternFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{third, second, first}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	backend, _ := a.Query(ctx, types.PatternFilter{Role: "BACKEND"})
	assert.Len(t, backend, 2)

	rated, _ := a.Query(ctx, types.PatternFilter{MinRating: 7})
	require.Len(t, rated, 1)
	assert.Equal(t, first, rated[0].ID)

	limited, _ := a.Query(ctx, types.PatternFilter{Limit: 1})
	require.Len(t, limited, 1)
	assert.Equal(t, third, limited[0].ID)
}

func TestMemoryArchive_QueryClampsLimit(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryArchive()
	for i := 0; i < types.MaxPatternQueryLimit+5; i++ {
		_, err := a.Append(ctx, newPattern("Acme", "Engineer"))
		require.NoError(t, err)
	}

	got, err := a.Query(ctx, types.PatternFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, got, types.MaxPatternQueryLimit)

	got, err = a.Query(ctx, types.PatternFilter{})
	require.NoError(t, err)
	assert.Len(t, got, types.MaxPatternQueryLimit)
}

func TestMemoryArchive_RecordFeedback(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryArchive()

	err := a.RecordFeedback(ctx, uuid.New(), types.Feedback{SuccessRating: 5})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 0, a.Len(), "missing id creates nothing")

	id, _ := a.Append(ctx, newPattern("Acme", "Engineer"))
	require.NoError(t, a.RecordFeedback(ctx, id, types.Feedback{SuccessRating: 8, UserFeedback: "ok"}))

	err = a.RecordFeedback(ctx, id, types.Feedback{SuccessRating: 2})
	assert.True(t, apperrors.IsConflict(err))

	got, err := a.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, 8, got.Feedback.SuccessRating)
	assert.NotNil(t, got.Feedback.FeedbackAt)
}

func TestMemoryArchive_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryArchive()
	id, _ := a.Append(ctx, newPattern("Acme", "Engineer"))
	require.NoError(t, a.RecordFeedback(ctx, id, types.Feedback{SuccessRating: 8}))

	got, _ := a.Get(ctx, id)
	got.Feedback.SuccessRating = 1
	got.TargetCompany = "mutated"

	again, _ := a.Get(ctx, id)
	assert.Equal(t, 8, again.Feedback.SuccessRating)
	assert.Equal(t, "Acme", again.TargetCompany)
}
