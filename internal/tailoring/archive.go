package tailoring

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/portfolio-backoffice/internal/apperrors"
	"github.com/jonathan/portfolio-backoffice/internal/types"
)

// PatternArchive stores tailoring results and their later feedback.
type PatternArchive interface {
	Append(ctx context.Context, p types.NewPattern) (uuid.UUID, error)
	RecordFeedback(ctx context.Context, id uuid.UUID, fb types.Feedback) error
	Query(ctx context.Context, filter types.PatternFilter) ([]types.PatternRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*types.PatternRecord, error)
}

// MemoryArchive is a process-local PatternArchive.
type MemoryArchive struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*types.PatternRecord
	order   []uuid.UUID
	now     func() time.Time
}

// NewMemoryArchive returns an empty archive using the wall clock.
func NewMemoryArchive() *MemoryArchive {
	return NewMemoryArchiveWithClock(time.Now)
}

// NewMemoryArchiveWithClock returns an empty archive stamped by now.
func NewMemoryArchiveWithClock(now func() time.Time) *MemoryArchive {
	return &MemoryArchive{
		records: make(map[uuid.UUID]*types.PatternRecord),
		now:     now,
	}
}

// Append stores a new pattern and returns its identifier.
func (m *MemoryArchive) Append(ctx context.Context, p types.NewPattern) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New()
	m.records[id] = &types.PatternRecord{
		ID:              id,
		JobAnalysis:     p.JobAnalysis,
		TailoredContent: p.TailoredContent,
		TargetCompany:   p.TargetCompany,
		TargetRole:      p.TargetRole,
		CreatedAt:       m.now().UTC(),
	}
	m.order = append(m.order, id)
	return id, nil
}

// RecordFeedback attaches feedback to a pattern. Feedback is written once.
func (m *MemoryArchive) RecordFeedback(ctx context.Context, id uuid.UUID, fb types.Feedback) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("pattern %s: %w", id, apperrors.ErrNotFound)
	}
	if rec.HasFeedback() {
		return fmt.Errorf("pattern %s already has feedback: %w", id, apperrors.ErrConflict)
	}

	at := m.now().UTC()
	fb.FeedbackAt = &at
	rec.Feedback = &fb
	return nil
}

// Query returns matching patterns, newest first.
func (m *MemoryArchive) Query(ctx context.Context, filter types.PatternFilter) ([]types.PatternRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	company := strings.ToLower(filter.Company)
	role := strings.ToLower(filter.Role)

	matched := make([]types.PatternRecord, 0)
	// Walk insertion order backwards so equal timestamps stay newest first.
	for i := len(m.order) - 1; i >= 0; i-- {
		rec := m.records[m.order[i]]
		if company != "" && !strings.Contains(strings.ToLower(rec.TargetCompany), company) {
			continue
		}
		if role != "" && !strings.Contains(strings.ToLower(rec.TargetRole), role) {
			continue
		}
		if filter.MinRating > 0 && (rec.Feedback == nil || rec.Feedback.SuccessRating < filter.MinRating) {
			continue
		}
		matched = append(matched, clonePattern(rec))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if limit := filter.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Get returns one pattern by identifier.
func (m *MemoryArchive) Get(ctx context.Context, id uuid.UUID) (*types.PatternRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("pattern %s: %w", id, apperrors.ErrNotFound)
	}
	out := clonePattern(rec)
	return &out, nil
}

// Len returns the number of stored patterns.
func (m *MemoryArchive) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func clonePattern(rec *types.PatternRecord) types.PatternRecord {
	out := *rec
	if rec.Feedback != nil {
		fb := *rec.Feedback
		out.Feedback = &fb
	}
	return out
}
