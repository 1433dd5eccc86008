package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeniorityLevel_Valid(t *testing.T) {
	for _, s := range SeniorityLevels {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range []SeniorityLevel{"staff", "Senior", ""} {
		assert.False(t, s.Valid(), s)
	}
}

func TestPatternFilter_EffectiveLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: MaxPatternQueryLimit},
		{limit: -3, want: MaxPatternQueryLimit},
		{limit: 1, want: 1},
		{limit: 20, want: 20},
		{limit: 100, want: 100},
		{limit: 500, want: MaxPatternQueryLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PatternFilter{Limit: tt.limit}.EffectiveLimit(), "limit %d", tt.limit)
	}
}

func TestPatternRecord_HasFeedback(t *testing.T) {
	p := PatternRecord{}
	assert.False(t, p.HasFeedback())
	p.Feedback = &Feedback{SuccessRating: 8}
	assert.True(t, p.HasFeedback())
}
