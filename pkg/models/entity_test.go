package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		expected   EntityStatus
	}{
		{name: "zero confidence", confidence: 0.0, expected: StatusSuggested},
		{name: "just below review threshold", confidence: 0.59, expected: StatusSuggested},
		{name: "exactly review threshold", confidence: 0.60, expected: StatusNeedsReview},
		{name: "between thresholds", confidence: 0.75, expected: StatusNeedsReview},
		{name: "just below confirmed threshold", confidence: 0.84, expected: StatusNeedsReview},
		{name: "exactly confirmed threshold", confidence: 0.85, expected: StatusConfirmed},
		{name: "full confidence", confidence: 1.0, expected: StatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusForConfidence(tt.confidence))
		})
	}
}

func TestStatusForConfidence_NeverReturnsPinned(t *testing.T) {
	for c := 0.0; c <= 1.0; c += 0.05 {
		assert.NotEqual(t, StatusPinned, StatusForConfidence(c))
	}
}

func TestEntityType_IsValid(t *testing.T) {
	for _, et := range EntityTypes {
		assert.True(t, et.IsValid(), "expected %q to be valid", et)
	}

	assert.False(t, EntityType("customer").IsValid())
	assert.False(t, EntityType("").IsValid())
}

func TestEntityStatus_IsValid(t *testing.T) {
	for _, s := range []EntityStatus{StatusSuggested, StatusNeedsReview, StatusConfirmed, StatusPinned} {
		assert.True(t, s.IsValid())
	}

	assert.False(t, EntityStatus("archived").IsValid())
}

func TestDisplayNameFromData(t *testing.T) {
	assert.Equal(t, "Acme", DisplayNameFromData(map[string]any{"name": "Acme"}))
	assert.Equal(t, "", DisplayNameFromData(map[string]any{"title": "Acme"}))
	assert.Equal(t, "", DisplayNameFromData(map[string]any{"name": 42}))
	assert.Equal(t, "", DisplayNameFromData(nil))
}

func TestMergeData_TopLevelOnly(t *testing.T) {
	existing := map[string]any{
		"name":    "Acme",
		"pricing": map[string]any{"tier": "free", "seats": 5},
		"stage":   "seed",
	}
	patch := map[string]any{
		"pricing": map[string]any{"tier": "pro"},
		"website": "https://acme.test",
	}

	merged := MergeData(existing, patch)

	assert.Equal(t, "Acme", merged["name"])
	assert.Equal(t, "seed", merged["stage"])
	assert.Equal(t, "https://acme.test", merged["website"])

	// Nested maps are replaced wholesale, not merged recursively.
	pricing, ok := merged["pricing"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "pro", pricing["tier"])
	_, hasSeats := pricing["seats"]
	assert.False(t, hasSeats)
}

func TestMergeData_DoesNotMutateInputs(t *testing.T) {
	existing := map[string]any{"name": "Acme"}
	patch := map[string]any{"name": "Acme Corp"}

	merged := MergeData(existing, patch)

	assert.Equal(t, "Acme Corp", merged["name"])
	assert.Equal(t, "Acme", existing["name"])
	assert.Equal(t, "Acme Corp", patch["name"])
}

func TestEntity_Snapshot(t *testing.T) {
	e := &Entity{
		Type:       EntityTypeCompetitor,
		Data:       map[string]any{"name": "Rival"},
		Confidence: 0.7,
		Status:     StatusNeedsReview,
	}

	snap := e.Snapshot()

	assert.Equal(t, EntityTypeCompetitor, snap.Type)
	assert.Equal(t, e.Data, snap.Data)
	assert.Equal(t, 0.7, snap.Confidence)
}
