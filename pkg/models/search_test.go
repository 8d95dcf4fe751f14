package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchFilter_ClampedLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "zero defaults to max", limit: 0, expected: MaxSearchLimit},
		{name: "negative defaults to max", limit: -5, expected: MaxSearchLimit},
		{name: "within range passes through", limit: 10, expected: 10},
		{name: "exactly max passes through", limit: MaxSearchLimit, expected: MaxSearchLimit},
		{name: "above max is clamped", limit: 1000, expected: MaxSearchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := SearchFilter{Limit: tt.limit}
			assert.Equal(t, tt.expected, f.ClampedLimit())
		})
	}
}
