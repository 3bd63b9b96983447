package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsDateOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsDateOverdue(now.Add(-time.Second), now))
	assert.False(t, IsDateOverdue(now, now))
	assert.False(t, IsDateOverdue(now.Add(time.Second), now))
}

func TestCapacityRatio(t *testing.T) {
	tests := []struct {
		name        string
		installment string
		balance     string
		expected    string
	}{
		{"simple ratio", "348.34", "1000", "0.3483"},
		{"rounds to four places", "1", "3", "0.3333"},
		{"over one", "700", "500", "1.4"},
		{"zero balance", "100", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio := CapacityRatio(decimal.RequireFromString(tt.installment), decimal.RequireFromString(tt.balance))
			assert.True(t, ratio.Equal(decimal.RequireFromString(tt.expected)), "got %s", ratio)
		})
	}
}
