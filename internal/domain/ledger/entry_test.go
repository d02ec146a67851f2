package ledger

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currency-swap-engine/internal/domain/shared"
)

func TestNewSwapReference(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	reference := NewSwapReference(now)

	pattern := regexp.MustCompile(`^SWAP_\d+_[0-9a-f]{8}$`)
	assert.True(t, pattern.MatchString(reference), "unexpected format: %s", reference)

	parts := strings.Split(reference, "_")
	require.Len(t, parts, 3)
	millis, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), millis)
}

func TestNewSwapReference_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewSwapReference(now)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestLegExternalID(t *testing.T) {
	assert.Equal(t, "SWAP_1_abc_OUT", LegExternalID("SWAP_1_abc", shared.SwapLegOut))
	assert.Equal(t, "SWAP_1_abc_IN", LegExternalID("SWAP_1_abc", shared.SwapLegIn))
}
