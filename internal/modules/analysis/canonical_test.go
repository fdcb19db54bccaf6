package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeMapsAliases(t *testing.T) {
	canonicalizer := NewCanonicalizer(map[string]string{
		"GOOG":  "GOOGL",
		"BRK.B": "BRK.A",
	})

	assert.Equal(t, "GOOGL", canonicalizer.Canonicalize("GOOG"))
	assert.Equal(t, "BRK.A", canonicalizer.Canonicalize("BRK.B"))
}

func TestCanonicalizeIsCaseInsensitive(t *testing.T) {
	canonicalizer := NewCanonicalizer(map[string]string{"GOOG": "GOOGL"})

	assert.Equal(t, "GOOGL", canonicalizer.Canonicalize("goog"))
	assert.Equal(t, "GOOGL", canonicalizer.Canonicalize(" Goog "))
}

func TestCanonicalizePreservesUnmappedInput(t *testing.T) {
	canonicalizer := NewCanonicalizer(map[string]string{"GOOG": "GOOGL"})

	assert.Equal(t, "AAPL", canonicalizer.Canonicalize("AAPL"), "Unmapped tickers pass through unchanged")
	assert.Equal(t, "aapl", canonicalizer.Canonicalize("aapl"), "Display case is preserved for unmapped tickers")
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	canonicalizer := NewCanonicalizer(map[string]string{
		"GOOG":  "GOOGL",
		"BRK.B": "BRK.A",
		"GOOGL": "GOOGL", // identity row — canonical maps to itself
	})

	for _, ticker := range []string{"GOOG", "GOOGL", "BRK.B", "BRK.A", "AAPL", "goog"} {
		once := canonicalizer.Canonicalize(ticker)
		twice := canonicalizer.Canonicalize(once)
		assert.Equal(t, once, twice, "Canonicalizing %q twice should equal canonicalizing once", ticker)
	}
}

func TestCanonicalizerDropsSelfAndBlankMappings(t *testing.T) {
	canonicalizer := NewCanonicalizer(map[string]string{
		"GOOGL": "googl", // self-mapping after normalization
		"":      "X",
		"Y":     "",
		"GOOG":  "GOOGL",
	})

	assert.Equal(t, 1, canonicalizer.Size(), "Only the real alias should remain")
	assert.Equal(t, "GOOGL", canonicalizer.Canonicalize("GOOG"))
}

func TestCanonicalizerEmptyTable(t *testing.T) {
	canonicalizer := NewCanonicalizer(nil)

	assert.Equal(t, "AAPL", canonicalizer.Canonicalize("AAPL"), "Empty table means every ticker is self-canonical")
}
