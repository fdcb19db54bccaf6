package analysis

// Canonicalizer merges economically equivalent ticker symbols (dual share
// classes, secondary listings) into one canonical identifier, so they never
// appear as separate rows in exposure or overlap output.
//
// Matching is case-insensitive; tickers with no alias entry pass through
// unchanged, case preserved. Canonical tickers map to themselves or are
// absent from the table, which makes Canonicalize idempotent.
type Canonicalizer struct {
	aliases map[string]string
}

// NewCanonicalizer builds a canonicalizer from an alias -> canonical table.
// Self-mappings are dropped (identity is the default), and both sides are
// normalized so lookups are exact-match.
func NewCanonicalizer(aliasMap map[string]string) *Canonicalizer {
	aliases := make(map[string]string, len(aliasMap))
	for alias, canonical := range aliasMap {
		a := normalize(alias)
		c := normalize(canonical)
		if a == "" || c == "" || a == c {
			continue
		}
		aliases[a] = c
	}

	return &Canonicalizer{aliases: aliases}
}

// Canonicalize returns the canonical ticker for an alias, or the input
// unchanged when no alias entry exists.
func (c *Canonicalizer) Canonicalize(ticker string) string {
	if canonical, ok := c.aliases[normalize(ticker)]; ok {
		return canonical
	}
	return ticker
}

// Size returns the number of alias entries.
func (c *Canonicalizer) Size() int {
	return len(c.aliases)
}
