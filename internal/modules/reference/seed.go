package reference

// Seed tables applied on first run, when reference.db is empty. They cover
// the common US large caps and the dual-class pairs we know about; the
// upstream refresh or the curation API replaces them with the real tables.

// seedAliases maps secondary share classes and cross-listings to the symbol
// used for aggregation. The list is curated by hand.
// TODO: source the dual-class list from the upstream reference service once
// it exposes one (it currently only serves sectors and constituents).
var seedAliases = map[string]string{
	"GOOG":  "GOOGL", // Alphabet class C -> class A
	"BRK.B": "BRK.A", // Berkshire class B -> class A
	"FOX":   "FOXA",  // Fox class B -> class A
	"NWS":   "NWSA",  // News Corp class B -> class A
	"UA":    "UAA",   // Under Armour class C -> class A
	"LEN.B": "LEN",   // Lennar class B -> class A
}

// seedSectors is a minimal classification so a fresh install produces
// something better than "Other" for every row.
var seedSectors = map[string]string{
	"AAPL":  "Technology",
	"MSFT":  "Technology",
	"NVDA":  "Technology",
	"GOOGL": "Communication Services",
	"GOOG":  "Communication Services",
	"META":  "Communication Services",
	"AMZN":  "Consumer Discretionary",
	"TSLA":  "Consumer Discretionary",
	"BRK.A": "Financials",
	"BRK.B": "Financials",
	"JPM":   "Financials",
	"V":     "Financials",
	"JNJ":   "Health Care",
	"UNH":   "Health Care",
	"LLY":   "Health Care",
	"XOM":   "Energy",
	"CVX":   "Energy",
	"PG":    "Consumer Staples",
	"KO":    "Consumer Staples",
	"LIN":   "Materials",
	"CAT":   "Industrials",
	"UNP":   "Industrials",
	"NEE":   "Utilities",
	"PLD":   "Real Estate",
}
