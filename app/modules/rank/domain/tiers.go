package rankdomain

import "fmt"

// Tier is one of the ten ordered Elo bands.
type Tier struct {
	Index  int
	Label  string
	Color  int
	MinElo int
	// MaxElo is zero for the open-ended top tier.
	MaxElo int
}

// TierCatalog is the ordered, immutable tier table.
type TierCatalog struct {
	tiers  []Tier
	labels map[string]int
}

var defaultCatalog = newTierCatalog([]Tier{
	{Index: 1, MinElo: 1, MaxElo: 800, Color: 0xDDDDDD},
	{Index: 2, MinElo: 801, MaxElo: 950, Color: 0x47E36E},
	{Index: 3, MinElo: 951, MaxElo: 1100, Color: 0x47E36E},
	{Index: 4, MinElo: 1101, MaxElo: 1250, Color: 0xFFCD25},
	{Index: 5, MinElo: 1251, MaxElo: 1400, Color: 0xFFCD25},
	{Index: 6, MinElo: 1401, MaxElo: 1550, Color: 0xFFCD25},
	{Index: 7, MinElo: 1551, MaxElo: 1700, Color: 0xFFCD25},
	{Index: 8, MinElo: 1701, MaxElo: 1850, Color: 0xFF6C20},
	{Index: 9, MinElo: 1851, MaxElo: 2000, Color: 0xFF6C20},
	{Index: 10, MinElo: 2001, Color: 0xE80128},
})

func newTierCatalog(tiers []Tier) *TierCatalog {
	c := &TierCatalog{tiers: tiers, labels: make(map[string]int, len(tiers))}
	for i := range c.tiers {
		t := &c.tiers[i]
		if t.MaxElo == 0 {
			t.Label = fmt.Sprintf("Level %d (%d+ ELO)", t.Index, t.MinElo)
		} else {
			t.Label = fmt.Sprintf("Level %d (%d-%d ELO)", t.Index, t.MinElo, t.MaxElo)
		}
		c.labels[t.Label] = t.Index
	}
	return c
}

// DefaultCatalog returns the process-wide tier table.
func DefaultCatalog() *TierCatalog {
	return defaultCatalog
}

// Tiers returns the tiers in ascending order.
func (c *TierCatalog) Tiers() []Tier {
	out := make([]Tier, len(c.tiers))
	copy(out, c.tiers)
	return out
}

// ByIndex looks up a tier by its 1-based index.
func (c *TierCatalog) ByIndex(index int) (Tier, bool) {
	if index < 1 || index > len(c.tiers) {
		return Tier{}, false
	}
	return c.tiers[index-1], true
}

// IsTierLabel reports whether name is exactly one of the tier labels.
func (c *TierCatalog) IsTierLabel(name string) bool {
	_, ok := c.labels[name]
	return ok
}

// TierForElo maps an Elo score onto its tier. Scores below the first band
// fall into tier 1.
func (c *TierCatalog) TierForElo(elo int) int {
	for i := len(c.tiers) - 1; i >= 0; i-- {
		if elo >= c.tiers[i].MinElo {
			return c.tiers[i].Index
		}
	}
	return c.tiers[0].Index
}
