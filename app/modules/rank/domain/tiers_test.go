package rankdomain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForElo_Boundaries(t *testing.T) {
	catalog := DefaultCatalog()

	boundaries := []struct {
		lower int
		tier  int
	}{
		{801, 2}, {951, 3}, {1101, 4}, {1251, 5}, {1401, 6},
		{1551, 7}, {1701, 8}, {1851, 9}, {2001, 10},
	}

	for _, b := range boundaries {
		t.Run(fmt.Sprintf("tier %d", b.tier), func(t *testing.T) {
			assert.Equal(t, b.tier, catalog.TierForElo(b.lower), "lower bound")
			assert.Equal(t, b.tier-1, catalog.TierForElo(b.lower-1), "one below lower bound")
		})
	}
}

func TestTierForElo_Extremes(t *testing.T) {
	catalog := DefaultCatalog()

	assert.Equal(t, 1, catalog.TierForElo(0))
	assert.Equal(t, 1, catalog.TierForElo(-50))
	assert.Equal(t, 10, catalog.TierForElo(4200))
}

func TestCatalogLabels(t *testing.T) {
	catalog := DefaultCatalog()
	tiers := catalog.Tiers()
	require.Len(t, tiers, 10)

	want := []string{
		"Level 1 (1-800 ELO)",
		"Level 2 (801-950 ELO)",
		"Level 3 (951-1100 ELO)",
		"Level 4 (1101-1250 ELO)",
		"Level 5 (1251-1400 ELO)",
		"Level 6 (1401-1550 ELO)",
		"Level 7 (1551-1700 ELO)",
		"Level 8 (1701-1850 ELO)",
		"Level 9 (1851-2000 ELO)",
		"Level 10 (2001+ ELO)",
	}
	for i, tier := range tiers {
		assert.Equal(t, i+1, tier.Index)
		assert.Equal(t, want[i], tier.Label)
		assert.True(t, catalog.IsTierLabel(tier.Label))
	}

	assert.False(t, catalog.IsTierLabel("Level 11 (3000+ ELO)"))
	assert.False(t, catalog.IsTierLabel("level 1 (1-800 elo)"))
}

func TestByIndex(t *testing.T) {
	catalog := DefaultCatalog()

	tier, ok := catalog.ByIndex(10)
	require.True(t, ok)
	assert.Equal(t, 0xE80128, tier.Color)

	_, ok = catalog.ByIndex(0)
	assert.False(t, ok)
	_, ok = catalog.ByIndex(11)
	assert.False(t, ok)
}

func TestTiersReturnsCopy(t *testing.T) {
	catalog := DefaultCatalog()
	tiers := catalog.Tiers()
	tiers[0].Label = "mutated"

	first, _ := catalog.ByIndex(1)
	assert.Equal(t, "Level 1 (1-800 ELO)", first.Label)
}

func TestRankSnapshotEligible(t *testing.T) {
	elo, tier := 1200, 4

	assert.False(t, (*RankSnapshot)(nil).Eligible())
	assert.False(t, (&RankSnapshot{}).Eligible())
	assert.False(t, (&RankSnapshot{Elo: &elo}).Eligible())
	assert.True(t, (&RankSnapshot{Elo: &elo, Tier: &tier}).Eligible())
}
