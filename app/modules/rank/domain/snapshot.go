package rankdomain

import sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"

// RankSnapshot is the rank data resolved for one FACEIT account at one point in time.
// Elo and Tier are nil when the account has no activity in the tracked game.
type RankSnapshot struct {
	PlayerID sharedtypes.FaceitID
	Nickname string
	Elo      *int
	Tier     *int
}

// Eligible reports whether the snapshot carries a tier.
func (s *RankSnapshot) Eligible() bool {
	return s != nil && s.Elo != nil && s.Tier != nil
}
