package presentationdomain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	rankdomain "github.com/Black-And-White-Club/elo-bot/app/modules/rank/domain"
	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// MaxNicknameLength is Discord's nickname limit in characters.
const MaxNicknameLength = 32

var nicknamePattern = regexp.MustCompile(`\(\d+ ELO\)\s+([A-Za-z0-9-_]+)`)

// Desired is the presentation a member should have in a guild.
// An empty TierLabel means no tier role at all.
type Desired struct {
	Nickname  string
	TierLabel string
}

// Cleared is the presentation of an unlinked member.
var Cleared = Desired{}

// DesiredFor computes the presentation for a snapshot. It reports false for
// ineligible snapshots, which must be left untouched.
func DesiredFor(snapshot *rankdomain.RankSnapshot, catalog *rankdomain.TierCatalog) (Desired, bool) {
	if !snapshot.Eligible() {
		return Desired{}, false
	}
	tier, ok := catalog.ByIndex(*snapshot.Tier)
	if !ok {
		return Desired{}, false
	}
	return Desired{
		Nickname:  FormatNickname(*snapshot.Elo, snapshot.Nickname),
		TierLabel: tier.Label,
	}, true
}

// FormatNickname renders "(<elo> ELO) <name>" cut to MaxNicknameLength runes.
func FormatNickname(elo int, name string) string {
	nick := fmt.Sprintf("(%d ELO) %s", elo, name)
	runes := []rune(nick)
	if len(runes) > MaxNicknameLength {
		return string(runes[:MaxNicknameLength])
	}
	return nick
}

// ParseNickname recovers the FACEIT name from a nickname the bot wrote earlier.
// matched reports whether the Elo prefix was found at all. ok additionally
// requires the capture to end the nickname, otherwise the name was truncated
// or mangled.
func ParseNickname(nick string) (name string, matched, ok bool) {
	m := nicknamePattern.FindStringSubmatch(nick)
	if m == nil {
		return "", false, false
	}
	return m[1], true, strings.HasSuffix(nick, m[1])
}

// PlanRoles keeps every non-tier role, drops tier roles other than desired and
// adds desired when it is missing. An empty desired strips all tier roles.
func PlanRoles(current []sharedtypes.RoleID, desired sharedtypes.RoleID, roles *RoleMap) (next, removed, added []sharedtypes.RoleID) {
	hasDesired := false
	for _, id := range current {
		switch {
		case desired != "" && id == desired:
			if !hasDesired {
				next = append(next, id)
				hasDesired = true
			}
		case roles.IsTierRole(id):
			removed = append(removed, id)
		default:
			next = append(next, id)
		}
	}
	if desired != "" && !hasDesired {
		next = append(next, desired)
		added = append(added, desired)
	}
	return next, removed, added
}

// SameRoles compares role sets ignoring order.
func SameRoles(a, b []sharedtypes.RoleID) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
