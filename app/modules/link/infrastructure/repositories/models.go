package linkdb

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// LinkedAccount associates a Discord user with a FACEIT player.
// The primary key on discord_id is what guarantees one link per user.
type LinkedAccount struct {
	bun.BaseModel `bun:"table:linked_accounts,alias:la"`

	DiscordID sharedtypes.DiscordID `bun:"discord_id,pk,type:varchar(32)"`
	FaceitID  sharedtypes.FaceitID  `bun:"faceit_id,notnull,type:varchar(64)"`
	CreatedAt time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
