package presentationdomain

import (
	"errors"

	sharedtypes "github.com/Black-And-White-Club/elo-bot/app/shared/types"
)

// Errors every Platform implementation maps its failures onto.
var (
	ErrNotFound         = errors.New("platform resource not found")
	ErrPermissionDenied = errors.New("platform permission denied")
	ErrRateLimited      = errors.New("platform rate limited")
)

// Guild is a community the bot belongs to.
type Guild struct {
	ID      sharedtypes.GuildID
	Name    string
	OwnerID sharedtypes.DiscordID
}

// Role is a guild role.
type Role struct {
	ID   sharedtypes.RoleID
	Name string
}

// RoleSpec describes a role to create.
type RoleSpec struct {
	Name        string
	Color       int
	Hoist       bool
	Mentionable bool
}

// Member is a user's state inside one guild.
type Member struct {
	UserID sharedtypes.DiscordID
	Nick   string
	Roles  []sharedtypes.RoleID
}

// MemberEdit replaces a member's nickname and role list in one call.
// An empty Nick resets the nickname.
type MemberEdit struct {
	Nick  string
	Roles []sharedtypes.RoleID
}
