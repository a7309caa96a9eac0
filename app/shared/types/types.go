package sharedtypes

// DiscordID is a Discord user snowflake.
type DiscordID string

// GuildID is a Discord guild snowflake.
type GuildID string

// RoleID is a Discord role snowflake.
type RoleID string

// FaceitID is the stable FACEIT player id.
type FaceitID string
