package guilds

import (
	"time"

	"guildhall/internal/domain/game"
)

type Guild struct {
	ID      uint       `gorm:"primaryKey" json:"id"`
	Name    string     `gorm:"not null;index" json:"name"`
	WorldID uint       `gorm:"not null;index" json:"world_id"`
	World   game.World `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Leadership ranks inside a guild. Holding any of them grants elevated
// event visibility and edit/delete rights.
const (
	RoleGuildMaster = "gm"
	RoleRaidLeader  = "rl"
	RoleClassLeader = "cl"
)

// GuildRole assigns a rank to one of the guild's characters.
type GuildRole struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	GuildID     uint   `gorm:"not null;index:idx_guild_roles_guild" json:"guild_id"`
	CharacterID uint   `gorm:"not null;index:idx_guild_roles_character" json:"character_id"`
	Name        string `gorm:"type:varchar(8);not null" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	InviteStatusPending  = 0
	InviteStatusDeclined = 1
)

// GuildInvite links a guild and a guildless character. FromGuild records
// which side initiated, which flips who is allowed to approve.
type GuildInvite struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	GuildID     uint  `gorm:"not null;index" json:"guild_id"`
	Guild       Guild `json:"-"`
	CharacterID uint  `gorm:"not null;index" json:"character_id"`
	FromGuild   bool  `gorm:"not null;default:false" json:"from_guild"`
	Status      int   `gorm:"not null;default:0" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
