package statics

import (
	"time"

	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/game"
)

// Staticable owner kinds.
const (
	StaticableCharacter = "Character"
	StaticableGuild     = "Guild"
)

// Static is a fixed sub-group of characters, owned by a single character or
// by a guild, pinned to one world and fraction.
type Static struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;index" json:"name"`
	Description string `gorm:"not null;default:''" json:"description"`

	StaticableType string `gorm:"type:varchar(16);not null;index:idx_statics_staticable" json:"staticable_type"`
	StaticableID   uint   `gorm:"not null;index:idx_statics_staticable" json:"staticable_id"`

	WorldID    uint          `gorm:"not null;index" json:"world_id"`
	World      game.World    `json:"-"`
	FractionID uint          `gorm:"not null;index" json:"fraction_id"`
	Fraction   game.Fraction `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StaticMember struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	StaticID    uint                 `gorm:"not null;index:idx_static_members_pair" json:"static_id"`
	Static      Static               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CharacterID uint                 `gorm:"not null;index:idx_static_members_pair" json:"character_id"`
	Character   characters.Character `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
