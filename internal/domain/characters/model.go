package characters

import (
	"time"

	"guildhall/internal/domain/game"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/users"

	"gorm.io/gorm"
)

type Character struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"not null;index" json:"name"`
	Level int    `gorm:"not null;default:60" json:"level"`

	UserID  uint          `gorm:"not null;index" json:"user_id"`
	User    users.User    `json:"-"`
	RaceID  uint          `gorm:"not null;index" json:"race_id"`
	Race    game.Race     `json:"-"`
	WorldID uint          `gorm:"not null;index" json:"world_id"`
	World   game.World    `json:"-"`
	GuildID *uint         `gorm:"index" json:"guild_id"`
	Guild   *guilds.Guild `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CharacterRole links a character to a combat role. Main marks the role the
// character queues as by default; the rest are secondary.
type CharacterRole struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CharacterID uint      `gorm:"not null;index" json:"character_id"`
	RoleID      uint      `gorm:"not null;index" json:"role_id"`
	Role        game.Role `json:"-"`
	Main        bool      `gorm:"not null;default:false" json:"main"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FractionID resolves the character's fraction through its race, using the
// preloaded association when present.
func FractionID(db *gorm.DB, ch *Character) (uint, error) {
	if ch.Race.ID == ch.RaceID && ch.Race.FractionID != 0 {
		return ch.Race.FractionID, nil
	}
	var race game.Race
	if err := db.First(&race, ch.RaceID).Error; err != nil {
		return 0, err
	}
	return race.FractionID, nil
}
