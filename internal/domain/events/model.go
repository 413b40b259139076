package events

import (
	"time"

	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/game"
)

// Event kinds.
const (
	TypeInstance = "instance"
	TypeRaid     = "raid"
	TypeCustom   = "custom"
)

// Eventable scope kinds.
const (
	EventableWorld  = "World"
	EventableGuild  = "Guild"
	EventableStatic = "Static"
)

// Event is a scheduled raid/instance/custom gathering. Its visibility is
// fully determined by (eventable_type, eventable_id, fraction_id) plus guild
// leadership overrides, never by direct character or user foreign keys.
type Event struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"not null;uniqueIndex:idx_events_slug" json:"slug"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"not null;default:''" json:"description"`
	EventType   string `gorm:"type:varchar(16);not null" json:"event_type"`

	OwnerID uint                 `gorm:"not null;index" json:"owner_id"`
	Owner   characters.Character `json:"-"`

	EventableType string `gorm:"type:varchar(16);not null;index:idx_events_eventable" json:"eventable_type"`
	EventableID   uint   `gorm:"not null;index:idx_events_eventable" json:"eventable_id"`

	FractionID uint          `gorm:"not null;index" json:"fraction_id"`
	Fraction   game.Fraction `json:"-"`

	DungeonID *uint         `gorm:"index" json:"dungeon_id"`
	Dungeon   *game.Dungeon `json:"-"`

	StartTime        time.Time `gorm:"not null;index" json:"start_time"`
	HoursBeforeClose int       `gorm:"not null;default:0" json:"hours_before_close"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CloseTime is the moment signups close and edits are no longer allowed.
func (e *Event) CloseTime() time.Time {
	return e.StartTime.Add(-time.Duration(e.HoursBeforeClose) * time.Hour)
}
