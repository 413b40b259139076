package events

import (
	"errors"
	"fmt"

	"guildhall/internal/domain/game"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/statics"

	"gorm.io/gorm"
)

// ErrUnknownEventable is returned for a type string outside {World, Guild, Static}.
var ErrUnknownEventable = errors.New("unknown eventable type")

// Eventable is the resolved polymorphic scope of an event: exactly one of
// the three variants is set, matching Type.
type Eventable struct {
	Type   string
	World  *game.World
	Guild  *guilds.Guild
	Static *statics.Static
}

// ResolveEventable loads the record behind a (type, id) pair. A missing
// record resolves to (nil, nil) so callers can distinguish "absent" from
// query failure.
func ResolveEventable(db *gorm.DB, eventableType string, eventableID uint) (*Eventable, error) {
	switch eventableType {
	case EventableWorld:
		var w game.World
		if err := db.First(&w, eventableID).Error; err != nil {
			return nil, ignoreNotFound(err)
		}
		return &Eventable{Type: EventableWorld, World: &w}, nil
	case EventableGuild:
		var g guilds.Guild
		if err := db.First(&g, eventableID).Error; err != nil {
			return nil, ignoreNotFound(err)
		}
		return &Eventable{Type: EventableGuild, Guild: &g}, nil
	case EventableStatic:
		var s statics.Static
		if err := db.First(&s, eventableID).Error; err != nil {
			return nil, ignoreNotFound(err)
		}
		return &Eventable{Type: EventableStatic, Static: &s}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventable, eventableType)
	}
}

// ScopingGuildID returns the guild that scopes the event: the guild itself
// for guild events, the owning guild for guild-owned statics, 0 otherwise.
func ScopingGuildID(db *gorm.DB, ev *Event) (uint, error) {
	switch ev.EventableType {
	case EventableGuild:
		return ev.EventableID, nil
	case EventableStatic:
		var s statics.Static
		if err := db.First(&s, ev.EventableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil
			}
			return 0, err
		}
		if s.StaticableType == statics.StaticableGuild {
			return s.StaticableID, nil
		}
		return 0, nil
	default:
		return 0, nil
	}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
