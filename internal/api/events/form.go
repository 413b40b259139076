package events

import (
	"fmt"
	"time"

	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/events"
	"guildhall/internal/domain/game"

	"gorm.io/gorm"
)

var (
	eventTypes     = []string{events.TypeInstance, events.TypeRaid, events.TypeCustom}
	eventableTypes = []string{events.EventableWorld, events.EventableGuild, events.EventableStatic}
)

// EventForm validates a candidate event before persistence. Validation
// never aborts on the first failure: all field errors are accumulated so
// the front end can render every problem at once. Not-found and forbidden
// conditions are the handler's business, not the form's.
type EventForm struct {
	ID               uint
	Owner            *characters.Character
	Dungeon          *game.Dungeon
	Name             string
	Description      string
	EventType        string
	EventableType    string
	EventableID      uint
	StartTime        time.Time
	HoursBeforeClose int
	FractionID       uint

	// Now anchors the closing-window check; zero means time.Now.
	Now time.Time

	Errors []string

	event *events.Event
}

// Event returns the persisted record after a successful Persist.
func (f *EventForm) Event() *events.Event {
	return f.event
}

// Persist derives defaults, validates, and saves. Returns false with
// accumulated Errors when validation fails; nothing is written in that case.
func (f *EventForm) Persist(db *gorm.DB) bool {
	f.applyDefaults(db)
	if !f.Validate(db) {
		return false
	}

	ev := &events.Event{}
	if f.ID != 0 {
		if err := db.First(ev, f.ID).Error; err != nil {
			f.Errors = append(f.Errors, "Event does not exist")
			return false
		}
	}

	ev.Name = f.Name
	ev.Description = f.Description
	ev.EventType = f.EventType
	ev.OwnerID = f.Owner.ID
	ev.EventableType = f.EventableType
	ev.EventableID = f.EventableID
	ev.FractionID = f.FractionID
	ev.StartTime = f.StartTime
	ev.HoursBeforeClose = f.HoursBeforeClose
	if f.Dungeon != nil {
		ev.DungeonID = &f.Dungeon.ID
	} else {
		ev.DungeonID = nil
	}

	if err := events.EnsureSlug(db, ev); err != nil {
		f.Errors = append(f.Errors, "Slug generation failed")
		return false
	}
	if err := db.Save(ev).Error; err != nil {
		f.Errors = append(f.Errors, "Event could not be saved")
		return false
	}
	f.event = ev
	return true
}

// applyDefaults fills the derived fields before validation: event type and
// name from the dungeon, eventable id from the owner's world or guild, and
// the fraction always copied from the owner's race.
func (f *EventForm) applyDefaults(db *gorm.DB) {
	if f.EventType == "" {
		switch {
		case f.Dungeon != nil && f.Dungeon.Raid:
			f.EventType = events.TypeRaid
		case f.Dungeon != nil:
			f.EventType = events.TypeInstance
		default:
			f.EventType = events.TypeCustom
		}
	}
	if f.Name == "" && f.Dungeon != nil {
		f.Name = f.Dungeon.Name
	}
	if f.Owner != nil && f.EventableType != events.EventableStatic {
		switch f.EventableType {
		case events.EventableWorld:
			f.EventableID = f.Owner.WorldID
		case events.EventableGuild:
			if f.Owner.GuildID != nil {
				f.EventableID = *f.Owner.GuildID
			} else {
				f.EventableID = 0
			}
		}
	}
	if f.Owner != nil {
		if fractionID, err := characters.FractionID(db, f.Owner); err == nil {
			f.FractionID = fractionID
		}
	}
}

// Validate runs every check and accumulates failures into Errors.
func (f *EventForm) Validate(db *gorm.DB) bool {
	f.Errors = nil

	if f.Owner == nil {
		f.Errors = append(f.Errors, "Owner must exist")
	}
	if n := len([]rune(f.Name)); n < 2 || n > 50 {
		f.Errors = append(f.Errors, "Name length must be between 2 and 50 characters")
	}
	if !contains(eventTypes, f.EventType) {
		f.Errors = append(f.Errors, "Event type is not included in the list")
	}
	if !contains(eventableTypes, f.EventableType) {
		f.Errors = append(f.Errors, "Eventable type is not included in the list")
	}
	if f.HoursBeforeClose < 0 || f.HoursBeforeClose > 24 {
		f.Errors = append(f.Errors, "Hours before close must be between 0 and 24")
	}
	if f.StartTime.IsZero() {
		f.Errors = append(f.Errors, "Start time must exist")
	} else if !f.validTime() {
		f.Errors = append(f.Errors, "Start time is in the past")
	}
	if contains(eventableTypes, f.EventableType) {
		if err := f.eventableExists(db); err != nil {
			f.Errors = append(f.Errors, err.Error())
		}
	}

	return len(f.Errors) == 0
}

// validTime rejects events already inside their closing window: creation
// and edits need now strictly before start_time - hours_before_close, so
// exact equality fails.
func (f *EventForm) validTime() bool {
	now := f.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	closeTime := f.StartTime.Add(-time.Duration(f.HoursBeforeClose) * time.Hour)
	return now.Before(closeTime)
}

func (f *EventForm) eventableExists(db *gorm.DB) error {
	target, err := events.ResolveEventable(db, f.EventableType, f.EventableID)
	if err != nil {
		return fmt.Errorf("Eventable could not be checked")
	}
	if target == nil {
		return fmt.Errorf("Eventable does not exist")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
