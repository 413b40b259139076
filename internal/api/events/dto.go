package events

import (
	"time"

	"guildhall/internal/domain/events"
)

// EventPayload is the `event` object of create/update requests.
// StartTime travels as unix seconds, mirroring the front end's contract.
type EventPayload struct {
	Name             string         `json:"name"`
	OwnerID          uint           `json:"owner_id"`
	EventableType    string         `json:"eventable_type"`
	EventableID      uint           `json:"eventable_id"`
	EventType        string         `json:"event_type"`
	HoursBeforeClose int            `json:"hours_before_close"`
	Description      string         `json:"description"`
	StartTime        int64          `json:"start_time"`
	DungeonID        uint           `json:"dungeon_id"`
	Repeat           int            `json:"repeat"`
	RepeatDays       int            `json:"repeat_days"`
	GroupRoles       map[string]int `json:"group_roles"`
}

type EventRequest struct {
	Event EventPayload `json:"event" binding:"required"`
}

// EventUpdatePayload uses pointers so updates can tell an omitted field
// (nil, keep the stored value) from an explicit zero. `hours_before_close: 0`
// is a valid window and must stick; `description: ""` clears.
type EventUpdatePayload struct {
	Name             *string        `json:"name"`
	EventableType    *string        `json:"eventable_type"`
	EventableID      *uint          `json:"eventable_id"`
	EventType        *string        `json:"event_type"`
	HoursBeforeClose *int           `json:"hours_before_close"`
	Description      *string        `json:"description"`
	StartTime        *int64         `json:"start_time"`
	DungeonID        *uint          `json:"dungeon_id"`
	GroupRoles       map[string]int `json:"group_roles"`
}

type EventUpdateRequest struct {
	Event EventUpdatePayload `json:"event" binding:"required"`
}

type EventDTO struct {
	ID               uint           `json:"id"`
	Slug             string         `json:"slug"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	EventType        string         `json:"event_type"`
	EventableType    string         `json:"eventable_type"`
	EventableID      uint           `json:"eventable_id"`
	FractionID       uint           `json:"fraction_id"`
	OwnerID          uint           `json:"owner_id"`
	DungeonID        *uint          `json:"dungeon_id"`
	StartTime        int64          `json:"start_time"`
	HoursBeforeClose int            `json:"hours_before_close"`
	GroupRoles       map[string]int `json:"group_roles,omitempty"`
}

// OccurrenceDTO reports the outcome of one occurrence of a recurring
// creation, so callers can tell "all succeeded" from "some skipped".
type OccurrenceDTO struct {
	StartTime int64    `json:"start_time"`
	Created   bool     `json:"created"`
	EventID   uint     `json:"event_id,omitempty"`
	Slug      string   `json:"slug,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

func toEventDTO(ev *events.Event, gr *events.GroupRole) EventDTO {
	dto := EventDTO{
		ID:               ev.ID,
		Slug:             ev.Slug,
		Name:             ev.Name,
		Description:      ev.Description,
		EventType:        ev.EventType,
		EventableType:    ev.EventableType,
		EventableID:      ev.EventableID,
		FractionID:       ev.FractionID,
		OwnerID:          ev.OwnerID,
		DungeonID:        ev.DungeonID,
		StartTime:        ev.StartTime.Unix(),
		HoursBeforeClose: ev.HoursBeforeClose,
	}
	if gr != nil {
		dto.GroupRoles = gr.Slots
	}
	return dto
}

func unixTime(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}
