package events

import (
	"time"

	"gorm.io/gorm"
)

// GroupRole is the role-slot template attached to an event: how many tanks,
// healers and damage dealers the owner wants to fill.
type GroupRole struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GroupableType string `gorm:"type:varchar(16);not null;index:idx_group_roles_groupable" json:"groupable_type"`
	GroupableID   uint   `gorm:"not null;index:idx_group_roles_groupable" json:"groupable_id"`

	Slots map[string]int `gorm:"serializer:json;not null" json:"slots"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const groupableEvent = "Event"

// DefaultSlots is the template offered in the event form.
func DefaultSlots() map[string]int {
	return map[string]int{"tank": 2, "healer": 5, "dd": 13}
}

// CreateGroupRole instantiates the role-slot template for a freshly created
// event. Nil or empty slots fall back to the default template.
func CreateGroupRole(db *gorm.DB, ev *Event, slots map[string]int) (*GroupRole, error) {
	if len(slots) == 0 {
		slots = DefaultSlots()
	}
	gr := GroupRole{
		GroupableType: groupableEvent,
		GroupableID:   ev.ID,
		Slots:         slots,
	}
	if err := db.Create(&gr).Error; err != nil {
		return nil, err
	}
	return &gr, nil
}

// UpdateGroupRole replaces the slot counts of an existing template IN PLACE.
// The row ID must survive the update since external references point at it,
// which is why this is not destroy-then-recreate (contrast with
// characters.ReplaceRoles).
func UpdateGroupRole(db *gorm.DB, gr *GroupRole, slots map[string]int) error {
	if len(slots) == 0 {
		return nil
	}
	gr.Slots = slots
	return db.Model(gr).Update("slots", gr.Slots).Error
}

// GroupRoleOf loads the event's template, nil when absent.
func GroupRoleOf(db *gorm.DB, eventID uint) (*GroupRole, error) {
	var gr GroupRole
	err := db.Where("groupable_type = ? AND groupable_id = ?", groupableEvent, eventID).
		First(&gr).Error
	if err != nil {
		return nil, ignoreNotFound(err)
	}
	return &gr, nil
}
