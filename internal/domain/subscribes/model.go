package subscribes

import (
	"time"

	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/events"

	"gorm.io/gorm"
)

// Signup statuses. Approved and signed together form the "signed set" the
// roster counts as committed.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusSigned   = "signed"
	StatusDeclined = "declined"
)

// SignedStatuses is the set of statuses counted as committed attendance.
var SignedStatuses = []string{StatusApproved, StatusSigned}

// Subscribe links a character to an event it signed up for.
type Subscribe struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	EventID     uint                 `gorm:"not null;index:idx_subscribes_pair" json:"event_id"`
	Event       events.Event         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CharacterID uint                 `gorm:"not null;index:idx_subscribes_pair" json:"character_id"`
	Character   characters.Character `json:"-"`
	Status      string               `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	Comment     string               `gorm:"not null;default:''" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateForOwner bootstraps the owner's own signup when an event is created.
// The owner is committed by definition, so the row starts approved.
func CreateForOwner(db *gorm.DB, ev *events.Event) (*Subscribe, error) {
	sub := Subscribe{
		EventID:     ev.ID,
		CharacterID: ev.OwnerID,
		Status:      StatusApproved,
	}
	if err := db.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// SignedCount counts committed signups for the event.
func SignedCount(db *gorm.DB, eventID uint) (int64, error) {
	var n int64
	err := db.Model(&Subscribe{}).
		Where("event_id = ? AND status IN ?", eventID, SignedStatuses).
		Count(&n).Error
	return n, err
}
