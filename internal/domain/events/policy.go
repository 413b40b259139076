package events

import (
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/guilds"

	"gorm.io/gorm"
)

// CanManage reports whether the user may edit or delete the event.
// Events scoped by a guild, directly or through a guild-owned static,
// are managed by that guild's leadership. Events with no scoping guild
// (world events, character-owned statics) are managed by the owner's user.
func CanManage(db *gorm.DB, userID uint, ev *Event) (bool, error) {
	guildID, err := ScopingGuildID(db, ev)
	if err != nil {
		return false, err
	}
	if guildID != 0 {
		return guilds.HasLeadership(db, userID, guildID)
	}

	var owner characters.Character
	if err := db.First(&owner, ev.OwnerID).Error; err != nil {
		return false, ignoreNotFound(err)
	}
	return owner.UserID == userID, nil
}
