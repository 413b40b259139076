package statics

import (
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/guilds"

	"gorm.io/gorm"
)

// ContainingCharacter returns the IDs of every static the character is a
// direct member of.
func ContainingCharacter(db *gorm.DB, characterID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&StaticMember{}).
		Where("character_id = ?", characterID).
		Pluck("static_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// OfGuildLeaders returns the IDs of statics owned by the character's guild,
// but only when the character's user holds a leadership rank there. Leaders
// see their guild's sub-group events without being members of the sub-group;
// everyone else gets nothing from this path.
func OfGuildLeaders(db *gorm.DB, ch *characters.Character) ([]uint, error) {
	if ch.GuildID == nil {
		return nil, nil
	}
	leader, err := guilds.HasLeadership(db, ch.UserID, *ch.GuildID)
	if err != nil {
		return nil, err
	}
	if !leader {
		return nil, nil
	}
	return OwnedByGuild(db, *ch.GuildID)
}

// OwnedByGuild returns the IDs of statics whose staticable owner is the guild.
func OwnedByGuild(db *gorm.DB, guildID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&Static{}).
		Where("staticable_type = ? AND staticable_id = ?", StaticableGuild, guildID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// OfUser returns statics reachable by the user: owned by one of their
// characters, or containing one of their characters as a member.
func OfUser(db *gorm.DB, userID uint) ([]Static, error) {
	var charIDs []uint
	err := db.Model(&characters.Character{}).
		Where("user_id = ?", userID).
		Pluck("id", &charIDs).Error
	if err != nil {
		return nil, err
	}
	if len(charIDs) == 0 {
		return nil, nil
	}

	var memberStaticIDs []uint
	err = db.Model(&StaticMember{}).
		Where("character_id IN ?", charIDs).
		Pluck("static_id", &memberStaticIDs).Error
	if err != nil {
		return nil, err
	}

	q := db.Where("staticable_type = ? AND staticable_id IN ?", StaticableCharacter, charIDs)
	if len(memberStaticIDs) > 0 {
		q = q.Or("id IN ?", memberStaticIDs)
	}

	var out []Static
	if err := db.Where(q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// IsMember reports direct membership of the character in the static.
func IsMember(db *gorm.DB, staticID, characterID uint) (bool, error) {
	var n int64
	err := db.Model(&StaticMember{}).
		Where("static_id = ? AND character_id = ?", staticID, characterID).
		Count(&n).Error
	return n > 0, err
}
