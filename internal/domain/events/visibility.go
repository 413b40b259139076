package events

import (
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/statics"

	"gorm.io/gorm"
)

// CharacterScope builds the WHERE condition selecting every event the
// character may see:
//
//   - world events on the character's world and fraction
//   - guild events of the character's guild (skipped when guildless)
//   - events of statics the character is a direct member of
//   - events of statics owned by the character's guild, when the
//     character's user holds a leadership rank there
//
// The condition composes with window/filter scopes in the events handler.
func CharacterScope(db *gorm.DB, ch *characters.Character) (*gorm.DB, error) {
	fractionID, err := characters.FractionID(db, ch)
	if err != nil {
		return nil, err
	}

	staticIDs, err := statics.ContainingCharacter(db, ch.ID)
	if err != nil {
		return nil, err
	}
	leaderStaticIDs, err := statics.OfGuildLeaders(db, ch)
	if err != nil {
		return nil, err
	}
	staticIDs = append(staticIDs, leaderStaticIDs...)

	cond := db.Where(
		"eventable_type = ? AND eventable_id = ? AND fraction_id = ?",
		EventableWorld, ch.WorldID, fractionID,
	)
	if ch.GuildID != nil {
		cond = cond.Or("eventable_type = ? AND eventable_id = ?", EventableGuild, *ch.GuildID)
	}
	if len(staticIDs) > 0 {
		cond = cond.Or("eventable_type = ? AND eventable_id IN ?", EventableStatic, staticIDs)
	}
	return cond, nil
}

// AvailableForCharacter returns the events visible to the character,
// de-duplicated, in no particular order.
func AvailableForCharacter(db *gorm.DB, ch *characters.Character) ([]Event, error) {
	cond, err := CharacterScope(db, ch)
	if err != nil {
		return nil, err
	}
	var evs []Event
	if err := db.Where(cond).Find(&evs).Error; err != nil {
		return nil, err
	}
	return evs, nil
}

// AvailableForUser unions AvailableForCharacter over every character the
// user owns, de-duplicated by event ID.
func AvailableForUser(db *gorm.DB, userID uint) ([]Event, error) {
	var chars []characters.Character
	if err := db.Where("user_id = ?", userID).Find(&chars).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{})
	var out []Event
	for i := range chars {
		evs, err := AvailableForCharacter(db, &chars[i])
		if err != nil {
			return nil, err
		}
		for _, ev := range evs {
			if _, dup := seen[ev.ID]; dup {
				continue
			}
			seen[ev.ID] = struct{}{}
			out = append(out, ev)
		}
	}
	return out, nil
}

// UserScope builds the WHERE condition selecting every event any of the
// user's characters may see. Selecting with it yields the same set as
// AvailableForUser; it exists so list endpoints can compose visibility with
// window and filter scopes in a single query.
func UserScope(db *gorm.DB, userID uint) (*gorm.DB, error) {
	var chars []characters.Character
	if err := db.Where("user_id = ?", userID).Find(&chars).Error; err != nil {
		return nil, err
	}

	// No characters, no visibility.
	cond := db.Where("1 = 0")
	for i := range chars {
		chCond, err := CharacterScope(db, &chars[i])
		if err != nil {
			return nil, err
		}
		cond = cond.Or(chCond)
	}
	return cond, nil
}

// IsAvailableForUser is the single-event counterpart of AvailableForUser and
// must agree with it exactly. The caller already holds a candidate event, so
// no enumeration happens.
func IsAvailableForUser(db *gorm.DB, ev *Event, userID uint) (bool, error) {
	switch ev.EventableType {
	case EventableWorld:
		// Any of the user's characters on that world with a matching fraction.
		var n int64
		err := db.Model(&characters.Character{}).
			Joins("JOIN races ON races.id = characters.race_id").
			Where("characters.user_id = ?", userID).
			Where("characters.world_id = ?", ev.EventableID).
			Where("races.fraction_id = ?", ev.FractionID).
			Count(&n).Error
		return n > 0, err

	case EventableGuild:
		var n int64
		err := db.Model(&characters.Character{}).
			Where("user_id = ? AND guild_id = ?", userID, ev.EventableID).
			Count(&n).Error
		return n > 0, err

	case EventableStatic:
		// Direct membership through any character.
		var n int64
		err := db.Model(&statics.StaticMember{}).
			Joins("JOIN characters ON characters.id = static_members.character_id").
			Where("static_members.static_id = ?", ev.EventableID).
			Where("characters.user_id = ?", userID).
			Count(&n).Error
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}

		// Leadership in the guild that owns the static.
		var s statics.Static
		if err := db.First(&s, ev.EventableID).Error; err != nil {
			return false, ignoreNotFound(err)
		}
		if s.StaticableType != statics.StaticableGuild {
			return false, nil
		}
		return guilds.HasLeadership(db, userID, s.StaticableID)

	default:
		return false, nil
	}
}
