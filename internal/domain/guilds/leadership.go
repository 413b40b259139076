package guilds

import "gorm.io/gorm"

// leadershipRanks is the closed set of ranks that count as guild leadership.
var leadershipRanks = []string{RoleGuildMaster, RoleRaidLeader, RoleClassLeader}

// LeadershipRolesFor returns the distinct leadership ranks the user holds in
// the guild across all of their characters. Both the event visibility engine
// and the edit/delete authorization check go through this one function so the
// two paths cannot diverge.
func LeadershipRolesFor(db *gorm.DB, userID, guildID uint) ([]string, error) {
	var names []string
	err := db.Model(&GuildRole{}).
		Distinct("guild_roles.name").
		Joins("JOIN characters ON characters.id = guild_roles.character_id").
		Where("characters.user_id = ?", userID).
		Where("guild_roles.guild_id = ?", guildID).
		Where("guild_roles.name IN ?", leadershipRanks).
		Pluck("guild_roles.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// HasLeadership reports whether the user holds any leadership rank in the guild.
func HasLeadership(db *gorm.DB, userID, guildID uint) (bool, error) {
	names, err := LeadershipRolesFor(db, userID, guildID)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}
