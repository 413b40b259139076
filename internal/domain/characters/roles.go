package characters

import "gorm.io/gorm"

// ReplaceRoles swaps the character's role assignments wholesale:
// every existing CharacterRole row is destroyed and new rows are created.
// Row IDs do NOT survive this call; callers must not hold references to
// them. Event group roles are the opposite case (see events.UpdateGroupRole,
// which mutates in place to keep IDs stable).
func ReplaceRoles(db *gorm.DB, characterID uint, mainRoleID uint, roleIDs []uint) error {
	if err := db.Where("character_id = ?", characterID).Delete(&CharacterRole{}).Error; err != nil {
		return err
	}
	for _, roleID := range roleIDs {
		row := CharacterRole{
			CharacterID: characterID,
			RoleID:      roleID,
			Main:        roleID == mainRoleID,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// RolesOf loads the character's role rows, main first.
func RolesOf(db *gorm.DB, characterID uint) ([]CharacterRole, error) {
	var rows []CharacterRole
	err := db.Where("character_id = ?", characterID).
		Order("main DESC, id ASC").
		Find(&rows).Error
	return rows, err
}
