package characters

import (
	"time"

	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/game"

	"gorm.io/gorm"
)

// CharacterForm validates a candidate character. Errors accumulate, same
// contract as the event form.
type CharacterForm struct {
	ID     uint
	Name   string
	Level  int
	UserID uint
	Race   *game.Race
	World  *game.World

	Errors []string

	character *characters.Character
}

func (f *CharacterForm) Character() *characters.Character {
	return f.character
}

func (f *CharacterForm) Persist(db *gorm.DB) bool {
	if !f.Validate() {
		return false
	}

	ch := &characters.Character{}
	if f.ID != 0 {
		if err := db.First(ch, f.ID).Error; err != nil {
			f.Errors = append(f.Errors, "Character does not exist")
			return false
		}
	}

	ch.Name = f.Name
	ch.Level = f.Level
	ch.UserID = f.UserID
	ch.RaceID = f.Race.ID
	ch.WorldID = f.World.ID
	if ch.CreatedAt.IsZero() {
		ch.CreatedAt = time.Now().UTC()
	}

	if err := db.Save(ch).Error; err != nil {
		f.Errors = append(f.Errors, "Character could not be saved")
		return false
	}
	f.character = ch
	return true
}

func (f *CharacterForm) Validate() bool {
	f.Errors = nil

	if n := len([]rune(f.Name)); n < 2 || n > 50 {
		f.Errors = append(f.Errors, "Name length must be between 2 and 50 characters")
	}
	if f.Level < 1 || f.Level > 60 {
		f.Errors = append(f.Errors, "Level must be between 1 and 60")
	}
	if f.UserID == 0 {
		f.Errors = append(f.Errors, "User must exist")
	}
	if f.Race == nil {
		f.Errors = append(f.Errors, "Race must exist")
	}
	if f.World == nil {
		f.Errors = append(f.Errors, "World must exist")
	}

	return len(f.Errors) == 0
}
