package characters

import (
	"log"
	"net/http"
	"time"

	"guildhall/database"
	"guildhall/internal/cache"
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/game"

	"github.com/gin-gonic/gin"
)

type CharacterPayload struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	RaceID     uint   `json:"race_id"`
	WorldID    uint   `json:"world_id"`
	MainRoleID uint   `json:"main_role_id"`
	RoleIDs    []uint `json:"role_ids"`
}

type CharacterRequest struct {
	Character CharacterPayload `json:"character" binding:"required"`
}

// CharacterUpdatePayload uses pointers so updates can tell an omitted field
// (nil, keep the stored value) from an explicitly sent one.
type CharacterUpdatePayload struct {
	Name       *string `json:"name"`
	Level      *int    `json:"level"`
	RaceID     *uint   `json:"race_id"`
	WorldID    *uint   `json:"world_id"`
	MainRoleID uint    `json:"main_role_id"`
	RoleIDs    []uint  `json:"role_ids"`
}

type CharacterUpdateRequest struct {
	Character CharacterUpdatePayload `json:"character" binding:"required"`
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// ------------------------------
// GET /characters/:id
// ------------------------------
func Show(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var ch characters.Character
	err := database.DB.Where("user_id = ?", userID).First(&ch, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}

	roles, _ := characters.RolesOf(database.DB, ch.ID)
	c.JSON(http.StatusOK, gin.H{"character": ch, "roles": roles})
}

// ------------------------------
// POST /characters
// ------------------------------
func Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form := formFromPayload(req.Character, userID)
	if !form.Persist(database.DB) {
		c.JSON(http.StatusConflict, gin.H{"errors": form.Errors})
		return
	}

	replaceRoles(form.Character().ID, req.Character.MainRoleID, req.Character.RoleIDs)
	c.JSON(http.StatusCreated, gin.H{"character": form.Character()})
}

// ------------------------------
// PATCH /characters/:id
// ------------------------------
func Update(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var ch characters.Character
	err := database.DB.Where("user_id = ?", userID).First(&ch, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}

	var req CharacterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := req.Character
	merged := CharacterPayload{
		Name:    ch.Name,
		Level:   ch.Level,
		RaceID:  ch.RaceID,
		WorldID: ch.WorldID,
	}
	if p.Name != nil {
		merged.Name = *p.Name
	}
	if p.Level != nil {
		merged.Level = *p.Level
	}
	if p.RaceID != nil {
		merged.RaceID = *p.RaceID
	}
	if p.WorldID != nil {
		merged.WorldID = *p.WorldID
	}

	form := formFromPayload(merged, userID)
	form.ID = ch.ID
	if !form.Persist(database.DB) {
		c.JSON(http.StatusConflict, gin.H{"errors": form.Errors})
		return
	}

	// Role assignment is destroy-then-recreate on characters, unlike event
	// group roles which are updated in place.
	replaceRoles(ch.ID, p.MainRoleID, p.RoleIDs)
	c.JSON(http.StatusOK, gin.H{"character": form.Character()})
}

// ------------------------------
// GET /characters/default_values
// ------------------------------
func DefaultValues(c *gin.Context) {
	if _, ok := mustUserID(c); !ok {
		return
	}
	ctx := c.Request.Context()

	var races []game.Race
	var worlds []game.World
	var dungeons []game.Dungeon
	var roles []game.Role

	err := cache.Default.Fetch(ctx, "races", time.Hour, &races, func() (interface{}, error) {
		var rows []game.Race
		return rows, database.DB.Order("id ASC").Find(&rows).Error
	})
	if err == nil {
		err = cache.Default.Fetch(ctx, "worlds", time.Hour, &worlds, func() (interface{}, error) {
			var rows []game.World
			return rows, database.DB.Order("id ASC").Find(&rows).Error
		})
	}
	if err == nil {
		err = cache.Default.Fetch(ctx, "dungeons", time.Hour, &dungeons, func() (interface{}, error) {
			var rows []game.Dungeon
			return rows, database.DB.Order("id ASC").Find(&rows).Error
		})
	}
	if err == nil {
		err = cache.Default.Fetch(ctx, "roles", time.Hour, &roles, func() (interface{}, error) {
			var rows []game.Role
			return rows, database.DB.Order("id ASC").Find(&rows).Error
		})
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load default values"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"races":    races,
		"worlds":   worlds,
		"dungeons": dungeons,
		"roles":    roles,
	})
}

func formFromPayload(p CharacterPayload, userID uint) *CharacterForm {
	form := &CharacterForm{
		Name:   p.Name,
		Level:  p.Level,
		UserID: userID,
	}
	var race game.Race
	if err := database.DB.First(&race, p.RaceID).Error; err == nil {
		form.Race = &race
	}
	var world game.World
	if err := database.DB.First(&world, p.WorldID).Error; err == nil {
		form.World = &world
	}
	return form
}

func replaceRoles(characterID, mainRoleID uint, roleIDs []uint) {
	if len(roleIDs) == 0 {
		return
	}
	if err := characters.ReplaceRoles(database.DB, characterID, mainRoleID, roleIDs); err != nil {
		// Roles are auxiliary; the character itself is already saved.
		log.Printf("role replacement for character %d failed: %v", characterID, err)
	}
}
