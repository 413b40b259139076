package statics

import (
	"net/http"

	"guildhall/database"
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/statics"

	"github.com/gin-gonic/gin"
)

type StaticPayload struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	StaticableType string `json:"staticable_type"`
	StaticableID   uint   `json:"staticable_id"`
}

type StaticRequest struct {
	Static StaticPayload `json:"static" binding:"required"`
}

type MemberRequest struct {
	CharacterID uint `json:"character_id" binding:"required"`
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
// GET /statics
// ------------------------------
func Index(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	list, err := statics.OfUser(database.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load statics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statics": list})
}

// ------------------------------
// POST /statics
// ------------------------------
func Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req StaticRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := req.Static

	var errs []string
	if n := len([]rune(p.Name)); n < 2 || n > 50 {
		errs = append(errs, "Name length must be between 2 and 50 characters")
	}

	st := statics.Static{
		Name:           p.Name,
		Description:    p.Description,
		StaticableType: p.StaticableType,
		StaticableID:   p.StaticableID,
	}

	// World and fraction derive from the owner; owner must belong to the
	// current user (character directly, guild through leadership).
	switch p.StaticableType {
	case statics.StaticableCharacter:
		var ch characters.Character
		err := database.DB.Preload("Race").
			Where("user_id = ?", userID).
			First(&ch, p.StaticableID).Error
		if err != nil {
			errs = append(errs, "Staticable does not exist")
			break
		}
		st.WorldID = ch.WorldID
		fractionID, err := characters.FractionID(database.DB, &ch)
		if err != nil {
			errs = append(errs, "Fraction could not be resolved")
			break
		}
		st.FractionID = fractionID

	case statics.StaticableGuild:
		var g guilds.Guild
		if err := database.DB.First(&g, p.StaticableID).Error; err != nil {
			errs = append(errs, "Staticable does not exist")
			break
		}
		leader, err := guilds.HasLeadership(database.DB, userID, g.ID)
		if err != nil || !leader {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		st.WorldID = g.WorldID
		// Guild statics take the fraction of the leader's character in that guild.
		var ch characters.Character
		err = database.DB.Preload("Race").
			Where("user_id = ? AND guild_id = ?", userID, g.ID).
			First(&ch).Error
		if err != nil {
			errs = append(errs, "Fraction could not be resolved")
			break
		}
		fractionID, err := characters.FractionID(database.DB, &ch)
		if err != nil {
			errs = append(errs, "Fraction could not be resolved")
			break
		}
		st.FractionID = fractionID

	default:
		errs = append(errs, "Staticable type is not included in the list")
	}

	if len(errs) > 0 {
		c.JSON(http.StatusConflict, gin.H{"errors": errs})
		return
	}
	if err := database.DB.Create(&st).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Static could not be saved"}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"static": st})
}

// ------------------------------
// POST /statics/:id/members
// ------------------------------
func AddMember(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	st := findStatic(c)
	if st == nil {
		return
	}
	if !authorizeOwner(c, userID, st) {
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ch characters.Character
	if err := database.DB.First(&ch, req.CharacterID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}

	member := statics.StaticMember{StaticID: st.ID, CharacterID: ch.ID}
	if err := database.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Member could not be added"}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": member})
}

// ------------------------------
// DELETE /statics/:id/members/:member_id
// ------------------------------
func RemoveMember(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	st := findStatic(c)
	if st == nil {
		return
	}
	if !authorizeOwner(c, userID, st) {
		return
	}

	res := database.DB.
		Where("static_id = ? AND id = ?", st.ID, c.Param("member_id")).
		Delete(&statics.StaticMember{})
	if res.Error != nil || res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "Member is removed"})
}

func findStatic(c *gin.Context) *statics.Static {
	var st statics.Static
	if err := database.DB.First(&st, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return nil
	}
	return &st
}

// authorizeOwner permits mutation by the owning character's user, or by
// guild leadership for guild-owned statics.
func authorizeOwner(c *gin.Context, userID uint, st *statics.Static) bool {
	switch st.StaticableType {
	case statics.StaticableCharacter:
		var ch characters.Character
		err := database.DB.Where("user_id = ?", userID).First(&ch, st.StaticableID).Error
		if err == nil {
			return true
		}
	case statics.StaticableGuild:
		leader, err := guilds.HasLeadership(database.DB, userID, st.StaticableID)
		if err == nil && leader {
			return true
		}
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	return false
}
