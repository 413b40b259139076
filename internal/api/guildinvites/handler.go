package guildinvites

import (
	"net/http"

	"guildhall/database"
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/guilds"

	"github.com/gin-gonic/gin"
)

type InvitePayload struct {
	GuildID     uint `json:"guild_id"`
	CharacterID uint `json:"character_id"`
	FromGuild   bool `json:"from_guild"`
}

type InviteRequest struct {
	GuildInvite InvitePayload `json:"guild_invite" binding:"required"`
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
// GET /guild_invites?guild_id= | character_id=
// ------------------------------
func Index(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	if v := c.Query("guild_id"); v != "" {
		var g guilds.Guild
		if err := database.DB.First(&g, v).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
			return
		}
		leader, err := guilds.HasLeadership(database.DB, userID, g.ID)
		if err != nil || !leader {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		var invites []guilds.GuildInvite
		database.DB.Where("guild_id = ?", g.ID).Find(&invites)
		c.JSON(http.StatusOK, gin.H{"guild_invites": invites})
		return
	}

	if v := c.Query("character_id"); v != "" {
		var ch characters.Character
		err := database.DB.
			Where("user_id = ? AND guild_id IS NULL", userID).
			First(&ch, v).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
			return
		}
		var invites []guilds.GuildInvite
		database.DB.Where("character_id = ?", ch.ID).Find(&invites)
		c.JSON(http.StatusOK, gin.H{"guild_invites": invites})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "Guild ID or Character ID must be presented"})
}

// ------------------------------
// POST /guild_invites
// ------------------------------
func Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := req.GuildInvite

	var g guilds.Guild
	if err := database.DB.First(&g, p.GuildID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}
	var ch characters.Character
	if err := database.DB.First(&ch, p.CharacterID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}
	if ch.GuildID != nil {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Character already has a guild"}})
		return
	}

	if !authorizeInvite(c, userID, &g, &ch, p.FromGuild) {
		return
	}

	var existing int64
	database.DB.Model(&guilds.GuildInvite{}).
		Where("guild_id = ? AND character_id = ?", g.ID, ch.ID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Invite already exists"}})
		return
	}

	invite := guilds.GuildInvite{
		GuildID:     g.ID,
		CharacterID: ch.ID,
		FromGuild:   p.FromGuild,
		Status:      guilds.InviteStatusPending,
	}
	if err := database.DB.Create(&invite).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Invite could not be saved"}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"guild_invite": invite})
}

// ------------------------------
// DELETE /guild_invites/:id
// ------------------------------
func Destroy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	invite := findInvite(c)
	if invite == nil {
		return
	}
	if !authorizeDecision(c, userID, invite, invite.FromGuild) {
		return
	}
	database.DB.Delete(invite)
	c.JSON(http.StatusOK, gin.H{"result": "Guild invite is deleted"})
}

// ------------------------------
// POST /guild_invites/:id/approve
// ------------------------------
func Approve(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	invite := findInvite(c)
	if invite == nil {
		return
	}
	// The receiving side approves: the character's user for guild-initiated
	// invites, guild leadership for character-initiated requests.
	if !authorizeDecision(c, userID, invite, !invite.FromGuild) {
		return
	}

	err := database.DB.Model(&characters.Character{}).
		Where("id = ?", invite.CharacterID).
		Update("guild_id", invite.GuildID).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join guild"})
		return
	}
	database.DB.Where("character_id = ?", invite.CharacterID).Delete(&guilds.GuildInvite{})
	c.JSON(http.StatusOK, gin.H{"result": "Character is added to the guild"})
}

// ------------------------------
// POST /guild_invites/:id/decline
// ------------------------------
func Decline(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	invite := findInvite(c)
	if invite == nil {
		return
	}
	if !authorizeDecision(c, userID, invite, !invite.FromGuild) {
		return
	}

	err := database.DB.Model(invite).Update("status", guilds.InviteStatusDeclined).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decline invite"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "Guild invite is declined"})
}

func findInvite(c *gin.Context) *guilds.GuildInvite {
	var invite guilds.GuildInvite
	if err := database.DB.First(&invite, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return nil
	}
	return &invite
}

// authorizeInvite gates creation: guild-side invites need leadership,
// character-side requests need the character's own user.
func authorizeInvite(c *gin.Context, userID uint, g *guilds.Guild, ch *characters.Character, fromGuild bool) bool {
	if fromGuild {
		leader, err := guilds.HasLeadership(database.DB, userID, g.ID)
		if err == nil && leader {
			return true
		}
	} else if ch.UserID == userID {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	return false
}

// authorizeDecision gates approve/decline/destroy. guildSide selects which
// side of the invite must act.
func authorizeDecision(c *gin.Context, userID uint, invite *guilds.GuildInvite, guildSide bool) bool {
	if guildSide {
		leader, err := guilds.HasLeadership(database.DB, userID, invite.GuildID)
		if err == nil && leader {
			return true
		}
	} else {
		var ch characters.Character
		err := database.DB.Where("user_id = ?", userID).First(&ch, invite.CharacterID).Error
		if err == nil {
			return true
		}
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	return false
}
