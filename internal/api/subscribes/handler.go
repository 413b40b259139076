package subscribes

import (
	"net/http"

	"guildhall/database"
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/events"
	"guildhall/internal/domain/subscribes"

	"github.com/gin-gonic/gin"
)

type SubscribePayload struct {
	EventID     uint   `json:"event_id"`
	CharacterID uint   `json:"character_id"`
	Status      string `json:"status"`
	Comment     string `json:"comment"`
}

type SubscribeRequest struct {
	Subscribe SubscribePayload `json:"subscribe" binding:"required"`
}

var statuses = []string{
	subscribes.StatusPending,
	subscribes.StatusApproved,
	subscribes.StatusSigned,
	subscribes.StatusDeclined,
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
// POST /subscribes
// ------------------------------
func Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := req.Subscribe

	var ch characters.Character
	err := database.DB.Where("user_id = ?", userID).First(&ch, p.CharacterID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}
	var ev events.Event
	if err := database.DB.First(&ev, p.EventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}

	// Signups go through the same availability rule as listings.
	visible, err := events.IsAvailableForUser(database.DB, &ev, userID)
	if err != nil || !visible {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var existing int64
	database.DB.Model(&subscribes.Subscribe{}).
		Where("event_id = ? AND character_id = ?", ev.ID, ch.ID).
		Count(&existing)
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Character is already subscribed"}})
		return
	}

	sub := subscribes.Subscribe{
		EventID:     ev.ID,
		CharacterID: ch.ID,
		Status:      subscribes.StatusPending,
		Comment:     p.Comment,
	}
	if err := database.DB.Create(&sub).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Subscribe could not be saved"}})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"subscribe": sub})
}

// ------------------------------
// PATCH /subscribes/:id
// ------------------------------
func Update(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	var sub subscribes.Subscribe
	if err := database.DB.First(&sub, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}
	var ev events.Event
	if err := database.DB.First(&ev, sub.EventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := req.Subscribe.Status
	if !validStatus(status) {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Status is not included in the list"}})
		return
	}

	// The signed-up character's own user may withdraw (decline); everything
	// else is the event manager's call.
	var ch characters.Character
	ownSignup := database.DB.Where("user_id = ?", userID).First(&ch, sub.CharacterID).Error == nil
	if !(ownSignup && status == subscribes.StatusDeclined) {
		allowed, err := events.CanManage(database.DB, userID, &ev)
		if err != nil || !allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
	}

	if err := database.DB.Model(&sub).Update("status", status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscribe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribe": sub})
}

func validStatus(v string) bool {
	for _, s := range statuses {
		if s == v {
			return true
		}
	}
	return false
}
