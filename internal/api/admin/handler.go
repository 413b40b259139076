package admin

import (
	"net/http"
	"time"

	"guildhall/database"
	"guildhall/internal/cache"
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/events"
	"guildhall/internal/domain/game"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Characters int64  `json:"characters"`
}

type AdminStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalCharacters int64 `json:"total_characters"`
	TotalGuilds     int64 `json:"total_guilds"`
	UpcomingEvents  int64 `json:"upcoming_events"`
}

// ------------------------------
// GET /admin/stats
// ------------------------------
func Stats(c *gin.Context) {
	var stats AdminStats
	database.DB.Model(&users.User{}).Count(&stats.TotalUsers)
	database.DB.Model(&characters.Character{}).Count(&stats.TotalCharacters)
	database.DB.Model(&guilds.Guild{}).Count(&stats.TotalGuilds)
	database.DB.Model(&events.Event{}).
		Where("start_time > ?", time.Now().UTC()).
		Count(&stats.UpcomingEvents)
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ------------------------------
// GET /admin/users
// ------------------------------
func ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := database.DB.Order("id ASC").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]AdminUser, 0, len(all))
	for _, u := range all {
		var chars int64
		database.DB.Model(&characters.Character{}).Where("user_id = ?", u.ID).Count(&chars)
		out = append(out, AdminUser{ID: u.ID, Email: u.Email, Role: u.Role, Characters: chars})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// ------------------------------
// POST /admin/worlds | fractions | races | dungeons | roles
// ------------------------------
// Reference tables feed the read-through cache, so every write drops the
// matching cache key.

type referencePayload struct {
	Name       string `json:"name" binding:"required"`
	Zone       string `json:"zone"`
	FractionID uint   `json:"fraction_id"`
	Raid       bool   `json:"raid"`
}

func CreateWorld(c *gin.Context) {
	p, ok := bindReference(c)
	if !ok {
		return
	}
	createReference(c, &game.World{Name: p.Name, Zone: p.Zone}, "worlds")
}

func CreateFraction(c *gin.Context) {
	p, ok := bindReference(c)
	if !ok {
		return
	}
	createReference(c, &game.Fraction{Name: p.Name}, "fractions")
}

func CreateRace(c *gin.Context) {
	p, ok := bindReference(c)
	if !ok {
		return
	}
	var fraction game.Fraction
	if err := database.DB.First(&fraction, p.FractionID).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Fraction must exist"}})
		return
	}
	createReference(c, &game.Race{Name: p.Name, FractionID: fraction.ID}, "races")
}

func CreateDungeon(c *gin.Context) {
	p, ok := bindReference(c)
	if !ok {
		return
	}
	createReference(c, &game.Dungeon{Name: p.Name, Raid: p.Raid}, "dungeons")
}

func CreateRole(c *gin.Context) {
	p, ok := bindReference(c)
	if !ok {
		return
	}
	createReference(c, &game.Role{Name: p.Name}, "roles")
}

func bindReference(c *gin.Context) (referencePayload, bool) {
	var p referencePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return p, false
	}
	return p, true
}

func createReference(c *gin.Context, record interface{}, cacheKey string) {
	if err := database.DB.Create(record).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"errors": []string{"Record could not be saved"}})
		return
	}
	if err := cache.Default.Invalidate(c.Request.Context(), cacheKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache invalidation failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record})
}
