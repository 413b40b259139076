package events

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"guildhall/database"
	"guildhall/internal/cache"
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/events"
	"guildhall/internal/domain/game"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/statics"
	"guildhall/internal/domain/subscribes"
	"guildhall/internal/jobs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

func ownedCharacter(userID, characterID uint) *characters.Character {
	var ch characters.Character
	err := database.DB.Preload("Race").
		Where("user_id = ?", userID).
		First(&ch, characterID).Error
	if err != nil {
		return nil
	}
	return &ch
}

// ------------------------------
// GET /events
// ------------------------------
func Index(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}

	start, end := periodWindow(c)
	q := database.DB.Model(&events.Event{}).
		Where("start_time > ? AND start_time <= ?", start, end)

	if v := c.Query("eventable_type"); v != "" {
		q = q.Where("eventable_type = ?", v)
	}
	if v := c.Query("eventable_id"); v != "" {
		q = q.Where("eventable_id = ?", v)
	}
	if v := c.Query("fraction_id"); v != "" {
		q = q.Where("fraction_id = ?", v)
	}
	if v := c.Query("dungeon_id"); v != "" {
		q = q.Where("dungeon_id = ?", v)
	}
	if c.Query("subscribed") == "true" {
		sub := database.DB.Model(&subscribes.Subscribe{}).
			Select("subscribes.event_id").
			Joins("JOIN characters ON characters.id = subscribes.character_id").
			Where("characters.user_id = ?", userID)
		q = q.Where("events.id IN (?)", sub)
	}

	// Visibility: one character when requested and owned, the whole user otherwise.
	var scope *gorm.DB
	if v := c.Query("character_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			if ch := ownedCharacter(userID, uint(id)); ch != nil {
				cond, err := events.CharacterScope(database.DB, ch)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
					return
				}
				scope = cond
			}
		}
	}
	if scope == nil {
		cond, err := events.UserScope(database.DB, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
			return
		}
		scope = cond
	}

	var evs []events.Event
	if err := q.Where(scope).Order("start_time ASC").Find(&evs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}

	out := make([]EventDTO, 0, len(evs))
	for i := range evs {
		gr, _ := events.GroupRoleOf(database.DB, evs[i].ID)
		out = append(out, toEventDTO(&evs[i], gr))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

// ------------------------------
// GET /events/:id
// ------------------------------
func Show(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	ev := findEvent(c)
	if ev == nil {
		return
	}

	visible, err := events.IsAvailableForUser(database.DB, ev, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	if !visible {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	gr, _ := events.GroupRoleOf(database.DB, ev.ID)
	c.JSON(http.StatusOK, gin.H{"event": toEventDTO(ev, gr)})
}

// ------------------------------
// POST /events
// ------------------------------
func Create(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := ownedCharacter(userID, req.Event.OwnerID)
	if req.Event.Repeat > 0 {
		createMany(c, req.Event, owner)
		return
	}
	createOne(c, req.Event, owner)
}

func createOne(c *gin.Context, p EventPayload, owner *characters.Character) {
	form := formFromPayload(p, owner)
	if !form.Persist(database.DB) {
		c.JSON(http.StatusConflict, gin.H{"errors": form.Errors})
		return
	}

	createAdditionalObjectsForEvent(form.Event(), p.GroupRoles)
	gr, _ := events.GroupRoleOf(database.DB, form.Event().ID)
	c.JSON(http.StatusCreated, gin.H{"event": toEventDTO(form.Event(), gr)})
}

// createMany builds one occurrence per index 0..repeat inclusive, each
// validated on its own. Occurrences failing validation are skipped, but the
// outcome of every occurrence is reported back so the caller can tell "all
// succeeded" from "some skipped".
func createMany(c *gin.Context, p EventPayload, owner *characters.Character) {
	base := unixTime(p.StartTime)
	outcomes := make([]OccurrenceDTO, 0, p.Repeat+1)

	for i := 0; i <= p.Repeat; i++ {
		occurrence := p
		startTime := base.AddDate(0, 0, i*p.RepeatDays)
		occurrence.StartTime = startTime.Unix()

		form := formFromPayload(occurrence, owner)
		if form.Persist(database.DB) {
			createAdditionalObjectsForEvent(form.Event(), p.GroupRoles)
			outcomes = append(outcomes, OccurrenceDTO{
				StartTime: startTime.Unix(),
				Created:   true,
				EventID:   form.Event().ID,
				Slug:      form.Event().Slug,
			})
		} else {
			outcomes = append(outcomes, OccurrenceDTO{
				StartTime: startTime.Unix(),
				Errors:    form.Errors,
			})
		}
	}

	c.JSON(http.StatusCreated, gin.H{"occurrences": outcomes})
}

// ------------------------------
// GET /events/:id/edit
// ------------------------------
func Edit(c *gin.Context) {
	if _, ok := mustUserID(c); !ok {
		return
	}
	ev := findEvent(c)
	if ev == nil {
		return
	}
	gr, _ := events.GroupRoleOf(database.DB, ev.ID)
	c.JSON(http.StatusOK, gin.H{"event": toEventDTO(ev, gr)})
}

// ------------------------------
// PATCH /events/:id
// ------------------------------
func Update(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	ev := findEvent(c)
	if ev == nil {
		return
	}
	if !authorizeManage(c, userID, ev) {
		return
	}

	var req EventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form := mergedForm(ev, req.Event)
	if !form.Persist(database.DB) {
		c.JSON(http.StatusConflict, gin.H{"errors": form.Errors})
		return
	}

	// The template is updated in place, never recreated: its ID stays stable.
	gr, err := events.GroupRoleOf(database.DB, ev.ID)
	if err == nil && gr != nil {
		if err := events.UpdateGroupRole(database.DB, gr, req.Event.GroupRoles); err != nil {
			log.Println("group role update failed:", err)
		}
	}

	gr, _ = events.GroupRoleOf(database.DB, ev.ID)
	c.JSON(http.StatusOK, gin.H{"event": toEventDTO(form.Event(), gr)})
}

// ------------------------------
// DELETE /events/:id
// ------------------------------
func Destroy(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	ev := findEvent(c)
	if ev == nil {
		return
	}
	if !authorizeManage(c, userID, ev) {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", ev.ID).Delete(&subscribes.Subscribe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("groupable_type = ? AND groupable_id = ?", "Event", ev.ID).
			Delete(&events.GroupRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", ev.ID).Delete(&jobs.EventNotification{}).Error; err != nil {
			return err
		}
		return tx.Delete(ev).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "Event is destroyed"})
}

// ------------------------------
// GET /events/filter_values
// ------------------------------
func FilterValues(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var worlds []game.World
	var fractions []game.Fraction
	var dungeons []game.Dungeon
	if err := fetchReference(ctx, &worlds, &fractions, &dungeons); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load filter values"})
		return
	}

	var chars []characters.Character
	database.DB.Where("user_id = ?", userID).Find(&chars)

	var userGuilds []guilds.Guild
	database.DB.
		Joins("JOIN characters ON characters.guild_id = guilds.id").
		Where("characters.user_id = ?", userID).
		Distinct("guilds.*").
		Find(&userGuilds)

	userStatics, _ := statics.OfUser(database.DB, userID)

	c.JSON(http.StatusOK, gin.H{
		"worlds":     worlds,
		"fractions":  fractions,
		"dungeons":   dungeons,
		"characters": chars,
		"guilds":     userGuilds,
		"statics":    staticOptions(userStatics),
	})
}

// ------------------------------
// GET /events/event_form_values
// ------------------------------
func EventFormValues(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var dungeons []game.Dungeon
	err := cache.Default.Fetch(ctx, "dungeons", time.Hour, &dungeons, func() (interface{}, error) {
		var rows []game.Dungeon
		return rows, database.DB.Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load form values"})
		return
	}

	var chars []characters.Character
	database.DB.Preload("Race").Where("user_id = ?", userID).Find(&chars)

	userStatics, _ := statics.OfUser(database.DB, userID)

	c.JSON(http.StatusOK, gin.H{
		"characters":  chars,
		"dungeons":    dungeons,
		"statics":     staticOptions(userStatics),
		"group_roles": events.DefaultSlots(),
	})
}

// ------------------------------
// helpers
// ------------------------------

func findEvent(c *gin.Context) *events.Event {
	var ev events.Event
	if err := database.DB.First(&ev, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object is not found"})
		return nil
	}
	return &ev
}

func authorizeManage(c *gin.Context, userID uint, ev *events.Event) bool {
	allowed, err := events.CanManage(database.DB, userID, ev)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization failed"})
		return false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return false
	}
	return true
}

// periodWindow resolves the listing window: explicit year/month/day/days
// params, or the current week starting Monday.
func periodWindow(c *gin.Context) (time.Time, time.Time) {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	day, _ := strconv.Atoi(c.Query("day"))
	days, _ := strconv.Atoi(c.Query("days"))
	if year > 0 && month > 0 && day > 0 && days > 0 {
		start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, days)
	}

	now := time.Now().UTC()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 6
	} else {
		weekday--
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -weekday)
	return start, start.AddDate(0, 0, 7)
}

func formFromPayload(p EventPayload, owner *characters.Character) *EventForm {
	form := &EventForm{
		Owner:            owner,
		Name:             p.Name,
		Description:      p.Description,
		EventType:        p.EventType,
		EventableType:    p.EventableType,
		EventableID:      p.EventableID,
		HoursBeforeClose: p.HoursBeforeClose,
	}
	if p.StartTime != 0 {
		form.StartTime = unixTime(p.StartTime)
	}
	if p.DungeonID != 0 {
		var d game.Dungeon
		if err := database.DB.First(&d, p.DungeonID).Error; err == nil {
			form.Dungeon = &d
		}
	}
	return form
}

// mergedForm re-validates against merged existing+new attributes. The owner
// never changes on update; nil fields keep their stored values, explicit
// values win even when they are the zero of their type.
func mergedForm(ev *events.Event, p EventUpdatePayload) *EventForm {
	var owner characters.Character
	database.DB.Preload("Race").First(&owner, ev.OwnerID)

	form := &EventForm{
		ID:               ev.ID,
		Owner:            &owner,
		Name:             ev.Name,
		Description:      ev.Description,
		EventType:        ev.EventType,
		EventableType:    ev.EventableType,
		EventableID:      ev.EventableID,
		StartTime:        ev.StartTime,
		HoursBeforeClose: ev.HoursBeforeClose,
	}
	if p.Name != nil {
		form.Name = *p.Name
	}
	if p.Description != nil {
		form.Description = *p.Description
	}
	if p.EventType != nil {
		form.EventType = *p.EventType
	}
	if p.EventableType != nil {
		form.EventableType = *p.EventableType
	}
	if p.EventableID != nil {
		form.EventableID = *p.EventableID
	}
	if p.StartTime != nil {
		form.StartTime = unixTime(*p.StartTime)
	}
	if p.HoursBeforeClose != nil {
		form.HoursBeforeClose = *p.HoursBeforeClose
	}

	// dungeon_id: nil keeps, explicit 0 unlinks.
	dungeonID := ev.DungeonID
	if p.DungeonID != nil {
		dungeonID = p.DungeonID
	}
	if dungeonID != nil && *dungeonID != 0 {
		var d game.Dungeon
		if err := database.DB.First(&d, *dungeonID).Error; err == nil {
			form.Dungeon = &d
		}
	}
	return form
}

// createAdditionalObjectsForEvent runs the three creation side effects as
// one logical unit. Each is independently retryable and external; a failure
// in one must not block the others, so errors are logged and swallowed.
func createAdditionalObjectsForEvent(ev *events.Event, slots map[string]int) {
	if _, err := subscribes.CreateForOwner(database.DB, ev); err != nil {
		log.Println("owner subscription failed:", err)
	}
	if _, err := events.CreateGroupRole(database.DB, ev, slots); err != nil {
		log.Println("group role creation failed:", err)
	}
	if _, err := jobs.Default.ScheduleEventReminder(ev.ID); err != nil {
		log.Println("reminder scheduling failed:", err)
	}
}

func staticOptions(list []statics.Static) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, s := range list {
		out = append(out, gin.H{"id": s.ID, "name": s.Name})
	}
	return out
}

func fetchReference(ctx context.Context, worlds *[]game.World, fractions *[]game.Fraction, dungeons *[]game.Dungeon) error {
	err := cache.Default.Fetch(ctx, "worlds", time.Hour, worlds, func() (interface{}, error) {
		var rows []game.World
		return rows, database.DB.Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		return err
	}
	err = cache.Default.Fetch(ctx, "fractions", time.Hour, fractions, func() (interface{}, error) {
		var rows []game.Fraction
		return rows, database.DB.Order("id ASC").Find(&rows).Error
	})
	if err != nil {
		return err
	}
	return cache.Default.Fetch(ctx, "dungeons", time.Hour, dungeons, func() (interface{}, error) {
		var rows []game.Dungeon
		return rows, database.DB.Order("id ASC").Find(&rows).Error
	})
}
