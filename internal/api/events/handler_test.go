package events_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guildhall/database"
	eventsapi "guildhall/internal/api/events"
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/events"
	"guildhall/internal/domain/subscribes"
	"guildhall/internal/jobs"
	"guildhall/internal/testing/fixtures"
	"guildhall/internal/testing/testdb"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAPI(t *testing.T) (*gorm.DB, *fixtures.Fixtures) {
	db := testdb.New(t)
	database.DB = db
	jobs.Init(db, nil)
	t.Cleanup(func() { jobs.Default = nil })
	return db, fixtures.New(db)
}

func worldOwner(t *testing.T, f *fixtures.Fixtures) *characters.Character {
	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	return f.Character(t, f.User(t), race, world, nil)
}

func doRequest(t *testing.T, userID uint, method string, body interface{}, params gin.Params, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/events", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID)
	c.Params = params
	handler(c)
	return w
}

func createRequest(t *testing.T, userID uint, payload eventsapi.EventPayload) *httptest.ResponseRecorder {
	return doRequest(t, userID, http.MethodPost, gin.H{"event": payload}, nil, eventsapi.Create)
}

func TestCreate_RunsAllSideEffects(t *testing.T) {
	db, f := setupAPI(t)
	owner := worldOwner(t, f)

	w := createRequest(t, owner.UserID, eventsapi.EventPayload{
		Name:             "Molten Core",
		OwnerID:          owner.ID,
		EventableType:    events.EventableWorld,
		HoursBeforeClose: 2,
		StartTime:        time.Now().UTC().Add(48 * time.Hour).Unix(),
		GroupRoles:       map[string]int{"tank": 1, "healer": 2, "dd": 5},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ev events.Event
	require.NoError(t, db.First(&ev).Error)

	// Owner is signed up immediately, no approval round trip.
	var sub subscribes.Subscribe
	require.NoError(t, db.Where("event_id = ?", ev.ID).First(&sub).Error)
	assert.Equal(t, owner.ID, sub.CharacterID)
	assert.Equal(t, subscribes.StatusApproved, sub.Status)

	gr, err := events.GroupRoleOf(db, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, gr)
	assert.Equal(t, map[string]int{"tank": 1, "healer": 2, "dd": 5}, gr.Slots)

	var n jobs.EventNotification
	require.NoError(t, db.Where("event_id = ?", ev.ID).First(&n).Error)
	assert.WithinDuration(t, ev.CloseTime(), n.RemindAt, time.Second)
}

func TestCreate_DefaultGroupRoleWhenSlotsOmitted(t *testing.T) {
	db, f := setupAPI(t)
	owner := worldOwner(t, f)

	w := createRequest(t, owner.UserID, eventsapi.EventPayload{
		Name:          "Onyxia",
		OwnerID:       owner.ID,
		EventableType: events.EventableWorld,
		StartTime:     time.Now().UTC().Add(48 * time.Hour).Unix(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ev events.Event
	require.NoError(t, db.First(&ev).Error)
	gr, err := events.GroupRoleOf(db, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, gr)
	assert.Equal(t, events.DefaultSlots(), gr.Slots)
}

func TestCreate_ValidationErrorsReturnConflict(t *testing.T) {
	db, f := setupAPI(t)
	owner := worldOwner(t, f)

	w := createRequest(t, owner.UserID, eventsapi.EventPayload{
		Name:          "x",
		OwnerID:       owner.ID,
		EventType:     "party",
		EventableType: events.EventableWorld,
		StartTime:     time.Now().UTC().Add(48 * time.Hour).Unix(),
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Errors, 2, "both field errors reported at once: %v", resp.Errors)

	var count int64
	require.NoError(t, db.Model(&events.Event{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_RecurringBuildsEveryOccurrence(t *testing.T) {
	db, f := setupAPI(t)
	owner := worldOwner(t, f)
	base := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

	w := createRequest(t, owner.UserID, eventsapi.EventPayload{
		Name:          "Weekly raid",
		OwnerID:       owner.ID,
		EventableType: events.EventableWorld,
		StartTime:     base.Unix(),
		Repeat:        3,
		RepeatDays:    7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Occurrences []eventsapi.OccurrenceDTO `json:"occurrences"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// repeat=3 means the base plus three repeats.
	require.Len(t, resp.Occurrences, 4)
	for i, occ := range resp.Occurrences {
		assert.True(t, occ.Created, "occurrence %d: %v", i, occ.Errors)
		assert.Equal(t, base.AddDate(0, 0, i*7).Unix(), occ.StartTime)
		assert.NotZero(t, occ.EventID)
	}

	var count int64
	require.NoError(t, db.Model(&events.Event{}).Count(&count).Error)
	assert.EqualValues(t, 4, count)

	// Every occurrence got its own side effects.
	require.NoError(t, db.Model(&subscribes.Subscribe{}).Count(&count).Error)
	assert.EqualValues(t, 4, count)
}

func TestCreate_RecurringReportsSkippedOccurrences(t *testing.T) {
	db, f := setupAPI(t)
	owner := worldOwner(t, f)
	base := time.Now().UTC().AddDate(0, 0, -10).Truncate(time.Second)

	w := createRequest(t, owner.UserID, eventsapi.EventPayload{
		Name:          "Weekly raid",
		OwnerID:       owner.ID,
		EventableType: events.EventableWorld,
		StartTime:     base.Unix(),
		Repeat:        2,
		RepeatDays:    7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Occurrences []eventsapi.OccurrenceDTO `json:"occurrences"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Occurrences, 3)

	assert.False(t, resp.Occurrences[0].Created)
	assert.Contains(t, resp.Occurrences[0].Errors, "Start time is in the past")
	assert.False(t, resp.Occurrences[1].Created)
	assert.True(t, resp.Occurrences[2].Created, "future occurrence still created: %v", resp.Occurrences[2].Errors)

	var count int64
	require.NoError(t, db.Model(&events.Event{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdate_ForbiddenWithoutLeadership(t *testing.T) {
	db, f := setupAPI(t)
	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	guild := f.Guild(t, world)
	owner := f.Character(t, f.User(t), race, world, guild)

	ev := f.Event(t, owner, events.EventableGuild, guild.ID, fraction.ID)

	w := doRequest(t, owner.UserID, http.MethodPatch,
		gin.H{"event": gin.H{"name": "Renamed"}},
		gin.Params{{Key: "id", Value: fmt.Sprint(ev.ID)}},
		eventsapi.Update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var reloaded events.Event
	require.NoError(t, db.First(&reloaded, ev.ID).Error)
	assert.Equal(t, ev.Name, reloaded.Name)
}

func TestUpdate_LeaderRenamesAndTemplateIDSurvives(t *testing.T) {
	db, f := setupAPI(t)
	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	guild := f.Guild(t, world)
	owner := f.Character(t, f.User(t), race, world, guild)
	f.GuildRole(t, guild, owner, "rl")

	ev := f.Event(t, owner, events.EventableGuild, guild.ID, fraction.ID)
	gr, err := events.CreateGroupRole(db, ev, nil)
	require.NoError(t, err)

	w := doRequest(t, owner.UserID, http.MethodPatch,
		gin.H{"event": gin.H{
			"name":        "Renamed raid",
			"group_roles": map[string]int{"tank": 3, "healer": 4, "dd": 10},
		}},
		gin.Params{{Key: "id", Value: fmt.Sprint(ev.ID)}},
		eventsapi.Update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded events.Event
	require.NoError(t, db.First(&reloaded, ev.ID).Error)
	assert.Equal(t, "Renamed raid", reloaded.Name)

	after, err := events.GroupRoleOf(db, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, gr.ID, after.ID, "template updated in place")
	assert.Equal(t, map[string]int{"tank": 3, "healer": 4, "dd": 10}, after.Slots)
}

func TestUpdate_ExplicitZeroAndClearStick(t *testing.T) {
	db, f := setupAPI(t)
	owner := worldOwner(t, f)

	ev := f.Event(t, owner, events.EventableWorld, owner.WorldID, 0)
	require.NoError(t, db.Model(ev).Updates(map[string]interface{}{
		"hours_before_close": 4,
		"description":        "bring consumables",
	}).Error)

	params := gin.Params{{Key: "id", Value: fmt.Sprint(ev.ID)}}

	// Omitted fields keep their stored values.
	w := doRequest(t, owner.UserID, http.MethodPatch,
		gin.H{"event": gin.H{"name": "Renamed"}}, params, eventsapi.Update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded events.Event
	require.NoError(t, db.First(&reloaded, ev.ID).Error)
	assert.Equal(t, 4, reloaded.HoursBeforeClose)
	assert.Equal(t, "bring consumables", reloaded.Description)

	// Explicit zero and explicit empty string overwrite.
	w = doRequest(t, owner.UserID, http.MethodPatch,
		gin.H{"event": gin.H{"hours_before_close": 0, "description": ""}}, params, eventsapi.Update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, db.First(&reloaded, ev.ID).Error)
	assert.Equal(t, 0, reloaded.HoursBeforeClose)
	assert.Empty(t, reloaded.Description)
}

func TestDestroy_RemovesDependents(t *testing.T) {
	db, f := setupAPI(t)
	owner := worldOwner(t, f)

	w := createRequest(t, owner.UserID, eventsapi.EventPayload{
		Name:          "Doomed event",
		OwnerID:       owner.ID,
		EventableType: events.EventableWorld,
		StartTime:     time.Now().UTC().Add(48 * time.Hour).Unix(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ev events.Event
	require.NoError(t, db.First(&ev).Error)

	w = doRequest(t, owner.UserID, http.MethodDelete, nil,
		gin.Params{{Key: "id", Value: fmt.Sprint(ev.ID)}},
		eventsapi.Destroy)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, db.Model(&events.Event{}).Count(&count).Error)
	assert.Zero(t, count, "event gone")
	require.NoError(t, db.Model(&subscribes.Subscribe{}).Count(&count).Error)
	assert.Zero(t, count, "subscriptions gone")
	require.NoError(t, db.Model(&events.GroupRole{}).Count(&count).Error)
	assert.Zero(t, count, "template gone")
	require.NoError(t, db.Model(&jobs.EventNotification{}).Count(&count).Error)
	assert.Zero(t, count, "pending reminders gone")
}

func TestDestroy_UnknownEventIsNotFound(t *testing.T) {
	_, f := setupAPI(t)
	owner := worldOwner(t, f)

	w := doRequest(t, owner.UserID, http.MethodDelete, nil,
		gin.Params{{Key: "id", Value: "424242"}},
		eventsapi.Destroy)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
