package admin_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"guildhall/database"
	adminapi "guildhall/internal/api/admin"
	"guildhall/internal/domain/events"
	"guildhall/internal/domain/game"
	"guildhall/internal/testing/fixtures"
	"guildhall/internal/testing/testdb"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(t *testing.T, body interface{}, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin", bytes.NewReader(b))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestCreateRace_RequiresExistingFraction(t *testing.T) {
	db := testdb.New(t)
	database.DB = db
	f := fixtures.New(db)

	w := doRequest(t, gin.H{"name": "Orc", "fraction_id": 999}, adminapi.CreateRace)
	assert.Equal(t, http.StatusConflict, w.Code)

	fraction := f.Fraction(t)
	w = doRequest(t, gin.H{"name": "Orc", "fraction_id": fraction.ID}, adminapi.CreateRace)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var race game.Race
	require.NoError(t, db.Where("name = ?", "Orc").First(&race).Error)
	assert.Equal(t, fraction.ID, race.FractionID)
}

func TestStats_CountsUpcomingEventsOnly(t *testing.T) {
	db := testdb.New(t)
	database.DB = db
	f := fixtures.New(db)

	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	owner := f.Character(t, f.User(t), race, world, nil)

	upcoming := f.Event(t, owner, events.EventableWorld, world.ID, fraction.ID)
	past := f.Event(t, owner, events.EventableWorld, world.ID, fraction.ID)
	require.NoError(t, db.Model(past).Update("start_time", upcoming.StartTime.AddDate(0, 0, -30)).Error)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	adminapi.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats adminapi.AdminStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 1, resp.Stats.UpcomingEvents)
	assert.EqualValues(t, 1, resp.Stats.TotalUsers)
	assert.EqualValues(t, 1, resp.Stats.TotalCharacters)
}
