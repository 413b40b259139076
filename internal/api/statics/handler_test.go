package statics_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"guildhall/database"
	staticsapi "guildhall/internal/api/statics"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/statics"
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
	return db, fixtures.New(db)
}

func doRequest(t *testing.T, userID uint, method string, body interface{}, params gin.Params, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/statics", bytes.NewReader(b))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID)
	c.Params = params
	handler(c)
	return w
}

func TestCreate_CharacterStaticDerivesWorldAndFraction(t *testing.T) {
	db, f := setupAPI(t)

	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	owner := f.Character(t, f.User(t), race, world, nil)

	w := doRequest(t, owner.UserID, http.MethodPost, gin.H{"static": staticsapi.StaticPayload{
		Name:           "Core group",
		StaticableType: statics.StaticableCharacter,
		StaticableID:   owner.ID,
	}}, nil, staticsapi.Create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var st statics.Static
	require.NoError(t, db.First(&st).Error)
	assert.Equal(t, world.ID, st.WorldID)
	assert.Equal(t, fraction.ID, st.FractionID)
}

func TestCreate_GuildStaticNeedsLeadership(t *testing.T) {
	db, f := setupAPI(t)

	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	guild := f.Guild(t, world)
	member := f.Character(t, f.User(t), race, world, guild)

	payload := gin.H{"static": staticsapi.StaticPayload{
		Name:           "Guild core",
		StaticableType: statics.StaticableGuild,
		StaticableID:   guild.ID,
	}}

	w := doRequest(t, member.UserID, http.MethodPost, payload, nil, staticsapi.Create)
	assert.Equal(t, http.StatusForbidden, w.Code, "plain members cannot create guild statics")

	f.GuildRole(t, guild, member, guilds.RoleClassLeader)
	w = doRequest(t, member.UserID, http.MethodPost, payload, nil, staticsapi.Create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var st statics.Static
	require.NoError(t, db.First(&st).Error)
	assert.Equal(t, guild.WorldID, st.WorldID)
	assert.Equal(t, fraction.ID, st.FractionID, "fraction taken from the leader's character")
}

func TestCreate_SomeoneElsesCharacterRejected(t *testing.T) {
	_, f := setupAPI(t)

	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	victim := f.Character(t, f.User(t), race, world, nil)
	intruder := f.User(t)

	w := doRequest(t, intruder.ID, http.MethodPost, gin.H{"static": staticsapi.StaticPayload{
		Name:           "Hijacked",
		StaticableType: statics.StaticableCharacter,
		StaticableID:   victim.ID,
	}}, nil, staticsapi.Create)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMembers_AddAndRemoveByOwner(t *testing.T) {
	db, f := setupAPI(t)

	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	owner := f.Character(t, f.User(t), race, world, nil)
	recruit := f.Character(t, f.User(t), race, world, nil)

	st := f.CharacterStatic(t, owner, fraction)
	params := gin.Params{{Key: "id", Value: fmt.Sprint(st.ID)}}

	w := doRequest(t, recruit.UserID, http.MethodPost, gin.H{"character_id": recruit.ID}, params, staticsapi.AddMember)
	assert.Equal(t, http.StatusForbidden, w.Code, "only the owner manages the roster")

	w = doRequest(t, owner.UserID, http.MethodPost, gin.H{"character_id": recruit.ID}, params, staticsapi.AddMember)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var member statics.StaticMember
	require.NoError(t, db.Where("static_id = ?", st.ID).First(&member).Error)
	assert.Equal(t, recruit.ID, member.CharacterID)

	w = doRequest(t, owner.UserID, http.MethodDelete, gin.H{},
		gin.Params{{Key: "id", Value: fmt.Sprint(st.ID)}, {Key: "member_id", Value: fmt.Sprint(member.ID)}},
		staticsapi.RemoveMember)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, db.Model(&statics.StaticMember{}).Where("static_id = ?", st.ID).Count(&count).Error)
	assert.Zero(t, count)
}
