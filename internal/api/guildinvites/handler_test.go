package guildinvites_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"guildhall/database"
	invitesapi "guildhall/internal/api/guildinvites"
	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/guilds"
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

func doRequest(t *testing.T, userID uint, body interface{}, params gin.Params, handler gin.HandlerFunc) *httptest.ResponseRecorder {
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
	c.Request = httptest.NewRequest(http.MethodPost, "/guild_invites", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", userID)
	c.Params = params
	handler(c)
	return w
}

type world struct {
	f        *fixtures.Fixtures
	guild    *guilds.Guild
	leader   *characters.Character
	outsider *characters.Character
}

func seed(t *testing.T, f *fixtures.Fixtures) world {
	w := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	guild := f.Guild(t, w)

	leader := f.Character(t, f.User(t), race, w, guild)
	f.GuildRole(t, guild, leader, guilds.RoleGuildMaster)
	outsider := f.Character(t, f.User(t), race, w, nil)

	return world{f: f, guild: guild, leader: leader, outsider: outsider}
}

func TestCreate_GuildSideNeedsLeadership(t *testing.T) {
	_, f := setupAPI(t)
	s := seed(t, f)

	payload := gin.H{"guild_invite": invitesapi.InvitePayload{
		GuildID:     s.guild.ID,
		CharacterID: s.outsider.ID,
		FromGuild:   true,
	}}

	w := doRequest(t, s.outsider.UserID, payload, nil, invitesapi.Create)
	assert.Equal(t, http.StatusForbidden, w.Code, "only leadership invites on the guild's behalf")

	w = doRequest(t, s.leader.UserID, payload, nil, invitesapi.Create)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestCreate_RejectsDuplicateAndGuilded(t *testing.T) {
	db, f := setupAPI(t)
	s := seed(t, f)

	payload := gin.H{"guild_invite": invitesapi.InvitePayload{
		GuildID:     s.guild.ID,
		CharacterID: s.outsider.ID,
	}}

	w := doRequest(t, s.outsider.UserID, payload, nil, invitesapi.Create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, s.outsider.UserID, payload, nil, invitesapi.Create)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Once the character has a guild no new invite is possible.
	require.NoError(t, db.Model(&characters.Character{}).
		Where("id = ?", s.outsider.ID).
		Update("guild_id", s.guild.ID).Error)
	other := f.Guild(t, f.World(t))
	w = doRequest(t, s.outsider.UserID, gin.H{"guild_invite": invitesapi.InvitePayload{
		GuildID:     other.ID,
		CharacterID: s.outsider.ID,
	}}, nil, invitesapi.Create)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApprove_ReceivingSideOnly(t *testing.T) {
	db, f := setupAPI(t)
	s := seed(t, f)

	// Guild-initiated invite: the character's user decides, not the guild.
	invite := &guilds.GuildInvite{
		GuildID:     s.guild.ID,
		CharacterID: s.outsider.ID,
		FromGuild:   true,
		Status:      guilds.InviteStatusPending,
	}
	require.NoError(t, db.Create(invite).Error)
	params := gin.Params{{Key: "id", Value: fmt.Sprint(invite.ID)}}

	w := doRequest(t, s.leader.UserID, nil, params, invitesapi.Approve)
	assert.Equal(t, http.StatusForbidden, w.Code, "the inviting side cannot approve its own invite")

	w = doRequest(t, s.outsider.UserID, nil, params, invitesapi.Approve)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ch characters.Character
	require.NoError(t, db.First(&ch, s.outsider.ID).Error)
	require.NotNil(t, ch.GuildID)
	assert.Equal(t, s.guild.ID, *ch.GuildID)
}

func TestApprove_RemovesAllPendingInvitesForCharacter(t *testing.T) {
	db, f := setupAPI(t)
	s := seed(t, f)
	other := f.Guild(t, f.World(t))

	first := &guilds.GuildInvite{GuildID: s.guild.ID, CharacterID: s.outsider.ID, FromGuild: true}
	second := &guilds.GuildInvite{GuildID: other.ID, CharacterID: s.outsider.ID, FromGuild: true}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	w := doRequest(t, s.outsider.UserID, nil,
		gin.Params{{Key: "id", Value: fmt.Sprint(first.ID)}}, invitesapi.Approve)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var count int64
	require.NoError(t, db.Model(&guilds.GuildInvite{}).
		Where("character_id = ?", s.outsider.ID).
		Count(&count).Error)
	assert.Zero(t, count, "joining retires every open invite")
}

func TestDecline_MarksInviteWithoutDeleting(t *testing.T) {
	db, f := setupAPI(t)
	s := seed(t, f)

	invite := &guilds.GuildInvite{GuildID: s.guild.ID, CharacterID: s.outsider.ID, FromGuild: true}
	require.NoError(t, db.Create(invite).Error)

	w := doRequest(t, s.outsider.UserID, nil,
		gin.Params{{Key: "id", Value: fmt.Sprint(invite.ID)}}, invitesapi.Decline)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded guilds.GuildInvite
	require.NoError(t, db.First(&reloaded, invite.ID).Error)
	assert.Equal(t, guilds.InviteStatusDeclined, reloaded.Status)

	var ch characters.Character
	require.NoError(t, db.First(&ch, s.outsider.ID).Error)
	assert.Nil(t, ch.GuildID)
}

func TestIndex_GuildListingNeedsLeadership(t *testing.T) {
	db, f := setupAPI(t)
	s := seed(t, f)

	invite := &guilds.GuildInvite{GuildID: s.guild.ID, CharacterID: s.outsider.ID}
	require.NoError(t, db.Create(invite).Error)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/guild_invites?guild_id=%d", s.guild.ID), nil)
	c.Set("user_id", s.outsider.UserID)
	invitesapi.Index(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/guild_invites?guild_id=%d", s.guild.ID), nil)
	c.Set("user_id", s.leader.UserID)
	invitesapi.Index(c)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
