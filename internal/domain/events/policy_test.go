package events_test

import (
	"testing"

	"guildhall/internal/domain/events"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/testing/fixtures"
	"guildhall/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanManage_GuildEventNeedsLeadership(t *testing.T) {
	db := testdb.New(t)
	f := fixtures.New(db)

	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	guild := f.Guild(t, world)

	leaderUser := f.User(t)
	leader := f.Character(t, leaderUser, race, world, guild)
	f.GuildRole(t, guild, leader, guilds.RoleClassLeader)

	plainUser := f.User(t)
	plain := f.Character(t, plainUser, race, world, guild)

	ev := f.Event(t, plain, events.EventableGuild, guild.ID, fraction.ID)

	ok, err := events.CanManage(db, leaderUser.ID, ev)
	require.NoError(t, err)
	assert.True(t, ok, "cl rank manages guild events")

	ok, err = events.CanManage(db, plainUser.ID, ev)
	require.NoError(t, err)
	assert.False(t, ok, "owning a guild event grants nothing without leadership")
}

func TestCanManage_GuildOwnedStaticGoesThroughLeadership(t *testing.T) {
	db := testdb.New(t)
	f := fixtures.New(db)

	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)
	guild := f.Guild(t, world)

	leaderUser := f.User(t)
	leader := f.Character(t, leaderUser, race, world, guild)
	f.GuildRole(t, guild, leader, guilds.RoleGuildMaster)

	plainUser := f.User(t)
	plain := f.Character(t, plainUser, race, world, guild)

	guildStatic := f.GuildStatic(t, guild, fraction)
	ev := f.Event(t, plain, events.EventableStatic, guildStatic.ID, fraction.ID)

	ok, err := events.CanManage(db, leaderUser.ID, ev)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = events.CanManage(db, plainUser.ID, ev)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanManage_WorldEventFallsBackToOwner(t *testing.T) {
	db := testdb.New(t)
	f := fixtures.New(db)

	world := f.World(t)
	fraction := f.Fraction(t)
	race := f.Race(t, fraction)

	ownerUser := f.User(t)
	owner := f.Character(t, ownerUser, race, world, nil)
	ev := f.Event(t, owner, events.EventableWorld, world.ID, fraction.ID)

	ok, err := events.CanManage(db, ownerUser.ID, ev)
	require.NoError(t, err)
	assert.True(t, ok)

	strangerUser := f.User(t)
	ok, err = events.CanManage(db, strangerUser.ID, ev)
	require.NoError(t, err)
	assert.False(t, ok)
}
