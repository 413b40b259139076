// Package fixtures builds persisted domain records for tests. Every helper
// fails the test on error so test bodies stay linear.
package fixtures

import (
	"fmt"
	"testing"
	"time"

	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/events"
	"guildhall/internal/domain/game"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/statics"
	"guildhall/internal/domain/users"

	"gorm.io/gorm"
)

type Fixtures struct {
	db  *gorm.DB
	seq int
}

func New(db *gorm.DB) *Fixtures {
	return &Fixtures{db: db}
}

func (f *Fixtures) next() int {
	f.seq++
	return f.seq
}

func (f *Fixtures) create(t *testing.T, record interface{}) {
	t.Helper()
	if err := f.db.Create(record).Error; err != nil {
		t.Fatalf("create fixture %T: %v", record, err)
	}
}

func (f *Fixtures) User(t *testing.T) *users.User {
	u := &users.User{
		Email:    fmt.Sprintf("user%d@example.com", f.next()),
		Password: "x",
		Role:     "user",
	}
	f.create(t, u)
	return u
}

func (f *Fixtures) World(t *testing.T) *game.World {
	w := &game.World{Name: fmt.Sprintf("World %d", f.next())}
	f.create(t, w)
	return w
}

func (f *Fixtures) Fraction(t *testing.T) *game.Fraction {
	fr := &game.Fraction{Name: fmt.Sprintf("Fraction %d", f.next())}
	f.create(t, fr)
	return fr
}

func (f *Fixtures) Race(t *testing.T, fraction *game.Fraction) *game.Race {
	r := &game.Race{Name: fmt.Sprintf("Race %d", f.next()), FractionID: fraction.ID}
	f.create(t, r)
	return r
}

func (f *Fixtures) Dungeon(t *testing.T, raid bool) *game.Dungeon {
	d := &game.Dungeon{Name: fmt.Sprintf("Dungeon %d", f.next()), Raid: raid}
	f.create(t, d)
	return d
}

func (f *Fixtures) Guild(t *testing.T, world *game.World) *guilds.Guild {
	g := &guilds.Guild{Name: fmt.Sprintf("Guild %d", f.next()), WorldID: world.ID}
	f.create(t, g)
	return g
}

func (f *Fixtures) Character(t *testing.T, user *users.User, race *game.Race, world *game.World, guild *guilds.Guild) *characters.Character {
	ch := &characters.Character{
		Name:    fmt.Sprintf("Char %d", f.next()),
		Level:   60,
		UserID:  user.ID,
		RaceID:  race.ID,
		WorldID: world.ID,
	}
	if guild != nil {
		ch.GuildID = &guild.ID
	}
	f.create(t, ch)
	return ch
}

func (f *Fixtures) GuildRole(t *testing.T, guild *guilds.Guild, ch *characters.Character, name string) *guilds.GuildRole {
	gr := &guilds.GuildRole{GuildID: guild.ID, CharacterID: ch.ID, Name: name}
	f.create(t, gr)
	return gr
}

func (f *Fixtures) GuildStatic(t *testing.T, guild *guilds.Guild, fraction *game.Fraction) *statics.Static {
	s := &statics.Static{
		Name:           fmt.Sprintf("Static %d", f.next()),
		StaticableType: statics.StaticableGuild,
		StaticableID:   guild.ID,
		WorldID:        guild.WorldID,
		FractionID:     fraction.ID,
	}
	f.create(t, s)
	return s
}

func (f *Fixtures) CharacterStatic(t *testing.T, owner *characters.Character, fraction *game.Fraction) *statics.Static {
	s := &statics.Static{
		Name:           fmt.Sprintf("Static %d", f.next()),
		StaticableType: statics.StaticableCharacter,
		StaticableID:   owner.ID,
		WorldID:        owner.WorldID,
		FractionID:     fraction.ID,
	}
	f.create(t, s)
	return s
}

func (f *Fixtures) StaticMember(t *testing.T, s *statics.Static, ch *characters.Character) *statics.StaticMember {
	m := &statics.StaticMember{StaticID: s.ID, CharacterID: ch.ID}
	f.create(t, m)
	return m
}

// Event persists a minimal valid event scoped by the given eventable.
func (f *Fixtures) Event(t *testing.T, owner *characters.Character, eventableType string, eventableID, fractionID uint) *events.Event {
	n := f.next()
	ev := &events.Event{
		Slug:          fmt.Sprintf("event-%d", n),
		Name:          fmt.Sprintf("Event %d", n),
		EventType:     events.TypeCustom,
		OwnerID:       owner.ID,
		EventableType: eventableType,
		EventableID:   eventableID,
		FractionID:    fractionID,
		StartTime:     time.Now().UTC().Add(48 * time.Hour),
	}
	f.create(t, ev)
	return ev
}
