package database

import (
	"log"
	"os"

	"guildhall/internal/domain/characters"
	"guildhall/internal/domain/events"
	"guildhall/internal/domain/game"
	"guildhall/internal/domain/guilds"
	"guildhall/internal/domain/statics"
	"guildhall/internal/domain/subscribes"
	"guildhall/internal/domain/users"
	"guildhall/internal/jobs"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	log.Println("Connected and migrated successfully")
}

// Migrate runs AutoMigrate for every domain model. Tests reuse it against
// an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// core
		&users.User{},

		// reference data
		&game.World{},
		&game.Fraction{},
		&game.Race{},
		&game.Dungeon{},
		&game.Role{},

		// guilds and characters
		&guilds.Guild{},
		&guilds.GuildRole{},
		&guilds.GuildInvite{},
		&characters.Character{},
		&characters.CharacterRole{},

		// statics
		&statics.Static{},
		&statics.StaticMember{},

		// events
		&events.Event{},
		&events.GroupRole{},
		&subscribes.Subscribe{},
		&jobs.EventNotification{},
	)
}
