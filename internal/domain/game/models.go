package game

import "time"

// Static reference tables: worlds, fractions, races, dungeons and the role
// catalog. These change through admin tooling only, so API handlers serve
// them through the read-through cache in internal/cache.

type World struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;index" json:"name"`
	Zone string `gorm:"not null;default:''" json:"zone"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Fraction struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Race determines a character's fraction.
type Race struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Name       string   `gorm:"not null" json:"name"`
	FractionID uint     `gorm:"not null;index" json:"fraction_id"`
	Fraction   Fraction `json:"-"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Dungeon struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Raid bool   `gorm:"not null;default:false" json:"raid"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Role is a combat role a character can queue as (tank/healer/dd).
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;uniqueIndex" json:"name"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
