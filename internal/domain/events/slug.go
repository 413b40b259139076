package events

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	nonSlug   = regexp.MustCompile(`[^a-z0-9\-]+`)
	multiDash = regexp.MustCompile(`-+`)
)

// MakeSlug generates a URL-safe base slug from the event name.
// Example: "Molten Core farm" -> "molten-core-farm"
func MakeSlug(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "-")
	base = nonSlug.ReplaceAllString(base, "")
	base = multiDash.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")

	if base == "" {
		base = "event"
	}
	return base
}

// EnsureSlug assigns a unique slug to the event before it is created.
// Candidates are tried from least to most specific: the bare name, then
// name plus owner, then name plus owner plus a numeric suffix. Concurrent
// creators racing on the same name land on different suffixes without any
// locking; the unique index on the slug column is the final arbiter.
func EnsureSlug(db *gorm.DB, ev *Event) error {
	base := MakeSlug(ev.Name)

	candidates := []string{
		base,
		fmt.Sprintf("%s-%d", base, ev.OwnerID),
	}
	for _, cand := range candidates {
		taken, err := slugTaken(db, cand, ev.ID)
		if err != nil {
			return err
		}
		if !taken {
			ev.Slug = cand
			return nil
		}
	}

	for n := 2; ; n++ {
		cand := fmt.Sprintf("%s-%d-%d", base, ev.OwnerID, n)
		taken, err := slugTaken(db, cand, ev.ID)
		if err != nil {
			return err
		}
		if !taken {
			ev.Slug = cand
			return nil
		}
	}
}

func slugTaken(db *gorm.DB, slug string, selfID uint) (bool, error) {
	var n int64
	q := db.Model(&Event{}).Where("slug = ?", slug)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
