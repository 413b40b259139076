package jobs

import (
	"errors"
	"log"
	"time"

	"guildhall/internal/domain/events"
	"guildhall/internal/domain/subscribes"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// EventNotification is a pending reminder keyed by event. The row doubles as
// the job handle: scheduling writes it, the cron sweep dispatches it and
// marks it sent. Delivery is at-least-once: a crash between notify and the
// sent-at update redelivers on the next sweep.
type EventNotification struct {
	ID       string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventID  uint       `gorm:"not null;index" json:"event_id"`
	RemindAt time.Time  `gorm:"not null;index" json:"remind_at"`
	SentAt   *time.Time `gorm:"index" json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers a reminder for an event. The delivery mechanics
// (mail, websocket push) live elsewhere; the scheduler only triggers.
type Notifier interface {
	NotifyEventReminder(ev *events.Event, signedCount int64) error
}

// LogNotifier writes reminders to the application log. Stand-in delivery
// until a real channel is wired.
type LogNotifier struct{}

func (LogNotifier) NotifyEventReminder(ev *events.Event, signedCount int64) error {
	log.Printf("reminder: event %q (%d) closes at %s, %d signed",
		ev.Name, ev.ID, ev.CloseTime().Format(time.RFC3339), signedCount)
	return nil
}

// Scheduler owns reminder bookkeeping: a minutely cron sweep dispatches due
// notifications to the Notifier.
type Scheduler struct {
	db       *gorm.DB
	cron     *cron.Cron
	notifier Notifier
}

// Default is the process-wide scheduler, set by Init in main. It stays nil
// in tests and tooling that never start the sweep; ScheduleEventReminder on
// a nil scheduler is a no-op so event creation never blocks on it.
var Default *Scheduler

// Init builds the default scheduler. Call Start on the result to begin the sweep.
func Init(db *gorm.DB, notifier Notifier) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	Default = &Scheduler{
		db:       db,
		cron:     cron.New(),
		notifier: notifier,
	}
	return Default
}

// Start begins the minutely dispatch sweep.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.dispatchDue); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the sweep; in-flight dispatches run to completion.
func (s *Scheduler) Stop() {
	if s != nil && s.cron != nil {
		s.cron.Stop()
	}
}

// ScheduleEventReminder enqueues a reminder firing when the event enters its
// closing window. Returns the job handle. Fire-and-forget: callers treat a
// failure here as non-fatal to event creation.
func (s *Scheduler) ScheduleEventReminder(eventID uint) (string, error) {
	if s == nil {
		return "", nil
	}
	var ev events.Event
	if err := s.db.First(&ev, eventID).Error; err != nil {
		return "", err
	}
	n := EventNotification{
		ID:       uuid.NewString(),
		EventID:  ev.ID,
		RemindAt: ev.CloseTime(),
	}
	if err := s.db.Create(&n).Error; err != nil {
		return "", err
	}
	return n.ID, nil
}

func (s *Scheduler) dispatchDue() {
	var due []EventNotification
	err := s.db.Where("sent_at IS NULL AND remind_at <= ?", time.Now().UTC()).
		Find(&due).Error
	if err != nil {
		log.Println("reminder sweep failed:", err)
		return
	}

	for _, n := range due {
		if err := s.dispatch(n); err != nil {
			log.Printf("reminder %s for event %d failed: %v", n.ID, n.EventID, err)
		}
	}
}

func (s *Scheduler) dispatch(n EventNotification) error {
	var ev events.Event
	if err := s.db.First(&ev, n.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Event deleted after scheduling; retire the notification.
			return s.markSent(n)
		}
		return err
	}

	signed, err := subscribes.SignedCount(s.db, ev.ID)
	if err != nil {
		return err
	}
	if err := s.notifier.NotifyEventReminder(&ev, signed); err != nil {
		return err
	}
	return s.markSent(n)
}

func (s *Scheduler) markSent(n EventNotification) error {
	now := time.Now().UTC()
	return s.db.Model(&EventNotification{}).
		Where("id = ?", n.ID).
		Update("sent_at", now).Error
}
