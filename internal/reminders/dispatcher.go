// Package reminders finds medication reminders that are due and delivers
// them as Web Push notifications, either inline or through a RabbitMQ queue.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/push"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Job is one due reminder ready for delivery.
type Job struct {
	ID         string    `json:"id"`
	ReminderID uint      `json:"reminder_id"`
	UserID     uuid.UUID `json:"user_id"`
	Medication string    `json:"medication"`
	Dosage     string    `json:"dosage"`
	DueAt      time.Time `json:"due_at"`
}

func (j Job) Payload() push.Payload {
	return push.Payload{
		Title: "Medication Reminder",
		Body:  fmt.Sprintf("Time to take your medication: %s (%s)", j.Medication, j.Dosage),
		Icon:  "/icon-192.png",
	}
}

// Enqueuer hands jobs to an out-of-process worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

type Report struct {
	Due    int `json:"due"`
	Queued int `json:"queued"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type Dispatcher struct {
	db     *gorm.DB
	sender push.Sender
	queue  Enqueuer
	now    func() time.Time
}

// NewDispatcher builds a dispatcher. A nil queue delivers inline; a nil
// sender drops deliveries.
func NewDispatcher(db *gorm.DB, sender push.Sender, queue Enqueuer) *Dispatcher {
	return &Dispatcher{db: db, sender: sender, queue: queue, now: time.Now}
}

// Due returns pending reminders dated today (UTC) whose time of day is the
// current minute.
func (d *Dispatcher) Due(ctx context.Context) ([]Job, error) {
	now := d.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	hhmm := now.Format("15:04")

	var rows []struct {
		ID     uint
		UserID uuid.UUID
		Name   string
		Dosage string
	}
	err := d.db.WithContext(ctx).
		Table("medication_reminders").
		Select("medication_reminders.id, medication_reminders.user_id, medications.name, medications.dosage").
		Joins("JOIN medications ON medications.id = medication_reminders.medication_id").
		Where("medication_reminders.status = ?", models.ReminderPending).
		Where("medication_reminders.date >= ? AND medication_reminders.date < ?", day, day.Add(24*time.Hour)).
		Where("medication_reminders.time_of_day = ?", hhmm).
		Order("medication_reminders.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find due reminders: %w", err)
	}

	jobs := make([]Job, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, Job{
			ID:         ulid.Make().String(),
			ReminderID: r.ID,
			UserID:     r.UserID,
			Medication: r.Name,
			Dosage:     r.Dosage,
			DueAt:      now,
		})
	}
	return jobs, nil
}

// SendDue delivers every due reminder. Queue failures fall back to inline
// delivery so a broker outage never drops a reminder.
func (d *Dispatcher) SendDue(ctx context.Context) (Report, error) {
	jobs, err := d.Due(ctx)
	if err != nil {
		return Report{}, err
	}

	rep := Report{Due: len(jobs)}
	for _, job := range jobs {
		if d.queue != nil {
			err := d.queue.Enqueue(ctx, job)
			if err == nil {
				rep.Queued++
				continue
			}
			slog.Warn("Failed to enqueue reminder, delivering inline", "job_id", job.ID, "error", err)
		}
		sent, failed := d.Deliver(ctx, job)
		rep.Sent += sent
		rep.Failed += failed
	}

	if rep.Due > 0 {
		details := map[string]interface{}{"due": rep.Due, "queued": rep.Queued, "sent": rep.Sent, "failed": rep.Failed}
		if err := database.Audit(ctx, d.db, "system", "reminders.send", "", details); err != nil {
			slog.Error("Failed to record reminder run", "error", err)
		}
	}
	return rep, nil
}

// Deliver pushes one job to every subscription of its user. Subscriptions the
// push service reports as gone are removed.
func (d *Dispatcher) Deliver(ctx context.Context, job Job) (sent, failed int) {
	if d.sender == nil {
		slog.Warn("Push is not configured, dropping reminder", "job_id", job.ID, "reminder_id", job.ReminderID)
		return 0, 0
	}

	var subs []models.PushSubscription
	if err := d.db.WithContext(ctx).Where("user_id = ?", job.UserID).Find(&subs).Error; err != nil {
		slog.Error("Failed to load push subscriptions", "user_id", job.UserID, "error", err)
		return 0, 1
	}

	payload := job.Payload()
	for _, sub := range subs {
		err := d.sender.Send(ctx, sub.Subscription, payload)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, push.ErrGone):
			failed++
			if err := d.db.WithContext(ctx).Delete(&models.PushSubscription{}, sub.ID).Error; err != nil {
				slog.Error("Failed to drop expired subscription", "subscription_id", sub.ID, "error", err)
			}
		default:
			failed++
			slog.Error("Push notification error", "job_id", job.ID, "subscription_id", sub.ID, "error", err)
		}
	}
	return sent, failed
}
