package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/ahmetk3436/medassist/internal/push"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []push.Payload
	gone map[string]bool
	fail error
}

func (f *fakeSender) Send(ctx context.Context, sub []byte, p push.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gone[string(sub)] {
		return push.ErrGone
	}
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, p)
	return nil
}

type fakeQueue struct {
	jobs []Job
	err  error
}

func (q *fakeQueue) Enqueue(ctx context.Context, job Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeAck struct {
	acked, nacked bool
}

func (a *fakeAck) Ack(bool) error        { a.acked = true; return nil }
func (a *fakeAck) Nack(bool, bool) error { a.nacked = true; return nil }

var fixedNow = time.Date(2025, 3, 14, 8, 30, 20, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedReminders creates one medication with reminders around fixedNow and
// returns its owner.
func seedReminders(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := uuid.New()
	med := &models.Medication{UserID: user, Name: "Metformin", Dosage: "500mg", StartDate: fixedNow}
	if err := db.Create(med).Error; err != nil {
		t.Fatalf("create medication: %v", err)
	}

	today := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	reminders := []models.MedicationReminder{
		{MedicationID: med.ID, UserID: user, Date: today, TimeOfDay: "08:30", Status: models.ReminderPending},
		{MedicationID: med.ID, UserID: user, Date: today, TimeOfDay: "08:30", Status: models.ReminderTaken},
		{MedicationID: med.ID, UserID: user, Date: today, TimeOfDay: "20:30", Status: models.ReminderPending},
		{MedicationID: med.ID, UserID: user, Date: today.Add(24 * time.Hour), TimeOfDay: "08:30", Status: models.ReminderPending},
	}
	if err := db.Create(&reminders).Error; err != nil {
		t.Fatalf("create reminders: %v", err)
	}
	return user
}

func subscribe(t *testing.T, db *gorm.DB, user uuid.UUID, raw string) {
	t.Helper()
	sub := &models.PushSubscription{UserID: user, Subscription: datatypes.JSON(raw)}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}
}

func TestDueMatchesTodayAndMinute(t *testing.T) {
	db := newTestDB(t)
	seedReminders(t, db)

	d := NewDispatcher(db, &fakeSender{}, nil)
	d.now = func() time.Time { return fixedNow }

	jobs, err := d.Due(context.Background())
	if err != nil {
		t.Fatalf("Due: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 due reminder, got %d", len(jobs))
	}
	if jobs[0].Medication != "Metformin" || jobs[0].Dosage != "500mg" || jobs[0].ID == "" {
		t.Fatalf("unexpected job: %+v", jobs[0])
	}
	if got := jobs[0].Payload().Body; got != "Time to take your medication: Metformin (500mg)" {
		t.Fatalf("payload body = %q", got)
	}
}

func TestSendDueInline(t *testing.T) {
	db := newTestDB(t)
	user := seedReminders(t, db)
	subscribe(t, db, user, `{"endpoint":"https://push.example/a"}`)
	subscribe(t, db, user, `{"endpoint":"https://push.example/gone"}`)

	sender := &fakeSender{gone: map[string]bool{`{"endpoint":"https://push.example/gone"}`: true}}
	d := NewDispatcher(db, sender, nil)
	d.now = func() time.Time { return fixedNow }

	rep, err := d.SendDue(context.Background())
	if err != nil {
		t.Fatalf("SendDue: %v", err)
	}
	if rep.Due != 1 || rep.Sent != 1 || rep.Failed != 1 || rep.Queued != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if len(sender.sent) != 1 || sender.sent[0].Title != "Medication Reminder" || sender.sent[0].Icon != "/icon-192.png" {
		t.Fatalf("unexpected pushes: %+v", sender.sent)
	}

	var subs int64
	db.Model(&models.PushSubscription{}).Count(&subs)
	if subs != 1 {
		t.Fatalf("expired subscription not removed, %d left", subs)
	}
	var audits int64
	db.Model(&models.AuditLog{}).Where("action = ?", "reminders.send").Count(&audits)
	if audits != 1 {
		t.Fatalf("expected one audit entry, got %d", audits)
	}
}

func TestSendDueQueuesAndFallsBack(t *testing.T) {
	db := newTestDB(t)
	user := seedReminders(t, db)
	subscribe(t, db, user, `{"endpoint":"https://push.example/a"}`)

	queue := &fakeQueue{}
	d := NewDispatcher(db, &fakeSender{}, queue)
	d.now = func() time.Time { return fixedNow }

	rep, err := d.SendDue(context.Background())
	if err != nil {
		t.Fatalf("SendDue: %v", err)
	}
	if rep.Queued != 1 || rep.Sent != 0 || len(queue.jobs) != 1 {
		t.Fatalf("expected job to be queued: %+v", rep)
	}

	queue.err = errors.New("broker down")
	rep, err = d.SendDue(context.Background())
	if err != nil {
		t.Fatalf("SendDue: %v", err)
	}
	if rep.Queued != 0 || rep.Sent != 1 {
		t.Fatalf("expected inline fallback: %+v", rep)
	}
}

func TestHandle(t *testing.T) {
	db := newTestDB(t)
	user := seedReminders(t, db)
	subscribe(t, db, user, `{"endpoint":"https://push.example/a"}`)

	sender := &fakeSender{}
	d := NewDispatcher(db, sender, nil)

	bad := &fakeAck{}
	d.Handle(context.Background(), []byte(`{nope`), bad)
	if !bad.nacked || bad.acked {
		t.Fatalf("malformed message should be nacked")
	}

	good := &fakeAck{}
	body := []byte(`{"id":"01HQ","reminder_id":1,"user_id":"` + user.String() + `","medication":"Metformin","dosage":"500mg"}`)
	d.Handle(context.Background(), body, good)
	if !good.acked || len(sender.sent) != 1 {
		t.Fatalf("expected delivery and ack, acked=%v sent=%d", good.acked, len(sender.sent))
	}
}

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	db := newTestDB(t)
	user := seedReminders(t, db)
	subscribe(t, db, user, `{"endpoint":"https://push.example/a"}`)

	sender := &fakeSender{}
	d := NewDispatcher(db, sender, nil)
	d.now = func() time.Time { return fixedNow }

	s := NewScheduler(d, time.Hour)
	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sender.mu.Lock()
		n := len(sender.sent)
		sender.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.Stop()

	if len(sender.sent) != 1 {
		t.Fatalf("expected the startup run to deliver one push, got %d", len(sender.sent))
	}
}
