package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetk3436/medassist/internal/database"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
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
	if err := database.Seed(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewStore(db)
}

func TestBookedAppointmentIsListedOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	at := time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)

	appt, doctor, err := store.BookAppointment(ctx, user, 1, at)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if doctor.Name != "Dr. Alice Smith" || appt.Status != models.StatusBooked {
		t.Fatalf("unexpected booking %+v with doctor %+v", appt, doctor)
	}

	list, err := store.ListAppointments(ctx, user)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != appt.ID {
		t.Fatalf("expected exactly the booked appointment, got %+v", list)
	}
	if list[0].Doctor == nil || list[0].Doctor.Specialty != "Cardiology" {
		t.Fatalf("doctor join missing: %+v", list[0])
	}

	other, err := store.ListAppointments(ctx, uuid.New())
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("another user must not see the appointment, got %d rows", len(other))
	}
}

func TestBookAppointmentUnknownDoctor(t *testing.T) {
	store := newTestStore(t)
	_, _, err := store.BookAppointment(context.Background(), uuid.New(), 9999, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestForeignRecordLooksMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner, intruder := uuid.New(), uuid.New()

	appt, _, err := store.BookAppointment(ctx, owner, 2, time.Now().Add(24*time.Hour))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	_, foreignErr := store.CancelAppointment(ctx, intruder, appt.ID)
	_, missingErr := store.CancelAppointment(ctx, owner, appt.ID+1000)
	if !errors.Is(foreignErr, ErrNotFound) || !errors.Is(missingErr, ErrNotFound) {
		t.Fatalf("expected not found for both, got %v / %v", foreignErr, missingErr)
	}
	if foreignErr.Error() != missingErr.Error() {
		t.Fatalf("foreign and missing records must be indistinguishable: %q vs %q", foreignErr, missingErr)
	}
	if foreignErr.Error() != "Appointment not found or not yours" {
		t.Fatalf("unexpected message %q", foreignErr)
	}

	var stored models.Appointment
	store.DB().First(&stored, appt.ID)
	if stored.Status != models.StatusBooked {
		t.Fatalf("intruder changed status to %q", stored.Status)
	}
}

func TestRescheduleAppointment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	appt, _, err := store.BookAppointment(ctx, user, 3, time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	newTime := time.Date(2030, 1, 2, 15, 30, 0, 0, time.UTC)
	updated, err := store.RescheduleAppointment(ctx, user, appt.ID, newTime)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if updated.Status != models.StatusRescheduled || !updated.Time.Equal(newTime) {
		t.Fatalf("unexpected rescheduled row %+v", updated)
	}
}

func TestRefillPrescription(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	rx := models.Prescription{
		UserID:           user,
		DoctorID:         1,
		Medication:       "Lisinopril",
		Dosage:           "10mg",
		IssuedAt:         time.Now().UTC(),
		Refillable:       true,
		RefillsRemaining: 1,
		Status:           models.PrescriptionActive,
	}
	if err := store.DB().Create(&rx).Error; err != nil {
		t.Fatalf("create prescription: %v", err)
	}

	refilled, err := store.RefillPrescription(ctx, user, rx.ID)
	if err != nil {
		t.Fatalf("first refill: %v", err)
	}
	if refilled.RefillsRemaining != 0 {
		t.Fatalf("refills_remaining = %d, want 0", refilled.RefillsRemaining)
	}

	if _, err := store.RefillPrescription(ctx, user, rx.ID); !errors.Is(err, ErrNotRefillable) {
		t.Fatalf("second refill should be refused, got %v", err)
	}
	if _, err := store.RefillPrescription(ctx, uuid.New(), rx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign refill should be not found, got %v", err)
	}
}

func TestRefillRequiresActivePrescription(t *testing.T) {
	store := newTestStore(t)
	user := uuid.New()
	rx := models.Prescription{
		UserID:           user,
		DoctorID:         1,
		Medication:       "Metformin",
		Dosage:           "500mg",
		IssuedAt:         time.Now().UTC(),
		Refillable:       true,
		RefillsRemaining: 3,
		Status:           models.PrescriptionExpired,
	}
	store.DB().Create(&rx)

	if _, err := store.RefillPrescription(context.Background(), user, rx.ID); !errors.Is(err, ErrNotRefillable) {
		t.Fatalf("expired prescription must not refill, got %v", err)
	}
}

func TestListLabsKeepsOrder(t *testing.T) {
	store := newTestStore(t)
	labs, err := store.ListLabs(context.Background())
	if err != nil {
		t.Fatalf("list labs: %v", err)
	}
	if len(labs) != 2 {
		t.Fatalf("expected 2 labs, got %d", len(labs))
	}
	if labs[0].Name != "City Lab" || labs[1].Name != "Health Diagnostics" {
		t.Fatalf("lab order not preserved: %q, %q", labs[0].Name, labs[1].Name)
	}
	if len(labs[0].Tests) != 9 || len(labs[1].Tests) != 7 {
		t.Fatalf("unexpected test counts %d / %d", len(labs[0].Tests), len(labs[1].Tests))
	}
	for _, test := range labs[1].Tests {
		if test.LabID != labs[1].ID {
			t.Fatalf("test %q attached to wrong lab", test.Name)
		}
	}
}

func TestBookLabTestRejectsTestFromOtherLab(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	labs, _ := store.ListLabs(ctx)
	foreignTest := labs[1].Tests[0]

	_, _, _, err := store.BookLabTest(ctx, uuid.New(), labs[0].ID, foreignTest.ID, time.Now(), models.LocationClinic)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	user := uuid.New()
	booking, lab, test, err := store.BookLabTest(ctx, user, labs[0].ID, labs[0].Tests[0].ID, time.Now(), models.LocationHome)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if lab.Name != "City Lab" || test.Name != "Blood Test" || booking.LocationType != models.LocationHome {
		t.Fatalf("unexpected booking enrichment: %+v %+v %+v", booking, lab, test)
	}

	views, err := store.ListLabBookings(ctx, user)
	if err != nil {
		t.Fatalf("list lab bookings: %v", err)
	}
	if len(views) != 1 || views[0].Lab == nil || views[0].Test == nil || views[0].Test.Type != "blood" {
		t.Fatalf("unexpected lab booking views %+v", views)
	}
}

func TestAddMedicationWithReminders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	day := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

	med, reminders, err := store.AddMedication(ctx, user, MedicationInput{
		Name:      "Amoxicillin",
		Dosage:    "250mg",
		StartDate: day,
		Reminders: []ReminderInput{
			{Date: day, TimeOfDay: "08:00"},
			{Date: day, TimeOfDay: "20:00"},
		},
	})
	if err != nil {
		t.Fatalf("add medication: %v", err)
	}
	if len(reminders) != 2 || reminders[0].MedicationID != med.ID {
		t.Fatalf("unexpected reminders %+v", reminders)
	}

	marked, err := store.MarkReminder(ctx, user, reminders[0].ID, models.ReminderTaken)
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if marked.Status != models.ReminderTaken {
		t.Fatalf("status = %q, want taken", marked.Status)
	}

	listed, err := store.ListReminders(ctx, user)
	if err != nil {
		t.Fatalf("list reminders: %v", err)
	}
	if len(listed) != 2 || listed[0].TimeOfDay != "08:00" {
		t.Fatalf("unexpected reminder listing %+v", listed)
	}
}

func TestFindDoctorByName(t *testing.T) {
	store := newTestStore(t)
	doctor, err := store.FindDoctor(context.Background(), 0, "emily")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if doctor.Specialty != "Orthopedics" {
		t.Fatalf("unexpected doctor %+v", doctor)
	}

	_, err = store.FindDoctor(context.Background(), 0, "nobody-by-that-name")
	if err == nil || err.Error() != "Doctor not found" {
		t.Fatalf("expected 'Doctor not found', got %v", err)
	}
}

func TestPrescriptionFile(t *testing.T) {
	store := newTestStore(t)
	user := uuid.New()
	withFile := models.Prescription{UserID: user, DoctorID: 1, Medication: "A", Dosage: "1", IssuedAt: time.Now(), FileURL: "https://files.example/rx.pdf", Status: models.PrescriptionActive}
	withoutFile := models.Prescription{UserID: user, DoctorID: 1, Medication: "B", Dosage: "1", IssuedAt: time.Now(), Status: models.PrescriptionActive}
	store.DB().Create(&withFile)
	store.DB().Create(&withoutFile)

	url, err := store.PrescriptionFile(context.Background(), user, withFile.ID)
	if err != nil || url != withFile.FileURL {
		t.Fatalf("unexpected file lookup %q, %v", url, err)
	}
	if _, err := store.PrescriptionFile(context.Background(), user, withoutFile.ID); err == nil || err.Error() != "Prescription file not found" {
		t.Fatalf("expected 'Prescription file not found', got %v", err)
	}
}
