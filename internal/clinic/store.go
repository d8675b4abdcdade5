// Package clinic holds the domain store operations behind both the chat tools
// and the REST endpoints. Every operation on a user's records is scoped by
// the caller's id.
package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

// ─── Doctors ─────────────────────────────────────────────────────────────

func (s *Store) ListDoctors(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// FindDoctor looks a doctor up by id, or by a case-insensitive partial name
// when id is zero.
func (s *Store) FindDoctor(ctx context.Context, id uint, name string) (*models.Doctor, error) {
	var doctor models.Doctor
	q := s.db.WithContext(ctx)
	switch {
	case id != 0:
		q = q.Where("id = ?", id)
	case strings.TrimSpace(name) != "":
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(name))+"%").Order("id ASC")
	default:
		return nil, &NotFoundError{Entity: "Doctor"}
	}
	err := q.First(&doctor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "Doctor"}
	}
	if err != nil {
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	return &doctor, nil
}

// ─── Appointments ────────────────────────────────────────────────────────

type DoctorRef struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

type AppointmentView struct {
	ID     uint       `json:"id"`
	Time   time.Time  `json:"time"`
	Status string     `json:"status"`
	Doctor *DoctorRef `json:"doctor"`
}

func (s *Store) BookAppointment(ctx context.Context, userID uuid.UUID, doctorID uint, at time.Time) (*models.Appointment, *models.Doctor, error) {
	doctor, err := s.FindDoctor(ctx, doctorID, "")
	if err != nil {
		return nil, nil, err
	}
	appt := models.Appointment{
		DoctorID: doctorID,
		UserID:   userID,
		Time:     at.UTC(),
		Status:   models.StatusBooked,
	}
	if err := s.db.WithContext(ctx).Create(&appt).Error; err != nil {
		return nil, nil, fmt.Errorf("book appointment: %w", err)
	}
	return &appt, doctor, nil
}

func (s *Store) ListAppointments(ctx context.Context, userID uuid.UUID) ([]AppointmentView, error) {
	var rows []struct {
		ID              uint
		Time            time.Time
		Status          string
		DoctorID        *uint
		DoctorName      *string
		DoctorSpecialty *string
	}
	err := s.db.WithContext(ctx).Table("appointments").
		Select("appointments.id, appointments.time, appointments.status, doctors.id AS doctor_id, doctors.name AS doctor_name, doctors.specialty AS doctor_specialty").
		Joins("LEFT JOIN doctors ON doctors.id = appointments.doctor_id").
		Where("appointments.user_id = ?", userID).
		Order("appointments.time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	out := make([]AppointmentView, 0, len(rows))
	for _, r := range rows {
		v := AppointmentView{ID: r.ID, Time: r.Time, Status: r.Status}
		if r.DoctorID != nil {
			v.Doctor = &DoctorRef{ID: *r.DoctorID, Name: deref(r.DoctorName), Specialty: deref(r.DoctorSpecialty)}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Store) CancelAppointment(ctx context.Context, userID uuid.UUID, id uint) (*models.Appointment, error) {
	return UpdateOwned[models.Appointment](ctx, s.db, "Appointment", id, userID, map[string]interface{}{
		"status": models.StatusCancelled,
	})
}

func (s *Store) RescheduleAppointment(ctx context.Context, userID uuid.UUID, id uint, at time.Time) (*models.Appointment, error) {
	return UpdateOwned[models.Appointment](ctx, s.db, "Appointment", id, userID, map[string]interface{}{
		"time":   at.UTC(),
		"status": models.StatusRescheduled,
	})
}

// ─── Ambulance ───────────────────────────────────────────────────────────

func (s *Store) BookAmbulance(ctx context.Context, userID uuid.UUID, pickup, destination string, at time.Time) (*models.AmbulanceBooking, error) {
	booking := models.AmbulanceBooking{
		UserID:         userID,
		PickupLocation: pickup,
		Destination:    destination,
		Time:           at.UTC(),
		Status:         models.StatusBooked,
	}
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("book ambulance: %w", err)
	}
	return &booking, nil
}

func (s *Store) ListAmbulanceBookings(ctx context.Context, userID uuid.UUID) ([]models.AmbulanceBooking, error) {
	return ListOwned[models.AmbulanceBooking](ctx, s.db, userID, "time ASC")
}

// ─── Medications ─────────────────────────────────────────────────────────

type ReminderInput struct {
	Date      time.Time
	TimeOfDay string
}

type MedicationInput struct {
	Name      string
	Dosage    string
	Notes     string
	StartDate time.Time
	EndDate   *time.Time
	Reminders []ReminderInput
}

// AddMedication inserts the medication and its reminder schedule together.
func (s *Store) AddMedication(ctx context.Context, userID uuid.UUID, in MedicationInput) (*models.Medication, []models.MedicationReminder, error) {
	med := models.Medication{
		UserID:    userID,
		Name:      in.Name,
		Dosage:    in.Dosage,
		Notes:     in.Notes,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate,
	}
	reminders := make([]models.MedicationReminder, 0, len(in.Reminders))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&med).Error; err != nil {
			return err
		}
		for _, r := range in.Reminders {
			reminders = append(reminders, models.MedicationReminder{
				MedicationID: med.ID,
				UserID:       userID,
				Date:         r.Date.UTC(),
				TimeOfDay:    r.TimeOfDay,
				Status:       models.ReminderPending,
			})
		}
		if len(reminders) == 0 {
			return nil
		}
		return tx.Create(&reminders).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("add medication: %w", err)
	}
	return &med, reminders, nil
}

func (s *Store) ListMedications(ctx context.Context, userID uuid.UUID) ([]models.Medication, error) {
	return ListOwned[models.Medication](ctx, s.db, userID, "start_date ASC")
}

func (s *Store) ListReminders(ctx context.Context, userID uuid.UUID) ([]models.MedicationReminder, error) {
	return ListOwned[models.MedicationReminder](ctx, s.db, userID, "date ASC, time_of_day ASC")
}

func (s *Store) MarkReminder(ctx context.Context, userID uuid.UUID, id uint, status string) (*models.MedicationReminder, error) {
	return UpdateOwned[models.MedicationReminder](ctx, s.db, "Reminder", id, userID, map[string]interface{}{
		"status": status,
	})
}

// ─── Prescriptions ───────────────────────────────────────────────────────

// RefillPrescription spends one refill. The decrement is guarded on
// refills_remaining > 0 so concurrent refills cannot go negative.
func (s *Store) RefillPrescription(ctx context.Context, userID uuid.UUID, id uint) (*models.Prescription, error) {
	rx, err := FindOwned[models.Prescription](ctx, s.db, "Prescription", id, userID)
	if err != nil {
		return nil, err
	}
	if !rx.Refillable || rx.RefillsRemaining <= 0 || rx.Status != models.PrescriptionActive {
		return nil, ErrNotRefillable
	}

	res := s.db.WithContext(ctx).Model(&models.Prescription{}).
		Where("id = ? AND user_id = ? AND refills_remaining > 0", id, userID).
		Update("refills_remaining", gorm.Expr("refills_remaining - 1"))
	if res.Error != nil {
		return nil, fmt.Errorf("refill prescription %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotRefillable
	}
	return FindOwned[models.Prescription](ctx, s.db, "Prescription", id, userID)
}

func (s *Store) ListPrescriptions(ctx context.Context, userID uuid.UUID) ([]models.Prescription, error) {
	return ListOwned[models.Prescription](ctx, s.db, userID, "issued_at DESC")
}

func (s *Store) PrescriptionFile(ctx context.Context, userID uuid.UUID, id uint) (string, error) {
	rx, err := FindOwned[models.Prescription](ctx, s.db, "Prescription", id, userID)
	if err != nil {
		return "", err
	}
	if rx.FileURL == "" {
		return "", &NotFoundError{Entity: "Prescription file"}
	}
	return rx.FileURL, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
