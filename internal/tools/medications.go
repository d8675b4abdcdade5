package tools

import (
	"context"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/google/uuid"
)

type reminderArgs struct {
	Date      string `json:"date" description:"Day of the reminder, YYYY-MM-DD" validate:"required,isotime"`
	TimeOfDay string `json:"time_of_day" description:"Time of day in 24h HH:MM" validate:"required,datetime=15:04"`
}

type addMedicationArgs struct {
	Name      string         `json:"name" description:"Medication name" validate:"required"`
	Dosage    string         `json:"dosage" description:"Dosage, e.g. 500mg" validate:"required"`
	Notes     string         `json:"notes,omitempty" description:"Free-form notes such as take with food"`
	StartDate string         `json:"start_date" description:"First day of the course, YYYY-MM-DD" validate:"required,isotime"`
	EndDate   string         `json:"end_date,omitempty" description:"Last day of the course, YYYY-MM-DD" validate:"omitempty,isotime"`
	Reminders []reminderArgs `json:"reminders,omitempty" description:"Reminder schedule" validate:"omitempty,dive"`
}

type markReminderArgs struct {
	ReminderID int    `json:"reminder_id" description:"Id of the reminder" validate:"required,min=1"`
	Status     string `json:"status" description:"Whether the dose was taken or missed" enum:"taken,missed" validate:"required,oneof=taken missed"`
}

func (a markReminderArgs) recordID() uint { return uint(a.ReminderID) }

type prescriptionRef struct {
	PrescriptionID int `json:"prescription_id" description:"Id of the prescription" validate:"required,min=1"`
}

func medicationTools(store *clinic.Store) []Tool {
	return []Tool{
		define("add_medication", "Add a medication for the user with an optional reminder schedule.",
			owned(func(ctx context.Context, userID uuid.UUID, in addMedicationArgs) (Result, error) {
				input := clinic.MedicationInput{
					Name:      in.Name,
					Dosage:    in.Dosage,
					Notes:     in.Notes,
					StartDate: mustTime(in.StartDate),
				}
				if in.EndDate != "" {
					end := mustTime(in.EndDate)
					input.EndDate = &end
				}
				for _, r := range in.Reminders {
					input.Reminders = append(input.Reminders, clinic.ReminderInput{Date: mustTime(r.Date), TimeOfDay: r.TimeOfDay})
				}

				med, reminders, err := store.AddMedication(ctx, userID, input)
				if err != nil {
					return nil, err
				}
				return &MedicationAdded{Medication: *med, Reminders: reminders, Message: "Medication added."}, nil
			})),
		define("list_medications", "List the user's medications.",
			owned(func(ctx context.Context, userID uuid.UUID, _ noArgs) (Result, error) {
				meds, err := store.ListMedications(ctx, userID)
				if err != nil {
					return nil, err
				}
				return &MedicationList{Medications: meds}, nil
			})),
		define("list_medication_reminders", "List the user's medication reminders.",
			owned(func(ctx context.Context, userID uuid.UUID, _ noArgs) (Result, error) {
				reminders, err := store.ListReminders(ctx, userID)
				if err != nil {
					return nil, err
				}
				return &ReminderList{Reminders: reminders}, nil
			})),
		ownedUpdate[models.MedicationReminder, markReminderArgs](store,
			"mark_medication_reminder", "Mark a medication reminder as taken or missed.", "Reminder",
			func(in markReminderArgs) (map[string]interface{}, error) {
				return map[string]interface{}{"status": in.Status}, nil
			},
			func(r *models.MedicationReminder) Result {
				return &ReminderUpdate{Reminder: *r, Message: "Reminder marked as " + r.Status + "."}
			}),
	}
}

func prescriptionTools(store *clinic.Store) []Tool {
	return []Tool{
		define("request_prescription_refill", "Request a refill of an active, refillable prescription.",
			owned(func(ctx context.Context, userID uuid.UUID, in prescriptionRef) (Result, error) {
				rx, err := store.RefillPrescription(ctx, userID, uint(in.PrescriptionID))
				if err != nil {
					return nil, err
				}
				return &PrescriptionRefill{Prescription: *rx, Message: "Refill requested and processed."}, nil
			})),
		define("list_prescriptions", "List the user's prescriptions.",
			owned(func(ctx context.Context, userID uuid.UUID, _ noArgs) (Result, error) {
				list, err := store.ListPrescriptions(ctx, userID)
				if err != nil {
					return nil, err
				}
				return &PrescriptionList{Prescriptions: list}, nil
			})),
		define("download_prescription", "Get a download link for a prescription file.",
			owned(func(ctx context.Context, userID uuid.UUID, in prescriptionRef) (Result, error) {
				url, err := store.PrescriptionFile(ctx, userID, uint(in.PrescriptionID))
				if err != nil {
					return nil, err
				}
				return &PrescriptionFile{URL: url}, nil
			})),
	}
}
