package tools

import (
	"fmt"
	"strings"

	"github.com/ahmetk3436/medassist/internal/models"
)

// TextRenderer produces the short plain-text summaries shown next to tool
// calls in a transcript.
type TextRenderer struct{}

var _ Renderer = TextRenderer{}

const timeFormat = "Mon Jan 2 2006 15:04 MST"

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func (TextRenderer) DoctorList(r *DoctorList) string {
	if len(r.Doctors) == 0 {
		return "No doctors available."
	}
	names := make([]string, 0, len(r.Doctors))
	for _, d := range r.Doctors {
		names = append(names, fmt.Sprintf("%s (%s)", d.Name, d.Specialty))
	}
	return plural(len(r.Doctors), "doctor") + ": " + strings.Join(names, ", ")
}

func (TextRenderer) DoctorProfile(r *DoctorProfile) string {
	d := r.Doctor
	return fmt.Sprintf("%s, %s at %s. %d years of experience, available %s, fee $%d.",
		d.Name, d.Specialty, d.Hospital, d.Experience, d.Availability, d.Fees)
}

func (TextRenderer) AppointmentConfirmation(r *AppointmentConfirmation) string {
	return fmt.Sprintf("Booked appointment #%d with %s on %s.",
		r.Appointment.ID, r.Doctor.Name, r.Appointment.Time.Format(timeFormat))
}

func (TextRenderer) AppointmentList(r *AppointmentList) string {
	if len(r.Appointments) == 0 {
		return "No appointments."
	}
	lines := make([]string, 0, len(r.Appointments))
	for _, a := range r.Appointments {
		doctor := "unknown doctor"
		if a.Doctor != nil {
			doctor = a.Doctor.Name
		}
		lines = append(lines, fmt.Sprintf("#%d %s with %s (%s)", a.ID, a.Time.Format(timeFormat), doctor, a.Status))
	}
	return strings.Join(lines, "\n")
}

func (TextRenderer) AppointmentUpdate(r *AppointmentUpdate) string {
	return fmt.Sprintf("Appointment #%d is now %s (%s).", r.Appointment.ID, r.Appointment.Status, r.Appointment.Time.Format(timeFormat))
}

func (TextRenderer) AmbulanceBookingResult(r *AmbulanceBookingResult) string {
	b := r.Booking
	return fmt.Sprintf("Ambulance #%d from %s to %s at %s: %s.", b.ID, b.PickupLocation, b.Destination, b.Time.Format(timeFormat), b.Status)
}

func (TextRenderer) AmbulanceBookingList(r *AmbulanceBookingList) string {
	if len(r.Bookings) == 0 {
		return "No ambulance bookings."
	}
	return plural(len(r.Bookings), "ambulance booking") + "."
}

func (TextRenderer) LabList(r *LabList) string {
	if len(r.Labs) == 0 {
		return "No labs available."
	}
	parts := make([]string, 0, len(r.Labs))
	for _, l := range r.Labs {
		parts = append(parts, fmt.Sprintf("%s (%s, %s)", l.Name, l.Address, plural(len(l.Tests), "test")))
	}
	return strings.Join(parts, "; ")
}

func (TextRenderer) LabBookingConfirmation(r *LabBookingConfirmation) string {
	return fmt.Sprintf("Booked %s at %s on %s (%s).", r.Test.Name, r.Lab.Name, r.Booking.Time.Format(timeFormat), r.Booking.LocationType)
}

func (TextRenderer) LabBookingList(r *LabBookingList) string {
	if len(r.Bookings) == 0 {
		return "No lab bookings."
	}
	lines := make([]string, 0, len(r.Bookings))
	for _, b := range r.Bookings {
		test, lab := "test", "lab"
		if b.Test != nil {
			test = b.Test.Name
		}
		if b.Lab != nil {
			lab = b.Lab.Name
		}
		lines = append(lines, fmt.Sprintf("#%d %s at %s on %s (%s)", b.ID, test, lab, b.Time.Format(timeFormat), b.Status))
	}
	return strings.Join(lines, "\n")
}

func (TextRenderer) LabBookingUpdate(r *LabBookingUpdate) string {
	return fmt.Sprintf("Lab booking #%d is now %s.", r.Booking.ID, r.Booking.Status)
}

func (TextRenderer) MedicationAdded(r *MedicationAdded) string {
	return fmt.Sprintf("Added %s %s with %s.", r.Medication.Name, r.Medication.Dosage, plural(len(r.Reminders), "reminder"))
}

func (TextRenderer) MedicationList(r *MedicationList) string {
	if len(r.Medications) == 0 {
		return "No medications."
	}
	names := make([]string, 0, len(r.Medications))
	for _, m := range r.Medications {
		names = append(names, m.Name+" "+m.Dosage)
	}
	return strings.Join(names, ", ")
}

func (TextRenderer) ReminderList(r *ReminderList) string {
	pending := 0
	for _, rem := range r.Reminders {
		if rem.Status == models.ReminderPending {
			pending++
		}
	}
	return fmt.Sprintf("%s, %d pending.", plural(len(r.Reminders), "reminder"), pending)
}

func (TextRenderer) ReminderUpdate(r *ReminderUpdate) string {
	return fmt.Sprintf("Reminder #%d marked %s.", r.Reminder.ID, r.Reminder.Status)
}

func (TextRenderer) PrescriptionRefill(r *PrescriptionRefill) string {
	return fmt.Sprintf("%s Refills remaining for %s: %d.", r.Message, r.Prescription.Medication, r.Prescription.RefillsRemaining)
}

func (TextRenderer) PrescriptionList(r *PrescriptionList) string {
	if len(r.Prescriptions) == 0 {
		return "No prescriptions."
	}
	lines := make([]string, 0, len(r.Prescriptions))
	for _, p := range r.Prescriptions {
		lines = append(lines, fmt.Sprintf("#%d %s %s (%s, %d refills left)", p.ID, p.Medication, p.Dosage, p.Status, p.RefillsRemaining))
	}
	return strings.Join(lines, "\n")
}

func (TextRenderer) PrescriptionFile(r *PrescriptionFile) string {
	return "Prescription file: " + r.URL
}

func (TextRenderer) SymptomAssessment(r *SymptomAssessment) string {
	return fmt.Sprintf("Triage: %s. %s", r.Analysis.TriageLevel, r.Recommendation)
}

func (TextRenderer) InteractionReport(r *InteractionReport) string {
	return fmt.Sprintf("Risk level %s: %s, %s.",
		r.Summary.RiskLevel,
		plural(r.Summary.DangerousInteractions, "dangerous interaction"),
		plural(r.Summary.Warnings, "warning"))
}

func (TextRenderer) EmergencyPlan(r *EmergencyPlan) string {
	return fmt.Sprintf("%s priority %s emergency at %s. Notify: %s.",
		r.Notification.Priority, r.Response.EmergencyType, r.Response.Location,
		strings.Join(r.Response.EmergencyServices, ", "))
}

func (TextRenderer) ToolError(r *ToolError) string {
	return "Failed: " + r.Error
}
