package tools

import (
	"encoding/json"
	"fmt"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/models"
)

// Result is the closed set of tool outputs. Every variant has a method on
// Renderer, so a new variant does not compile until each renderer handles it.
type Result interface {
	Accept(r Renderer) string
}

type Renderer interface {
	DoctorList(*DoctorList) string
	DoctorProfile(*DoctorProfile) string
	AppointmentConfirmation(*AppointmentConfirmation) string
	AppointmentList(*AppointmentList) string
	AppointmentUpdate(*AppointmentUpdate) string
	AmbulanceBookingResult(*AmbulanceBookingResult) string
	AmbulanceBookingList(*AmbulanceBookingList) string
	LabList(*LabList) string
	LabBookingConfirmation(*LabBookingConfirmation) string
	LabBookingList(*LabBookingList) string
	LabBookingUpdate(*LabBookingUpdate) string
	MedicationAdded(*MedicationAdded) string
	MedicationList(*MedicationList) string
	ReminderList(*ReminderList) string
	ReminderUpdate(*ReminderUpdate) string
	PrescriptionRefill(*PrescriptionRefill) string
	PrescriptionList(*PrescriptionList) string
	PrescriptionFile(*PrescriptionFile) string
	SymptomAssessment(*SymptomAssessment) string
	InteractionReport(*InteractionReport) string
	EmergencyPlan(*EmergencyPlan) string
	ToolError(*ToolError) string
}

type DoctorList struct {
	Doctors []models.Doctor `json:"doctors"`
}

type DoctorProfile struct {
	Doctor models.Doctor `json:"doctor"`
}

type AppointmentConfirmation struct {
	Appointment models.Appointment `json:"appointment"`
	Doctor      clinic.DoctorRef   `json:"doctor"`
	Message     string             `json:"message"`
}

type AppointmentList struct {
	Appointments []clinic.AppointmentView `json:"appointments"`
}

type AppointmentUpdate struct {
	Appointment models.Appointment `json:"appointment"`
	Message     string             `json:"message"`
}

type AmbulanceBookingResult struct {
	Booking models.AmbulanceBooking `json:"booking"`
	Message string                  `json:"message"`
}

type AmbulanceBookingList struct {
	Bookings []models.AmbulanceBooking `json:"bookings"`
}

type LabList struct {
	Labs []clinic.LabWithTests `json:"labs"`
}

type LabBookingConfirmation struct {
	Booking models.LabBooking `json:"booking"`
	Lab     clinic.LabRef     `json:"lab"`
	Test    clinic.TestRef    `json:"test"`
	Message string            `json:"message"`
}

type LabBookingList struct {
	Bookings []clinic.LabBookingView `json:"bookings"`
}

type LabBookingUpdate struct {
	Booking models.LabBooking `json:"booking"`
	Message string            `json:"message"`
}

type MedicationAdded struct {
	Medication models.Medication           `json:"medication"`
	Reminders  []models.MedicationReminder `json:"reminders"`
	Message    string                      `json:"message"`
}

type MedicationList struct {
	Medications []models.Medication `json:"medications"`
}

type ReminderList struct {
	Reminders []models.MedicationReminder `json:"reminders"`
}

type ReminderUpdate struct {
	Reminder models.MedicationReminder `json:"reminder"`
	Message  string                    `json:"message"`
}

type PrescriptionRefill struct {
	Prescription models.Prescription `json:"prescription"`
	Message      string              `json:"message"`
}

type PrescriptionList struct {
	Prescriptions []models.Prescription `json:"prescriptions"`
}

type PrescriptionFile struct {
	URL string `json:"url"`
}

// ToolError is the persisted shape of a failed call.
type ToolError struct {
	Error string `json:"error"`
}

func (r *DoctorList) Accept(v Renderer) string              { return v.DoctorList(r) }
func (r *DoctorProfile) Accept(v Renderer) string           { return v.DoctorProfile(r) }
func (r *AppointmentConfirmation) Accept(v Renderer) string { return v.AppointmentConfirmation(r) }
func (r *AppointmentList) Accept(v Renderer) string         { return v.AppointmentList(r) }
func (r *AppointmentUpdate) Accept(v Renderer) string       { return v.AppointmentUpdate(r) }
func (r *AmbulanceBookingResult) Accept(v Renderer) string  { return v.AmbulanceBookingResult(r) }
func (r *AmbulanceBookingList) Accept(v Renderer) string    { return v.AmbulanceBookingList(r) }
func (r *LabList) Accept(v Renderer) string                 { return v.LabList(r) }
func (r *LabBookingConfirmation) Accept(v Renderer) string  { return v.LabBookingConfirmation(r) }
func (r *LabBookingList) Accept(v Renderer) string          { return v.LabBookingList(r) }
func (r *LabBookingUpdate) Accept(v Renderer) string        { return v.LabBookingUpdate(r) }
func (r *MedicationAdded) Accept(v Renderer) string         { return v.MedicationAdded(r) }
func (r *MedicationList) Accept(v Renderer) string          { return v.MedicationList(r) }
func (r *ReminderList) Accept(v Renderer) string            { return v.ReminderList(r) }
func (r *ReminderUpdate) Accept(v Renderer) string          { return v.ReminderUpdate(r) }
func (r *PrescriptionRefill) Accept(v Renderer) string      { return v.PrescriptionRefill(r) }
func (r *PrescriptionList) Accept(v Renderer) string        { return v.PrescriptionList(r) }
func (r *PrescriptionFile) Accept(v Renderer) string        { return v.PrescriptionFile(r) }
func (r *SymptomAssessment) Accept(v Renderer) string       { return v.SymptomAssessment(r) }
func (r *InteractionReport) Accept(v Renderer) string       { return v.InteractionReport(r) }
func (r *EmergencyPlan) Accept(v Renderer) string           { return v.EmergencyPlan(r) }
func (r *ToolError) Accept(v Renderer) string               { return v.ToolError(r) }

// resultTypes maps each tool name to a constructor of its result variant.
var resultTypes = map[string]func() Result{
	"list_doctors":                  func() Result { return &DoctorList{} },
	"doctor_details":                func() Result { return &DoctorProfile{} },
	"book_appointment":              func() Result { return &AppointmentConfirmation{} },
	"list_appointments":             func() Result { return &AppointmentList{} },
	"cancel_appointment":            func() Result { return &AppointmentUpdate{} },
	"reschedule_appointment":        func() Result { return &AppointmentUpdate{} },
	"book_ambulance":                func() Result { return &AmbulanceBookingResult{} },
	"list_ambulance_bookings":       func() Result { return &AmbulanceBookingList{} },
	"cancel_ambulance_booking":      func() Result { return &AmbulanceBookingResult{} },
	"list_labs":                     func() Result { return &LabList{} },
	"book_lab_test":                 func() Result { return &LabBookingConfirmation{} },
	"list_lab_bookings":             func() Result { return &LabBookingList{} },
	"cancel_lab_booking":            func() Result { return &LabBookingUpdate{} },
	"add_medication":                func() Result { return &MedicationAdded{} },
	"list_medications":              func() Result { return &MedicationList{} },
	"list_medication_reminders":     func() Result { return &ReminderList{} },
	"mark_medication_reminder":      func() Result { return &ReminderUpdate{} },
	"request_prescription_refill":   func() Result { return &PrescriptionRefill{} },
	"list_prescriptions":            func() Result { return &PrescriptionList{} },
	"download_prescription":         func() Result { return &PrescriptionFile{} },
	"analyze_symptoms":              func() Result { return &SymptomAssessment{} },
	"check_medication_interactions": func() Result { return &InteractionReport{} },
	"coordinate_emergency":          func() Result { return &EmergencyPlan{} },
}

// Decode rebuilds the variant of a persisted tool result. A payload carrying
// an "error" key decodes to *ToolError regardless of the tool.
func Decode(toolName string, raw json.RawMessage) (Result, error) {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.Error != nil {
		return &ToolError{Error: *probe.Error}, nil
	}

	ctor, ok := resultTypes[toolName]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", toolName)
	}
	res := ctor()
	if err := json.Unmarshal(raw, res); err != nil {
		return nil, fmt.Errorf("decode %s result: %w", toolName, err)
	}
	return res, nil
}
