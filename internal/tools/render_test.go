package tools

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/models"
)

func TestDecodeRestoresVariant(t *testing.T) {
	orig := &AppointmentConfirmation{
		Appointment: models.Appointment{ID: 7, DoctorID: 1, Time: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC), Status: models.StatusBooked},
		Doctor:      clinic.DoctorRef{ID: 1, Name: "Dr. Alice Smith", Specialty: "Cardiology"},
		Message:     "Appointment booked successfully.",
	}
	raw, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	res, err := Decode("book_appointment", raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := res.(*AppointmentConfirmation)
	if !ok {
		t.Fatalf("decoded %T", res)
	}
	summary := got.Accept(TextRenderer{})
	if !strings.Contains(summary, "#7") || !strings.Contains(summary, "Dr. Alice Smith") {
		t.Fatalf("unexpected summary %q", summary)
	}
}

func TestDecodeErrorPayload(t *testing.T) {
	res, err := Decode("cancel_appointment", json.RawMessage(`{"error":"Appointment not found or not yours"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := res.Accept(TextRenderer{}); got != "Failed: Appointment not found or not yours" {
		t.Fatalf("unexpected summary %q", got)
	}

	if _, err := Decode("nope", json.RawMessage(`{}`)); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
}

func TestRenderInteractionReport(t *testing.T) {
	report := checkInteractions(checkInteractionsArgs{Medications: []string{"warfarin"}, NewMedication: "aspirin"})
	got := report.Accept(TextRenderer{})
	if got != "Risk level HIGH: 2 dangerous interactions, 0 warnings." {
		t.Fatalf("unexpected summary %q", got)
	}
}
