package tools

import (
	"context"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/google/uuid"
)

type noArgs struct{}

type doctorDetailsArgs struct {
	DoctorID int    `json:"doctor_id,omitempty" description:"Id of the doctor" validate:"omitempty,min=1"`
	Name     string `json:"name,omitempty" description:"Full or partial doctor name" validate:"required_without=DoctorID"`
}

type bookAppointmentArgs struct {
	DoctorID int    `json:"doctor_id" description:"Id of the doctor to book" validate:"required,min=1"`
	Time     string `json:"time" description:"Appointment time in ISO 8601 format" validate:"required,isotime"`
}

type appointmentRef struct {
	AppointmentID int `json:"appointment_id" description:"Id of the appointment" validate:"required,min=1"`
}

func (a appointmentRef) recordID() uint { return uint(a.AppointmentID) }

type rescheduleArgs struct {
	AppointmentID int    `json:"appointment_id" description:"Id of the appointment" validate:"required,min=1"`
	NewTime       string `json:"new_time" description:"New appointment time in ISO 8601 format" validate:"required,isotime"`
}

func (a rescheduleArgs) recordID() uint { return uint(a.AppointmentID) }

func doctorTools(store *clinic.Store) []Tool {
	return []Tool{
		define("list_doctors", "List all available doctors with their specialty, hospital, availability and fees.",
			func(ctx context.Context, _ noArgs) (Result, error) {
				doctors, err := store.ListDoctors(ctx)
				if err != nil {
					return nil, err
				}
				return &DoctorList{Doctors: doctors}, nil
			}),
		define("doctor_details", "Get the full profile of one doctor by id or by name.",
			func(ctx context.Context, in doctorDetailsArgs) (Result, error) {
				doctor, err := store.FindDoctor(ctx, uint(in.DoctorID), in.Name)
				if err != nil {
					return nil, err
				}
				return &DoctorProfile{Doctor: *doctor}, nil
			}),
	}
}

func appointmentTools(store *clinic.Store) []Tool {
	return []Tool{
		define("book_appointment", "Book an appointment with a doctor at the given time.",
			owned(func(ctx context.Context, userID uuid.UUID, in bookAppointmentArgs) (Result, error) {
				appt, doctor, err := store.BookAppointment(ctx, userID, uint(in.DoctorID), mustTime(in.Time))
				if err != nil {
					return nil, err
				}
				return &AppointmentConfirmation{
					Appointment: *appt,
					Doctor:      clinic.DoctorRef{ID: doctor.ID, Name: doctor.Name, Specialty: doctor.Specialty},
					Message:     "Appointment booked successfully.",
				}, nil
			})),
		define("list_appointments", "List the user's appointments with doctor details.",
			owned(func(ctx context.Context, userID uuid.UUID, _ noArgs) (Result, error) {
				appts, err := store.ListAppointments(ctx, userID)
				if err != nil {
					return nil, err
				}
				return &AppointmentList{Appointments: appts}, nil
			})),
		ownedUpdate[models.Appointment, appointmentRef](store,
			"cancel_appointment", "Cancel one of the user's appointments.", "Appointment",
			func(appointmentRef) (map[string]interface{}, error) {
				return map[string]interface{}{"status": models.StatusCancelled}, nil
			},
			func(a *models.Appointment) Result {
				return &AppointmentUpdate{Appointment: *a, Message: "Appointment cancelled."}
			}),
		ownedUpdate[models.Appointment, rescheduleArgs](store,
			"reschedule_appointment", "Move one of the user's appointments to a new time.", "Appointment",
			func(in rescheduleArgs) (map[string]interface{}, error) {
				t, err := ParseTime(in.NewTime)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"time": t, "status": models.StatusRescheduled}, nil
			},
			func(a *models.Appointment) Result {
				return &AppointmentUpdate{Appointment: *a, Message: "Appointment rescheduled."}
			}),
	}
}

type bookAmbulanceArgs struct {
	PickupLocation string `json:"pickup_location" description:"Where the ambulance should pick the patient up" validate:"required"`
	Destination    string `json:"destination" description:"Hospital or address to drive to" validate:"required"`
	Time           string `json:"time" description:"Pickup time in ISO 8601 format" validate:"required,isotime"`
}

type ambulanceRef struct {
	BookingID int `json:"booking_id" description:"Id of the ambulance booking" validate:"required,min=1"`
}

func (a ambulanceRef) recordID() uint { return uint(a.BookingID) }

func ambulanceTools(store *clinic.Store) []Tool {
	return []Tool{
		define("book_ambulance", "Book an ambulance from a pickup location to a destination.",
			owned(func(ctx context.Context, userID uuid.UUID, in bookAmbulanceArgs) (Result, error) {
				booking, err := store.BookAmbulance(ctx, userID, in.PickupLocation, in.Destination, mustTime(in.Time))
				if err != nil {
					return nil, err
				}
				return &AmbulanceBookingResult{Booking: *booking, Message: "Ambulance booked successfully."}, nil
			})),
		define("list_ambulance_bookings", "List the user's ambulance bookings.",
			owned(func(ctx context.Context, userID uuid.UUID, _ noArgs) (Result, error) {
				bookings, err := store.ListAmbulanceBookings(ctx, userID)
				if err != nil {
					return nil, err
				}
				return &AmbulanceBookingList{Bookings: bookings}, nil
			})),
		ownedUpdate[models.AmbulanceBooking, ambulanceRef](store,
			"cancel_ambulance_booking", "Cancel one of the user's ambulance bookings.", "Ambulance booking",
			func(ambulanceRef) (map[string]interface{}, error) {
				return map[string]interface{}{"status": models.StatusCancelled}, nil
			},
			func(b *models.AmbulanceBooking) Result {
				return &AmbulanceBookingResult{Booking: *b, Message: "Ambulance booking cancelled."}
			}),
	}
}
