package tools

import (
	"context"

	"github.com/ahmetk3436/medassist/internal/clinic"
	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/google/uuid"
)

type bookLabTestArgs struct {
	LabID        int    `json:"lab_id" description:"Id of the lab" validate:"required,min=1"`
	LabTestID    int    `json:"lab_test_id" description:"Id of a test offered by that lab" validate:"required,min=1"`
	Time         string `json:"time" description:"Booking time in ISO 8601 format, ideally one of the lab's time slots" validate:"required,isotime"`
	LocationType string `json:"location_type" description:"Sample collection at home or at the clinic" enum:"home,clinic" validate:"required,oneof=home clinic"`
}

type labBookingRef struct {
	BookingID int `json:"booking_id" description:"Id of the lab booking" validate:"required,min=1"`
}

func (a labBookingRef) recordID() uint { return uint(a.BookingID) }

func labTools(store *clinic.Store) []Tool {
	return []Tool{
		define("list_labs", "List labs with their address, time slots and the tests they offer.",
			func(ctx context.Context, _ noArgs) (Result, error) {
				labs, err := store.ListLabs(ctx)
				if err != nil {
					return nil, err
				}
				return &LabList{Labs: labs}, nil
			}),
		define("book_lab_test", "Book a lab test at a lab, either as a home visit or at the clinic.",
			owned(func(ctx context.Context, userID uuid.UUID, in bookLabTestArgs) (Result, error) {
				booking, lab, test, err := store.BookLabTest(ctx, userID, uint(in.LabID), uint(in.LabTestID), mustTime(in.Time), in.LocationType)
				if err != nil {
					return nil, err
				}
				return &LabBookingConfirmation{
					Booking: *booking,
					Lab:     clinic.LabRef{ID: lab.ID, Name: lab.Name, Address: lab.Address},
					Test:    clinic.TestRef{ID: test.ID, Name: test.Name, Type: test.Type, Price: test.Price},
					Message: "Lab test booked successfully.",
				}, nil
			})),
		define("list_lab_bookings", "List the user's lab bookings with lab and test details.",
			owned(func(ctx context.Context, userID uuid.UUID, _ noArgs) (Result, error) {
				bookings, err := store.ListLabBookings(ctx, userID)
				if err != nil {
					return nil, err
				}
				return &LabBookingList{Bookings: bookings}, nil
			})),
		ownedUpdate[models.LabBooking, labBookingRef](store,
			"cancel_lab_booking", "Cancel one of the user's lab bookings.", "Lab booking",
			func(labBookingRef) (map[string]interface{}, error) {
				return map[string]interface{}{"status": models.StatusCancelled}, nil
			},
			func(b *models.LabBooking) Result {
				return &LabBookingUpdate{Booking: *b, Message: "Lab booking cancelled."}
			}),
	}
}
