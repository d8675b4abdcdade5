package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type LabWithTests struct {
	models.Lab
	Tests []models.LabTest `json:"tests"`
}

// ListLabs loads every lab and fetches the tests of each lab concurrently.
// The result keeps the labs' id order.
func (s *Store) ListLabs(ctx context.Context) ([]LabWithTests, error) {
	var labs []models.Lab
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&labs).Error; err != nil {
		return nil, fmt.Errorf("list labs: %w", err)
	}

	out := make([]LabWithTests, len(labs))
	g, gctx := errgroup.WithContext(ctx)
	for i, lab := range labs {
		g.Go(func() error {
			var tests []models.LabTest
			if err := s.db.WithContext(gctx).Where("lab_id = ?", lab.ID).Order("id ASC").Find(&tests).Error; err != nil {
				return fmt.Errorf("tests for lab %d: %w", lab.ID, err)
			}
			if tests == nil {
				tests = []models.LabTest{}
			}
			out[i] = LabWithTests{Lab: lab, Tests: tests}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type LabRef struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type TestRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Price int    `json:"price,omitempty"`
}

type LabBookingView struct {
	ID           uint      `json:"id"`
	Time         time.Time `json:"time"`
	LocationType string    `json:"location_type"`
	Status       string    `json:"status"`
	Lab          *LabRef   `json:"lab"`
	Test         *TestRef  `json:"test"`
}

func (s *Store) BookLabTest(ctx context.Context, userID uuid.UUID, labID, testID uint, at time.Time, locationType string) (*models.LabBooking, *models.Lab, *models.LabTest, error) {
	var lab models.Lab
	if err := s.db.WithContext(ctx).First(&lab, labID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, &NotFoundError{Entity: "Lab"}
		}
		return nil, nil, nil, fmt.Errorf("find lab: %w", err)
	}
	var test models.LabTest
	if err := s.db.WithContext(ctx).Where("id = ? AND lab_id = ?", testID, labID).First(&test).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, &NotFoundError{Entity: "Lab test"}
		}
		return nil, nil, nil, fmt.Errorf("find lab test: %w", err)
	}

	booking := models.LabBooking{
		UserID:       userID,
		LabID:        labID,
		LabTestID:    testID,
		Time:         at.UTC(),
		LocationType: locationType,
		Status:       models.StatusBooked,
	}
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("book lab test: %w", err)
	}
	return &booking, &lab, &test, nil
}

func (s *Store) ListLabBookings(ctx context.Context, userID uuid.UUID) ([]LabBookingView, error) {
	var rows []struct {
		ID           uint
		Time         time.Time
		LocationType string
		Status       string
		LabID        *uint
		LabName      *string
		TestID       *uint
		TestName     *string
		TestType     *string
	}
	err := s.db.WithContext(ctx).Table("lab_bookings").
		Select("lab_bookings.id, lab_bookings.time, lab_bookings.location_type, lab_bookings.status, " +
			"labs.id AS lab_id, labs.name AS lab_name, lab_tests.id AS test_id, lab_tests.name AS test_name, lab_tests.type AS test_type").
		Joins("LEFT JOIN labs ON labs.id = lab_bookings.lab_id").
		Joins("LEFT JOIN lab_tests ON lab_tests.id = lab_bookings.lab_test_id").
		Where("lab_bookings.user_id = ?", userID).
		Order("lab_bookings.time ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list lab bookings: %w", err)
	}

	out := make([]LabBookingView, 0, len(rows))
	for _, r := range rows {
		v := LabBookingView{ID: r.ID, Time: r.Time, LocationType: r.LocationType, Status: r.Status}
		if r.LabID != nil {
			v.Lab = &LabRef{ID: *r.LabID, Name: deref(r.LabName)}
		}
		if r.TestID != nil {
			v.Test = &TestRef{ID: *r.TestID, Name: deref(r.TestName), Type: deref(r.TestType)}
		}
		out = append(out, v)
	}
	return out, nil
}
