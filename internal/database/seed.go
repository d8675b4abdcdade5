package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ahmetk3436/medassist/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var seedDoctors = []models.Doctor{
	{Name: "Dr. Alice Smith", Specialty: "Cardiology", Hospital: "City Hospital", Experience: 12, Availability: "Mon-Fri 9am-5pm", Fees: 150,
		Bio: "Board-certified cardiologist with over a decade of experience treating complex heart conditions. Focus on coronary artery disease, heart failure and preventive cardiology."},
	{Name: "Dr. Bob Johnson", Specialty: "Dermatology", Hospital: "SkinCare Clinic", Experience: 8, Availability: "Tue-Thu 10am-4pm", Fees: 120, Bio: "Specializes in skin disorders and cosmetic dermatology."},
	{Name: "Dr. Carol Lee", Specialty: "Pediatrics", Hospital: "Children's Hospital", Experience: 10, Availability: "Mon-Fri 8am-3pm", Fees: 100, Bio: "Loves working with children and families."},
	{Name: "Dr. David Kim", Specialty: "Neurology", Hospital: "Neuro Center", Experience: 15, Availability: "Mon, Wed, Fri 11am-6pm", Fees: 200, Bio: "Focus on neurological disorders and research."},
	{Name: "Dr. Emily Chen", Specialty: "Orthopedics", Hospital: "OrthoPlus", Experience: 9, Availability: "Mon-Fri 9am-5pm", Fees: 180, Bio: "Orthopedic surgeon with a passion for sports medicine."},
	{Name: "Dr. Frank Wang", Specialty: "Urology", Hospital: "General Hospital", Experience: 7, Availability: "Tue, Thu 10am-2pm", Fees: 130, Bio: "Urology specialist with a patient-centered approach."},
	{Name: "Dr. Grace Liu", Specialty: "Gynecology", Hospital: "Women's Health Center", Experience: 11, Availability: "Mon-Fri 10am-4pm", Fees: 140, Bio: "Dedicated to women's health and wellness."},
	{Name: "Dr. Henry Patel", Specialty: "Endocrinology", Hospital: "EndoCare", Experience: 13, Availability: "Mon, Wed, Fri 9am-1pm", Fees: 160, Bio: "Expert in diabetes and hormonal disorders."},
	{Name: "Dr. Isabella Garcia", Specialty: "Hematology", Hospital: "Blood Institute", Experience: 10, Availability: "Mon-Fri 8am-2pm", Fees: 170, Bio: "Researcher and clinician in blood diseases."},
	{Name: "Dr. John Doe", Specialty: "General Practice", Hospital: "Family Clinic", Experience: 6, Availability: "Mon-Fri 9am-5pm", Fees: 90, Bio: "Your friendly neighborhood family doctor."},
	{Name: "Dr. Jane Smith", Specialty: "Cardiology", Hospital: "City Hospital", Experience: 14, Availability: "Mon, Thu 10am-6pm", Fees: 155, Bio: "Senior cardiologist and educator."},
	{Name: "Dr. Michael Brown", Specialty: "Dermatology", Hospital: "SkinCare Clinic", Experience: 5, Availability: "Wed, Fri 12pm-5pm", Fees: 110, Bio: "Focus on acne and skin cancer prevention."},
	{Name: "Dr. Olivia Davis", Specialty: "Pediatrics", Hospital: "Children's Hospital", Experience: 8, Availability: "Mon-Fri 9am-3pm", Fees: 105, Bio: "Pediatrician with a gentle touch."},
	{Name: "Dr. Paul Miller", Specialty: "Neurology", Hospital: "Neuro Center", Experience: 12, Availability: "Tue, Thu 10am-4pm", Fees: 210, Bio: "Specialist in epilepsy and migraines."},
	{Name: "Dr. Quinn Nguyen", Specialty: "Pediatrics", Hospital: "Family Clinic", Experience: 7, Availability: "Mon, Wed, Fri 8am-2pm", Fees: 95, Bio: "Caring for children of all ages."},
	{Name: "Dr. Rachel Kim", Specialty: "Cardiology", Hospital: "City Hospital", Experience: 9, Availability: "Mon-Fri 9am-5pm", Fees: 145, Bio: "Cardiologist with a focus on preventive care."},
	{Name: "Dr. Samuel Lee", Specialty: "Orthopedics", Hospital: "OrthoPlus", Experience: 10, Availability: "Tue, Thu 11am-6pm", Fees: 175, Bio: "Joint replacement and sports injury expert."},
	{Name: "Dr. Tiffany Chen", Specialty: "Gynecology", Hospital: "Women's Health Center", Experience: 8, Availability: "Mon-Fri 10am-4pm", Fees: 135, Bio: "Advocate for women's reproductive health."},
	{Name: "Dr. Uma Patel", Specialty: "Endocrinology", Hospital: "EndoCare", Experience: 11, Availability: "Mon, Wed, Fri 9am-1pm", Fees: 150, Bio: "Thyroid and metabolic disorder specialist."},
	{Name: "Dr. Victor Wang", Specialty: "Hematology", Hospital: "Blood Institute", Experience: 9, Availability: "Mon-Fri 8am-2pm", Fees: 165, Bio: "Blood disorder researcher and clinician."},
	{Name: "Dr. William Johnson", Specialty: "General Practice", Hospital: "Family Clinic", Experience: 5, Availability: "Mon-Fri 9am-5pm", Fees: 85, Bio: "General practitioner for all ages."},
	{Name: "Dr. Xiao Li", Specialty: "Cardiology", Hospital: "City Hospital", Experience: 10, Availability: "Mon, Wed, Fri 10am-4pm", Fees: 140, Bio: "Cardiologist with international experience."},
	{Name: "Dr. Yvonne Kim", Specialty: "Dermatology", Hospital: "SkinCare Clinic", Experience: 6, Availability: "Tue, Thu 1pm-5pm", Fees: 115, Bio: "Dermatologist focused on patient education."},
	{Name: "Dr. Zara Patel", Specialty: "Pediatrics", Hospital: "Children's Hospital", Experience: 7, Availability: "Mon-Fri 8am-3pm", Fees: 100, Bio: "Pediatrician with a love for teaching."},
	{Name: "Dr. Aiden Chen", Specialty: "Orthopedics", Hospital: "OrthoPlus", Experience: 8, Availability: "Mon-Fri 9am-5pm", Fees: 170, Bio: "Orthopedic surgeon and sports medicine expert."},
	{Name: "Dr. Benjamin Wang", Specialty: "Urology", Hospital: "General Hospital", Experience: 6, Availability: "Tue, Thu 10am-2pm", Fees: 125, Bio: "Urologist with a focus on minimally invasive procedures."},
}

type seedLab struct {
	name      string
	address   string
	timeSlots []string
	tests     []models.LabTest
}

var seedLabs = []seedLab{
	{
		name:      "City Lab",
		address:   "123 Main St",
		timeSlots: []string{"2024-06-10T09:00:00", "2024-06-10T10:00:00", "2024-06-10T11:00:00"},
		tests: []models.LabTest{
			{Name: "Blood Test", Type: "blood", Price: 50},
			{Name: "Cholesterol Test", Type: "blood", Price: 40},
			{Name: "X-Ray", Type: "imaging", Price: 100},
			{Name: "CT Scan", Type: "imaging", Price: 200},
			{Name: "MRI", Type: "imaging", Price: 300},
			{Name: "EKG", Type: "electrocardiogram", Price: 80},
			{Name: "Holter Monitor", Type: "electrocardiogram", Price: 120},
			{Name: "Stress Test", Type: "electrocardiogram", Price: 100},
			{Name: "Echocardiogram", Type: "echocardiogram", Price: 150},
		},
	},
	{
		name:      "Health Diagnostics",
		address:   "456 Oak Ave",
		timeSlots: []string{"2024-06-10T14:00:00", "2024-06-10T15:00:00", "2024-06-10T16:00:00"},
		tests: []models.LabTest{
			{Name: "Blood Test", Type: "blood", Price: 55},
			{Name: "MRI", Type: "imaging", Price: 300},
			{Name: "Urine Test", Type: "blood", Price: 30},
			{Name: "CT Scan", Type: "imaging", Price: 200},
			{Name: "Ultrasound", Type: "imaging", Price: 150},
			{Name: "EKG", Type: "electrocardiogram", Price: 80},
			{Name: "Stress Test", Type: "electrocardiogram", Price: 100},
		},
	},
}

// Seed inserts the doctor directory and the lab catalog. Tables that already
// hold rows are left alone.
func Seed(ctx context.Context, db *gorm.DB) error {
	if err := SeedDoctors(ctx, db); err != nil {
		return err
	}
	return SeedLabs(ctx, db)
}

func SeedDoctors(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Doctor{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count doctors: %w", err)
	}
	if count > 0 {
		slog.Info("Doctors already seeded", "count", count)
		return nil
	}

	doctors := make([]models.Doctor, len(seedDoctors))
	copy(doctors, seedDoctors)
	if err := db.WithContext(ctx).Create(&doctors).Error; err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	slog.Info("Seeded doctors", "count", len(doctors))
	return nil
}

func SeedLabs(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Lab{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count labs: %w", err)
	}
	if count > 0 {
		slog.Info("Labs already seeded", "count", count)
		return nil
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, l := range seedLabs {
			slots, err := json.Marshal(l.timeSlots)
			if err != nil {
				return err
			}
			lab := models.Lab{Name: l.name, Address: l.address, TimeSlots: datatypes.JSON(slots)}
			if err := tx.Create(&lab).Error; err != nil {
				return fmt.Errorf("seed lab %s: %w", l.name, err)
			}

			tests := make([]models.LabTest, len(l.tests))
			for i, t := range l.tests {
				t.LabID = lab.ID
				tests[i] = t
			}
			if err := tx.Create(&tests).Error; err != nil {
				return fmt.Errorf("seed tests for %s: %w", l.name, err)
			}
		}
		slog.Info("Seeded labs and lab tests", "labs", len(seedLabs))
		return nil
	})
}
