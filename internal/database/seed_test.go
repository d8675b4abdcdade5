package database

import (
	"context"
	"testing"

	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
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

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := Seed(ctx, db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var doctors, labs, tests int64
	db.Model(&models.Doctor{}).Count(&doctors)
	db.Model(&models.Lab{}).Count(&labs)
	db.Model(&models.LabTest{}).Count(&tests)

	if doctors != 26 {
		t.Fatalf("expected 26 doctors, got %d", doctors)
	}
	if labs != 2 {
		t.Fatalf("expected 2 labs, got %d", labs)
	}
	if tests != int64(len(seedLabs[0].tests)+len(seedLabs[1].tests)) {
		t.Fatalf("unexpected lab test count %d", tests)
	}
}

func TestSeedDoctorsContent(t *testing.T) {
	db := newTestDB(t)
	if err := SeedDoctors(context.Background(), db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var alice models.Doctor
	if err := db.Where("name = ?", "Dr. Alice Smith").First(&alice).Error; err != nil {
		t.Fatalf("find Alice: %v", err)
	}
	if alice.Specialty != "Cardiology" || alice.Fees != 150 || alice.Experience != 12 {
		t.Fatalf("unexpected doctor row: %+v", alice)
	}
}
