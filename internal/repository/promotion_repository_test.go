package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aimd54/promotion-board/internal/models"
)

// setupPromotionTestDB creates an in-memory SQLite database for testing.
func setupPromotionTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &DB{gdb}
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}
	return db
}

// reservePromotionBadges attaches accepted applications to a promotion.
func reservePromotionBadges(t *testing.T, db *DB, promo *models.Promotion, apps ...*models.BadgeApplication) {
	t.Helper()

	repo := NewReservationRepository(db)
	reservations := make([]models.Reservation, 0, len(apps))
	for _, app := range apps {
		reservations = append(reservations, models.Reservation{
			PromotionID:        promo.ID,
			BadgeApplicationID: app.ID,
			AssignedBy:         promo.CreatorID,
		})
	}
	if err := repo.CreateBatch(reservations); err != nil {
		t.Fatalf("Failed to reserve badges: %v", err)
	}
}

func TestPromotionRepository_GetByID(t *testing.T) {
	db := setupPromotionTestDB(t)
	repo := NewPromotionRepository(db)

	app := createTestApplication(t, db, 1)
	promo := createTestPromotion(t, db, 1)
	reservePromotionBadges(t, db, promo, app)

	retrieved, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.Status != models.PromotionDraft {
		t.Errorf("Expected draft status, got %q", retrieved.Status)
	}
	if len(retrieved.Reservations) != 1 {
		t.Errorf("Expected 1 preloaded reservation, got %d", len(retrieved.Reservations))
	}

	if _, err := repo.GetByID(999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound for missing promotion, got %v", err)
	}
}

func TestPromotionRepository_ListByCreator(t *testing.T) {
	db := setupPromotionTestDB(t)
	repo := NewPromotionRepository(db)

	createTestPromotion(t, db, 1)
	createTestPromotion(t, db, 1)
	createTestPromotion(t, db, 2)

	mine, err := repo.ListByCreator(1)
	if err != nil {
		t.Fatalf("ListByCreator() failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("Expected 2 promotions for creator 1, got %d", len(mine))
	}
}

func TestPromotionRepository_CountByTemplate(t *testing.T) {
	db := setupPromotionTestDB(t)
	repo := NewPromotionRepository(db)

	promo := createTestPromotion(t, db, 1)

	count, err := repo.CountByTemplate(promo.TemplateID)
	if err != nil {
		t.Fatalf("CountByTemplate() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 promotion for template, got %d", count)
	}

	count, err = repo.CountByTemplate(999)
	if err != nil {
		t.Fatalf("CountByTemplate() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 promotions for unused template, got %d", count)
	}
}

func TestPromotionRepository_Approve(t *testing.T) {
	db := setupPromotionTestDB(t)
	repo := NewPromotionRepository(db)

	app1 := createTestApplication(t, db, 1)
	app2 := createTestApplication(t, db, 1)
	promo := createTestPromotion(t, db, 1)
	reservePromotionBadges(t, db, promo, app1, app2)

	promo.Status = models.PromotionSubmitted
	now := time.Now()
	if err := repo.Approve(promo, 42, now); err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}

	retrieved, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.Status != models.PromotionApproved {
		t.Errorf("Expected approved status, got %q", retrieved.Status)
	}
	if retrieved.DecidedBy == nil || *retrieved.DecidedBy != 42 {
		t.Errorf("Expected decided_by 42, got %v", retrieved.DecidedBy)
	}

	// Every reservation flips to consumed.
	for _, res := range retrieved.Reservations {
		if !res.Consumed {
			t.Errorf("Expected reservation %d to be consumed", res.ID)
		}
	}

	// The applications move to used_in_promotion permanently.
	for _, app := range []*models.BadgeApplication{app1, app2} {
		var stored models.BadgeApplication
		if err := db.First(&stored, app.ID).Error; err != nil {
			t.Fatalf("Failed to load application %d: %v", app.ID, err)
		}
		if stored.Status != models.ApplicationUsedInPromotion {
			t.Errorf("Expected application %d status used_in_promotion, got %q", app.ID, stored.Status)
		}
	}

	// A consumed badge stays claimed forever, but the partial index no longer
	// covers it, so new reservations would be possible only for other badges.
	resRepo := NewReservationRepository(db)
	active, err := resRepo.CountActive()
	if err != nil {
		t.Fatalf("CountActive() failed: %v", err)
	}
	if active != 0 {
		t.Errorf("Expected 0 active reservations after approval, got %d", active)
	}
}

func TestPromotionRepository_Reject(t *testing.T) {
	db := setupPromotionTestDB(t)
	repo := NewPromotionRepository(db)

	app := createTestApplication(t, db, 1)
	promo := createTestPromotion(t, db, 1)
	reservePromotionBadges(t, db, promo, app)

	promo.Status = models.PromotionSubmitted
	if err := repo.Reject(promo, 42, "not enough evidence", time.Now()); err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}

	retrieved, err := repo.GetByID(promo.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if retrieved.Status != models.PromotionRejected {
		t.Errorf("Expected rejected status, got %q", retrieved.Status)
	}
	if retrieved.RejectReason != "not enough evidence" {
		t.Errorf("Expected reject reason to be stored, got %q", retrieved.RejectReason)
	}
	if len(retrieved.Reservations) != 0 {
		t.Errorf("Expected reservations to be released, got %d", len(retrieved.Reservations))
	}

	// The application keeps its accepted status and is reservable again.
	var stored models.BadgeApplication
	if err := db.First(&stored, app.ID).Error; err != nil {
		t.Fatalf("Failed to load application: %v", err)
	}
	if stored.Status != models.ApplicationAccepted {
		t.Errorf("Expected application to stay accepted, got %q", stored.Status)
	}

	other := createTestPromotion(t, db, 2)
	resRepo := NewReservationRepository(db)
	err = resRepo.CreateBatch([]models.Reservation{
		{PromotionID: other.ID, BadgeApplicationID: app.ID, AssignedBy: 2},
	})
	if err != nil {
		t.Fatalf("Expected released badge to be reservable, got %v", err)
	}
}

func TestPromotionRepository_DeleteDraftCascade(t *testing.T) {
	db := setupPromotionTestDB(t)
	repo := NewPromotionRepository(db)

	app := createTestApplication(t, db, 1)
	promo := createTestPromotion(t, db, 1)
	reservePromotionBadges(t, db, promo, app)

	if err := repo.DeleteDraftCascade(promo.ID); err != nil {
		t.Fatalf("DeleteDraftCascade() failed: %v", err)
	}

	if _, err := repo.GetByID(promo.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected promotion to be deleted, got %v", err)
	}

	resRepo := NewReservationRepository(db)
	res, err := resRepo.FindActiveByBadgeApplication(app.ID)
	if err != nil {
		t.Fatalf("FindActiveByBadgeApplication() failed: %v", err)
	}
	if res != nil {
		t.Errorf("Expected reservation to be released, got %+v", res)
	}
}
