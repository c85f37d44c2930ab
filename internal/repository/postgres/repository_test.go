package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"
	"github.com/Archanasadhasivam/AgriPricePredict/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database with the application
// schema. A single connection keeps the memory database alive.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &domain.User{Username: "farmer", Email: "farmer@example.com", Password: "hash", Role: "user"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("ID not assigned")
	}

	dup := &domain.User{Username: "other", Email: "farmer@example.com", Password: "hash"}
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("duplicate email must be rejected")
	}

	got, err := repo.FindByEmail(ctx, "farmer@example.com")
	if err != nil || got.ID != user.ID {
		t.Fatalf("FindByEmail() = %+v, %v", got, err)
	}

	if _, err := repo.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) || err.Error() != "user not found" {
		t.Errorf("FindByEmail() missing err = %v", err)
	}

	got.Username = "renamed"
	got.Role = "admin"
	if err := repo.Update(ctx, &got); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, _ = repo.FindByID(ctx, user.ID)
	if got.Username != "renamed" || got.Role != "admin" {
		t.Errorf("after update = %+v", got)
	}

	if err := repo.UpdateEmailVerification(ctx, user.ID, true); err != nil {
		t.Fatalf("UpdateEmailVerification() error: %v", err)
	}
	got, _ = repo.FindByID(ctx, user.ID)
	if !got.IsVerified {
		t.Error("user should be verified")
	}

	all, err := repo.FindAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("FindAll() = %d users, %v", len(all), err)
	}

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.FindByID(ctx, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("soft deleted user: err = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, user.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, &domain.User{ID: user.ID, Username: "ghost"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update of deleted user: err = %v, want ErrNotFound", err)
	}
}

func TestAlertRepositoryUpsert(t *testing.T) {
	repo := NewAlertRepository(newTestDB(t))
	ctx := context.Background()

	first := &domain.PriceAlert{UserID: 1, ProductName: "Rice", AlertPrice: 40}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	second := &domain.PriceAlert{UserID: 1, ProductName: "Rice", AlertPrice: 55}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert() again error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created alert %d, want update of %d", second.ID, first.ID)
	}
	if second.AlertPrice != 55 {
		t.Errorf("AlertPrice = %v, want 55", second.AlertPrice)
	}

	other := &domain.PriceAlert{UserID: 2, ProductName: "Rice", AlertPrice: 10}
	if err := repo.Upsert(ctx, other); err != nil {
		t.Fatalf("Upsert() other user error: %v", err)
	}

	alerts, err := repo.FindByUser(ctx, 1)
	if err != nil || len(alerts) != 1 {
		t.Fatalf("FindByUser() = %+v, %v", alerts, err)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.FindByID(ctx, first.ID); err == nil {
		t.Error("deleted alert must not be found")
	}
	if _, err := repo.FindByID(ctx, other.ID); err != nil {
		t.Errorf("other user's alert missing: %v", err)
	}
}

func TestHistoricalPriceRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewHistoricalPriceRepository(db)
	ctx := context.Background()

	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	rows := []domain.HistoricalPrice{
		{ProductName: "Rice", Date: day("2024-01-03"), Price: sql.NullFloat64{Float64: 42, Valid: true}},
		{ProductName: "Rice", Date: day("2024-01-01"), Price: sql.NullFloat64{Float64: 40, Valid: true}},
		{ProductName: "Rice", Date: day("2024-01-02")},
		{ProductName: "Rice", Date: day("2024-02-01"), Price: sql.NullFloat64{Float64: 50, Valid: true}},
		{ProductName: "Onion", Date: day("2024-01-01"), Price: sql.NullFloat64{Float64: 30, Valid: true}},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	products, err := repo.DistinctProducts(ctx)
	if err != nil {
		t.Fatalf("DistinctProducts() error: %v", err)
	}
	if len(products) != 2 || products[0] != "Onion" || products[1] != "Rice" {
		t.Errorf("products = %v", products)
	}

	got, err := repo.FindRange(ctx, "Rice", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("FindRange() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		if d := got[i].Date.Format("2006-01-02"); d != want {
			t.Errorf("got[%d].Date = %s, want %s", i, d, want)
		}
	}
	if got[1].Price.Valid {
		t.Error("missing price should stay null")
	}
}

func TestPredictionRepository(t *testing.T) {
	repo := NewPredictionRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	userID := uint(7)
	records := []*domain.PredictionRecord{
		{ProductName: "Rice", PredictedPrice: 21, PredictionDate: base, CreatedAt: base},
		{ProductName: "Onion", PredictedPrice: 33.5, PredictionDate: base, CreatedAt: base.Add(time.Minute)},
		{ProductName: "Rice", PredictedPrice: 22.25, PredictionDate: base, CreatedAt: base.Add(2 * time.Minute), UserID: &userID},
	}
	for _, rec := range records {
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	rice, err := repo.FindRecent(ctx, "Rice", 10)
	if err != nil {
		t.Fatalf("FindRecent() error: %v", err)
	}
	if len(rice) != 2 || rice[0].PredictedPrice != 22.25 {
		t.Fatalf("rice = %+v", rice)
	}
	if rice[0].UserID == nil || *rice[0].UserID != 7 {
		t.Errorf("UserID = %v, want 7", rice[0].UserID)
	}

	all, err := repo.FindRecent(ctx, "", 2)
	if err != nil || len(all) != 2 {
		t.Fatalf("FindRecent(all) = %d, %v", len(all), err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := repo.Create(cancelled, &domain.PredictionRecord{ProductName: "Rice"}); err == nil {
		t.Error("cancelled context must fail")
	}
}
