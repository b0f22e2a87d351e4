package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"freight/internal/domain"
	"freight/internal/repository"
)

func newTripRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "driver_id", "status",
		"origin_address", "origin_city", "origin_contact_name", "origin_contact_phone",
		"dest_address", "dest_city", "dest_contact_name", "dest_contact_phone",
		"second_drop_address", "second_drop_city", "second_drop_contact_name", "second_drop_contact_phone",
		"material", "weight_kg", "truck_type", "urgency", "notes", "progress_pct",
		"pickup_window_start", "pickup_window_end",
		"transit_started_at", "estimated_transit_seconds",
		"created_at", "delivered_at", "cancelled_at", "cancel_reason",
	})
}

func TestTripRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	rows := newTripRows().AddRow(
		"TRK2026001", "biz-1", "drv-1", "IN_TRANSIT",
		"Plot 14", "Pune", "Ramesh", "9876543210",
		"Warehouse 3", "Nagpur", "Suresh", "9123456780",
		nil, nil, nil, nil,
		"Steel Coils", 1200.0, "CONTAINER", "STANDARD", nil, 45,
		created, created.Add(2*time.Hour),
		created.Add(3*time.Hour), int64(14400),
		created, nil, nil, nil,
	)

	mock.ExpectQuery("SELECT .+ FROM trips WHERE id = \\$1").
		WithArgs("TRK2026001").
		WillReturnRows(rows)

	repo := NewTripRepository(db)
	trip, err := repo.GetByID(context.Background(), "TRK2026001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trip.ID != "TRK2026001" || trip.DriverID != "drv-1" {
		t.Errorf("trip not scanned: %+v", trip)
	}
	if trip.Status != domain.TripStatusInTransit {
		t.Errorf("expected IN_TRANSIT, got %s", trip.Status)
	}
	if trip.SecondDrop != nil {
		t.Error("expected no second drop for NULL columns")
	}
	if trip.EstimatedTransit != 4*time.Hour {
		t.Errorf("expected 4h estimated transit, got %s", trip.EstimatedTransit)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestTripRepository_GetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM trips WHERE id = \\$1").
		WithArgs("TRK2026999").
		WillReturnRows(newTripRows())

	repo := NewTripRepository(db)
	_, err = repo.GetByID(context.Background(), "TRK2026999")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTripRepository_UpdateMissingTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trips SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewTripRepository(db)
	err = repo.Update(context.Background(), &domain.Trip{
		ID:        "TRK2026999",
		OwnerID:   "biz-1",
		Status:    domain.TripStatusCreated,
		CreatedAt: time.Now(),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for zero rows affected, got %v", err)
	}
}

func TestTrackingSequence_Next(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO tracking_sequences").
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(7))

	repo := NewTrackingSequenceRepository(db)
	n, err := repo.Next(context.Background(), 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("expected sequence 7, got %d", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
