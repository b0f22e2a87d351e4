package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"freight/internal/repository"
)

func TestUnitOfWork_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO tracking_sequences").
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(1))
	mock.ExpectCommit()

	uow := NewUnitOfWork(db)
	err = uow.WithinTx(context.Background(), func(r repository.Repositories) error {
		_, err := r.Sequences.Next(context.Background(), 2026)
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("milestone append failed")
	uow := NewUnitOfWork(db)
	err = uow.WithinTx(context.Background(), func(r repository.Repositories) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
