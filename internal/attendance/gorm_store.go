package attendance

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleetly/internal/models"
)

// GormStore persists attendance records in Postgres. The read-modify-write
// in Mutate runs inside a transaction with a row lock, so concurrent writers
// of the same (driver, date) row are serialized by the database.
type GormStore struct {
	db func() *gorm.DB
}

// NewGormStore takes a DB accessor rather than a handle so the store can be
// built before config.InitDB has run.
func NewGormStore(db func() *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Mutate(ctx context.Context, driverID uint, date string, fn func(rec *models.AttendanceRecord) error) (*models.AttendanceRecord, error) {
	var out models.AttendanceRecord

	err := s.db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec models.AttendanceRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("driver_id = ? AND date = ?", driverID, date).
			First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec = models.AttendanceRecord{DriverID: driverID, Date: date, Events: models.ClockEvents{}}
		} else if err != nil {
			return err
		}

		if err := fn(&rec); err != nil {
			return err
		}

		if err := tx.Save(&rec).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *GormStore) Get(ctx context.Context, driverID uint, date string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.db().WithContext(ctx).
		Where("driver_id = ? AND date = ?", driverID, date).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
