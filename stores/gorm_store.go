package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"
)

// GormStore implements Store over any gorm dialector.
type GormStore struct {
	db   *gorm.DB
	open func() (*gorm.DB, error)
}

// Connect opens the database and migrates the schema.
func (s *GormStore) Connect() error {
	db, err := s.open()
	if err != nil {
		return err
	}
	s.db = db

	if err := s.db.AutoMigrate(&Vehicle{}, &Reservation{}, &ChatTurn{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *GormStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (s *GormStore) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB exposes the underlying handle for seeding and tests.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) CountVehiclesByStatus(ctx context.Context) (map[string]int64, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&Vehicle{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count vehicles: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (s *GormStore) AvailableVehicles(ctx context.Context, limit int) ([]Vehicle, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var vehicles []Vehicle
	q := s.db.WithContext(ctx).Where("status = ?", VehicleAvailable).Order("daily_rate ASC, plate ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&vehicles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch available vehicles: %w", err)
	}
	return vehicles, nil
}

// VehicleByPlate returns nil, nil when no vehicle has the plate.
func (s *GormStore) VehicleByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var v Vehicle
	err := s.db.WithContext(ctx).Where("plate = ?", NormalizePlate(plate)).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vehicle %s: %w", plate, err)
	}
	return &v, nil
}

// UpcomingReservations returns open reservations that have not yet ended,
// earliest pickup first.
func (s *GormStore) UpcomingReservations(ctx context.Context, from time.Time, limit int) ([]Reservation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	var res []Reservation
	q := s.db.WithContext(ctx).
		Preload("Vehicle").
		Where("return_at >= ? AND status IN ?", from, []string{ReservationPending, ReservationConfirmed}).
		Order("pickup_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&res).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reservations: %w", err)
	}
	return res, nil
}

func (s *GormStore) SaveTurn(ctx context.Context, turn *ChatTurn) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := s.db.WithContext(ctx).Create(turn).Error; err != nil {
		return fmt.Errorf("failed to save chat turn: %w", err)
	}
	return nil
}

func (s *GormStore) PurgeTurnsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}
	tx := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&ChatTurn{})
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to purge chat turns: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

// NormalizePlate canonicalises a plate as "<prefix>-<digits>", e.g.
// "กข 1234", "กข1234" and "กข-1234" all become "กข-1234", and "1กค 5678"
// becomes "1กค-5678".
func NormalizePlate(plate string) string {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return unicode.ToUpper(r)
	}, plate)
	runes := []rune(compact)
	split := len(runes)
	for split > 0 && unicode.IsDigit(runes[split-1]) {
		split--
	}
	if split == 0 || split == len(runes) {
		return compact
	}
	return string(runes[:split]) + "-" + string(runes[split:])
}
