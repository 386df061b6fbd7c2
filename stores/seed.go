package stores

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SeedDemoData inserts a small demo fleet and reservation book when the
// vehicles table is empty.
func (s *GormStore) SeedDemoData(ctx context.Context, now time.Time) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&Vehicle{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count vehicles: %w", err)
	}
	if count > 0 {
		return nil
	}

	vehicles := []Vehicle{
		{Plate: "กข-1234", Name: "Toyota Hilux Revo", Type: "กระบะ", Status: VehicleAvailable, Location: "กรุงเทพฯ (บางนา)", DailyRate: 1500},
		{Plate: "ฮค-5678", Name: "Toyota Commuter", Type: "รถตู้", Status: VehicleRented, Location: "ชลบุรี (แหลมฉบัง)", DailyRate: 2200},
		{Plate: "1กค-9012", Name: "Isuzu FRR", Type: "รถบรรทุก 6 ล้อ", Status: VehicleAvailable, Location: "ลาดกระบัง", DailyRate: 3800},
		{Plate: "ขง-3456", Name: "Isuzu D-Max", Type: "กระบะ", Status: VehicleMaintenance, Location: "อยุธยา", DailyRate: 1400},
		{Plate: "ชบ-7788", Name: "Hino 500", Type: "รถบรรทุก 10 ล้อ", Status: VehicleAvailable, Location: "ชลบุรี (แหลมฉบัง)", DailyRate: 6500},
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vehicles).Error; err != nil {
			return fmt.Errorf("failed to seed vehicles: %w", err)
		}
		day := 24 * time.Hour
		reservations := []Reservation{
			{Code: "RSV-0001", VehicleID: vehicles[1].ID, CustomerName: "บริษัท สยามขนส่ง จำกัด", Origin: "แหลมฉบัง", Destination: "นครราชสีมา", PickupAt: now.Add(-day), ReturnAt: now.Add(2 * day), Status: ReservationConfirmed},
			{Code: "RSV-0002", VehicleID: vehicles[0].ID, CustomerName: "คุณสมชาย ใจดี", Origin: "บางนา", Destination: "เชียงใหม่", PickupAt: now.Add(day), ReturnAt: now.Add(4 * day), Status: ReservationPending},
			{Code: "RSV-0003", VehicleID: vehicles[2].ID, CustomerName: "ห้างหุ้นส่วน ไทยเฟรท", Origin: "ลาดกระบัง", Destination: "ขอนแก่น", PickupAt: now.Add(3 * day), ReturnAt: now.Add(5 * day), Status: ReservationConfirmed},
			{Code: "RSV-0000", VehicleID: vehicles[4].ID, CustomerName: "บริษัท อีสเทิร์นโลจิสติกส์", Origin: "แหลมฉบัง", Destination: "ระยอง", PickupAt: now.Add(-5 * day), ReturnAt: now.Add(-3 * day), Status: ReservationCompleted},
		}
		if err := tx.Create(&reservations).Error; err != nil {
			return fmt.Errorf("failed to seed reservations: %w", err)
		}
		return nil
	})
}
