package stores

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Vehicle statuses.
const (
	VehicleAvailable   = "available"
	VehicleRented      = "rented"
	VehicleMaintenance = "maintenance"
)

// Reservation statuses.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
)

// Vehicle is a rentable fleet vehicle.
type Vehicle struct {
	gorm.Model
	Plate     string  `gorm:"uniqueIndex;not null"`
	Name      string  `gorm:"not null"`
	Type      string  `gorm:"not null"` // e.g. "กระบะ", "รถตู้", "รถบรรทุก 6 ล้อ"
	Status    string  `gorm:"index;not null"`
	Location  string
	DailyRate float64
}

// Reservation is a booking of a vehicle by a customer.
type Reservation struct {
	gorm.Model
	Code         string `gorm:"uniqueIndex;not null"`
	VehicleID    uint   `gorm:"index;not null"`
	Vehicle      Vehicle
	CustomerName string    `gorm:"not null"`
	Origin       string
	Destination  string
	PickupAt     time.Time `gorm:"index;not null"`
	ReturnAt     time.Time `gorm:"not null"`
	Status       string    `gorm:"index;not null"`
}

// ChatTurn is the audit record of one relayed chat turn. Message content is
// not stored, only sizes and outcome.
type ChatTurn struct {
	ID            uint      `gorm:"primarykey"`
	CreatedAt     time.Time `gorm:"index"`
	RequestID     string    `gorm:"uniqueIndex;not null"`
	Outcome       string    `gorm:"index;not null"`
	ErrorKind     string
	PromptChars   int
	HistoryLen    int
	Frames        int
	ReplyChars    int
	ContextStatus string
	DurationMS    int64
}

// OperationalStore exposes the read side used to ground assistant replies.
type OperationalStore interface {
	CountVehiclesByStatus(ctx context.Context) (map[string]int64, error)
	AvailableVehicles(ctx context.Context, limit int) ([]Vehicle, error)
	VehicleByPlate(ctx context.Context, plate string) (*Vehicle, error)
	UpcomingReservations(ctx context.Context, from time.Time, limit int) ([]Reservation, error)
}

// TurnStore persists chat turn audit records.
type TurnStore interface {
	SaveTurn(ctx context.Context, turn *ChatTurn) error
	PurgeTurnsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store is the full database surface used by the relay.
type Store interface {
	OperationalStore
	TurnStore

	// Connection management
	Connect() error
	Close() error

	// Health check
	Ping() error
}

// StoreConfig holds configuration for database stores
type StoreConfig struct {
	Type       string            `json:"type"`       // "sqlite", "postgres"
	Connection string            `json:"connection"` // connection string
	Options    map[string]string `json:"options"`    // additional options
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
		Options:    make(map[string]string),
	}
}

// WithOption adds an option to the store configuration
func (c *StoreConfig) WithOption(key, value string) *StoreConfig {
	c.Options[key] = value
	return c
}
