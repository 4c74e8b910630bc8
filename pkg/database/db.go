package database

import (
	"fmt"
	"time"

	"github.com/Katzler/shapeshifter/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	KeyID          uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date           string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount   int    `gorm:"default:0" json:"request_count"`
	AssignedShifts int    `gorm:"default:0" json:"assigned_shifts"`
	TotalAgents    int    `gorm:"default:0" json:"total_agents"`
}

// TableName keeps the singular table name
func (APIUsage) TableName() string { return "api_usage" }

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Workspace is one team with its own agents and schedule.
type Workspace struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AgentRecord represents the agents table. Preferences hold the JSON form
// of models.WeekPreferences.
type AgentRecord struct {
	WorkspaceID   string `gorm:"primaryKey;size:36"`
	ID            string `gorm:"primaryKey;size:64"`
	Position      int    `gorm:"not null;default:0"`
	Name          string `gorm:"not null"`
	Email         string
	ContractHours int    `gorm:"not null;default:40"`
	Preferences   string `gorm:"type:text;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (AgentRecord) TableName() string { return "agents" }

// ScheduleSlot represents the schedule_slots table; one row per filled slot.
type ScheduleSlot struct {
	WorkspaceID string `gorm:"primaryKey;size:36"`
	Day         int    `gorm:"primaryKey;autoIncrement:false"`
	Shift       int    `gorm:"primaryKey;autoIncrement:false"`
	AgentID     string `gorm:"index;not null;size:64"`
}

// Models lists every table for migration.
func Models() []any {
	return []any{&APIKey{}, &APIUsage{}, &MasterUser{}, &Workspace{}, &AgentRecord{}, &ScheduleSlot{}}
}

// InitDB opens Postgres when a URL is configured and SQLite otherwise, then
// migrates the schema.
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.URL != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		db, err = OpenSQLite(cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database. ":memory:" gives a private database
// held on a single connection.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
