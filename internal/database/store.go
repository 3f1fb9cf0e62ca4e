package database

/*
	The attack store is the single source of truth for captured events. It is an
	append-only log: rows are never updated or deleted here, rotation is an
	external concern. Writes are serialized at the store boundary so commits are
	atomic under concurrent capture handlers; reads are snapshot reads and never
	block on writers.
*/

import (
	"sync"

	"github.com/mjollne/varde/internal/database/models"

	"gorm.io/driver/sqlite" // Sqlite driver based on CGO
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Risk bucket thresholds for the breakdown query
const (
	HighRiskFloor   = 70
	MediumRiskFloor = 40
)

// RiskBreakdown is the three-bucket histogram over risk scores
type RiskBreakdown struct {
	High   int64 `json:"high"`
	Medium int64 `json:"medium"`
	Low    int64 `json:"low"`
}

// AttackStore owns AttackEvent storage and id assignment. No other component
// writes to the attacks table.
type AttackStore struct {
	db *gorm.DB
	mu sync.Mutex // single-writer discipline for Insert
}

// NewAttackStore opens (or creates) the sqlite database at the given path and
// migrates the attacks table. A failure here is the only fatal condition in the
// pipeline and must abort startup.
func NewAttackStore(path string, config ...gorm.Config) (*AttackStore, error) {
	conf := gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if len(config) != 0 {
		conf = config[0]
	}

	db, err := gorm.Open(sqlite.Open(path), &conf)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.AttackEvent{}); err != nil {
		return nil, err
	}

	return &AttackStore{db: db}, nil
}

// Insert atomically assigns the next id and commits the event, returning the
// assigned id. The caller decides what to do with a failure; the capture path
// logs and carries on.
func (s *AttackStore) Insert(event *models.AttackEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.Create(event)
	if result.Error != nil {
		return 0, result.Error
	}
	return event.ID, nil
}

// Tail returns all events with id greater than sinceID in ascending id order.
// Between commits it is idempotent: no duplicates, no gaps.
func (s *AttackStore) Tail(sinceID int64) ([]models.AttackEvent, error) {
	var events []models.AttackEvent
	result := s.db.Where("id > ?", sinceID).Order("id asc").Find(&events)
	return events, result.Error
}

// Recent returns up to limit events newer than the since timestamp, newest first
func (s *AttackStore) Recent(limit int, since float64) ([]models.AttackEvent, error) {
	var events []models.AttackEvent
	result := s.db.Where("timestamp > ?", since).Order("timestamp desc").Limit(limit).Find(&events)
	return events, result.Error
}

// CountSince counts events newer than the since timestamp
func (s *AttackStore) CountSince(since float64) (int64, error) {
	var count int64
	result := s.db.Model(&models.AttackEvent{}).Where("timestamp > ?", since).Count(&count)
	return count, result.Error
}

// RiskBreakdown buckets events newer than since by risk score.
// The buckets partition the score range, so the counts sum to CountSince.
func (s *AttackStore) RiskBreakdown(since float64) (RiskBreakdown, error) {
	var breakdown RiskBreakdown

	high, err := s.countRange(since, HighRiskFloor, 101)
	if err != nil {
		return breakdown, err
	}
	medium, err := s.countRange(since, MediumRiskFloor, HighRiskFloor)
	if err != nil {
		return breakdown, err
	}
	low, err := s.countRange(since, -1, MediumRiskFloor)
	if err != nil {
		return breakdown, err
	}

	breakdown.High = high
	breakdown.Medium = medium
	breakdown.Low = low
	return breakdown, nil
}

func (s *AttackStore) countRange(since float64, floor, ceil int) (int64, error) {
	var count int64
	result := s.db.Model(&models.AttackEvent{}).
		Where("timestamp > ? AND risk_score >= ? AND risk_score < ?", since, floor, ceil).
		Count(&count)
	return count, result.Error
}
