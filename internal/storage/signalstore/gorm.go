package signalstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/marketlens/marketlens/internal/core"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// signalRecord is the persistence mapping for core.Signal.
type signalRecord struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Symbol        string    `gorm:"size:20;index;index:idx_signals_symbol_date,unique,priority:1"`
	SignalDate    time.Time `gorm:"index:idx_signals_symbol_date,unique,priority:2"`
	Type          string    `gorm:"size:10"`
	Strength      string    `gorm:"size:10"`
	EntryPrice    float64
	Target1       float64
	Target2       float64
	StopLoss      float64
	RiskAmount    float64
	RewardRatio1  float64
	RewardRatio2  float64
	Rationale     string `gorm:"type:text"`
	Status        string `gorm:"size:20;index"`
	ExpiryDate    time.Time
	Target1Hit    bool
	LastEvaluated time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (signalRecord) TableName() string {
	return "trading_signals"
}

// GormStore is a Postgres-backed signal store.
type GormStore struct {
	db *gorm.DB
}

// gormConfig is the connection config shared by all stores. Without
// TranslateError the postgres driver surfaces raw pgconn errors that never
// match gorm's sentinels.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

// NewGormStore connects to Postgres and migrates the signal schema.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	if err := db.AutoMigrate(&signalRecord{}); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return &GormStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save persists a newly generated signal.
func (s *GormStore) Save(ctx context.Context, sig core.Signal) error {
	rec, err := toRecord(sig)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return createError(err)
	}
	return nil
}

// createError maps a unique-index hit on (symbol, signal_date) or the primary
// key to the benign ErrSignalExists; everything else is a store failure.
func createError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return core.ErrSignalExists
	}
	return core.WrapError(core.ErrStoreFailed, err)
}

// Update persists lifecycle mutations.
func (s *GormStore) Update(ctx context.Context, sig core.Signal) error {
	rec, err := toRecord(sig)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&signalRecord{}).
		Where("id = ?", sig.ID).
		Updates(map[string]any{
			"status":         rec.Status,
			"stop_loss":      rec.StopLoss,
			"target1_hit":    rec.Target1Hit,
			"last_evaluated": rec.LastEvaluated,
		})
	if res.Error != nil {
		return core.WrapError(core.ErrStoreFailed, res.Error)
	}
	if res.RowsAffected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetByID retrieves a signal by ID.
func (s *GormStore) GetByID(ctx context.Context, id string) (*core.Signal, error) {
	var rec signalRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNotFound
		}
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	sig, err := fromRecord(rec)
	if err != nil {
		return nil, err
	}
	return &sig, nil
}

// List retrieves signals matching the filter.
func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]core.Signal, error) {
	query := s.db.WithContext(ctx).Model(&signalRecord{}).Order("signal_date DESC")

	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if !filter.From.IsZero() {
		query = query.Where("signal_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("signal_date <= ?", filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var recs []signalRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return fromRecords(recs)
}

// ListOpen returns all signals whose status is not terminal.
func (s *GormStore) ListOpen(ctx context.Context) ([]core.Signal, error) {
	var recs []signalRecord
	err := s.db.WithContext(ctx).
		Where("status IN ?", []string{string(core.StatusActive), string(core.StatusHitTarget1)}).
		Find(&recs).Error
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, err)
	}
	return fromRecords(recs)
}

// HasActive reports whether the symbol has an ACTIVE signal.
func (s *GormStore) HasActive(ctx context.Context, symbol string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&signalRecord{}).
		Where("symbol = ? AND status = ?", symbol, string(core.StatusActive)).
		Count(&count).Error
	if err != nil {
		return false, core.WrapError(core.ErrStoreFailed, err)
	}
	return count > 0, nil
}

// ExistsForDate reports whether any signal exists for (symbol, day).
func (s *GormStore) ExistsForDate(ctx context.Context, symbol string, date time.Time) (bool, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	var count int64
	err := s.db.WithContext(ctx).Model(&signalRecord{}).
		Where("symbol = ? AND signal_date >= ? AND signal_date < ?", symbol, day, day.Add(24*time.Hour)).
		Count(&count).Error
	if err != nil {
		return false, core.WrapError(core.ErrStoreFailed, err)
	}
	return count > 0, nil
}

func toRecord(sig core.Signal) (signalRecord, error) {
	rationale, err := json.Marshal(sig.Rationale)
	if err != nil {
		return signalRecord{}, core.WrapError(core.ErrStoreFailed, err)
	}
	return signalRecord{
		ID:            sig.ID,
		Symbol:        sig.Symbol,
		SignalDate:    sig.SignalDate,
		Type:          string(sig.Type),
		Strength:      string(sig.Strength),
		EntryPrice:    sig.EntryPrice,
		Target1:       sig.Target1,
		Target2:       sig.Target2,
		StopLoss:      sig.StopLoss,
		RiskAmount:    sig.RiskAmount,
		RewardRatio1:  sig.RewardRatio1,
		RewardRatio2:  sig.RewardRatio2,
		Rationale:     string(rationale),
		Status:        string(sig.Status),
		ExpiryDate:    sig.ExpiryDate,
		Target1Hit:    sig.Target1Hit,
		LastEvaluated: sig.LastEvaluated,
		CreatedAt:     sig.CreatedAt,
	}, nil
}

func fromRecord(rec signalRecord) (core.Signal, error) {
	var rationale core.Rationale
	if rec.Rationale != "" {
		if err := json.Unmarshal([]byte(rec.Rationale), &rationale); err != nil {
			return core.Signal{}, core.WrapError(core.ErrStoreFailed, err)
		}
	}
	return core.Signal{
		ID:            rec.ID,
		Symbol:        rec.Symbol,
		SignalDate:    rec.SignalDate,
		Type:          core.SignalType(rec.Type),
		Strength:      core.SignalStrength(rec.Strength),
		EntryPrice:    rec.EntryPrice,
		Target1:       rec.Target1,
		Target2:       rec.Target2,
		StopLoss:      rec.StopLoss,
		RiskAmount:    rec.RiskAmount,
		RewardRatio1:  rec.RewardRatio1,
		RewardRatio2:  rec.RewardRatio2,
		Rationale:     rationale,
		Status:        core.SignalStatus(rec.Status),
		ExpiryDate:    rec.ExpiryDate,
		Target1Hit:    rec.Target1Hit,
		LastEvaluated: rec.LastEvaluated,
		CreatedAt:     rec.CreatedAt,
	}, nil
}

func fromRecords(recs []signalRecord) ([]core.Signal, error) {
	result := make([]core.Signal, 0, len(recs))
	for _, rec := range recs {
		sig, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		result = append(result, sig)
	}
	return result, nil
}
