package signalstore

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/marketlens/marketlens/internal/core"
)

func TestGormConfig_TranslatesDriverErrors(t *testing.T) {
	cfg := gormConfig()
	assert.True(t, cfg.TranslateError,
		"duplicate-key detection relies on the driver translating pg errors")
}

func TestCreateError_DuplicateKey(t *testing.T) {
	assert.ErrorIs(t, createError(gorm.ErrDuplicatedKey), core.ErrSignalExists)

	wrapped := fmt.Errorf("insert trading_signals: %w", gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, createError(wrapped), core.ErrSignalExists)
}

func TestCreateError_OtherFailures(t *testing.T) {
	err := createError(fmt.Errorf("connection refused"))
	assert.ErrorIs(t, err, core.ErrStoreFailed)
	assert.NotErrorIs(t, err, core.ErrSignalExists)
}
