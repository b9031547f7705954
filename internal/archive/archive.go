package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marketlens/marketlens/internal/core"
)

// Backend is a flat key/value blob store for archived run output.
type Backend interface {
	Write(ctx context.Context, path string, data []byte) error
	Read(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// DayRecord is the archived form of one day's analysis output for the
// persistence/reporting collaborator.
type DayRecord struct {
	Date        string                `json:"date"`
	Breakdowns  []core.ScoreBreakdown `json:"breakdowns"`
	Signals     []core.Signal         `json:"signals"`
	Transitions []core.Transition     `json:"transitions"`
}

// Archiver persists one JSON record per analysis day. Writing the same day
// twice overwrites, keeping re-runs idempotent.
type Archiver struct {
	backend Backend
}

// New creates an archiver over the given backend.
func New(backend Backend) *Archiver {
	return &Archiver{backend: backend}
}

// StoreDay archives a day's record under runs/<date>.json.
func (a *Archiver) StoreDay(ctx context.Context, rec DayRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	if err := a.backend.Write(ctx, dayPath(rec.Date), data); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	return nil
}

// LoadDay reads back one day's archived record.
func (a *Archiver) LoadDay(ctx context.Context, date time.Time) (*DayRecord, error) {
	data, err := a.backend.Read(ctx, dayPath(core.DateKey(date)))
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	var rec DayRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return &rec, nil
}

// ListDays returns the archived day keys.
func (a *Archiver) ListDays(ctx context.Context) ([]string, error) {
	paths, err := a.backend.List(ctx, "runs")
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return paths, nil
}

func dayPath(date string) string {
	return fmt.Sprintf("runs/%s.json", date)
}
