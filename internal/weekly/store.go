package weekly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/weeklyfit/internal/kv"
	"github.com/2beens/weeklyfit/internal/telemetry/metrics"
	"github.com/2beens/weeklyfit/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Store owns the weekly record and its sibling preferences and reminders
// documents. Every mutation is applied under one lock and mirrored to the
// kv backend before it returns. Read-modify-write mutations first pick up
// whatever another process (the week_archive cron, a second replica) wrote
// to the backend; full replacements resolve last write wins.
type Store struct {
	mu sync.Mutex

	kv      kv.Store
	metrics *metrics.Manager

	now   func() time.Time
	newID func() uuid.UUID

	record WeeklyRecord
	// synced holds the weeklyData bytes last read from or written to kv.
	synced []byte

	preferences Preferences
	reminders   Reminders
}

// NewStore loads and normalizes the persisted documents. A read failure is
// logged and the store starts from defaults.
func NewStore(ctx context.Context, kvStore kv.Store, metricsManager *metrics.Manager) *Store {
	s := &Store{
		kv:      kvStore,
		metrics: metricsManager,
		now:     time.Now,
		newID:   uuid.New,
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "weekly.store.load")
	defer span.End()

	s.record = s.loadRecord(ctx)
	s.preferences = s.loadPreferences(ctx)
	s.reminders = s.loadReminders(ctx)

	return s
}

func (s *Store) read(ctx context.Context, key string) []byte {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		log.Debugf("weekly store: nothing persisted under [%s], using defaults", key)
		return nil
	}
	if err != nil {
		log.Errorf("weekly store: read [%s]: %s, using defaults", key, err)
		return nil
	}
	return raw
}

func (s *Store) reportRepairs(key string, repairs []string) {
	if len(repairs) == 0 {
		return
	}
	s.metrics.CounterNormalizeRepairs.WithLabelValues(key).Add(float64(len(repairs)))
	log.Warnf("weekly store: [%s] had %d malformed fields replaced by defaults: %v", key, len(repairs), repairs)
}

func (s *Store) loadRecord(ctx context.Context) WeeklyRecord {
	raw := s.read(ctx, KeyWeeklyData)
	res := Normalize(raw)
	s.reportRepairs(KeyWeeklyData, res.Repairs)
	s.synced = raw
	return res.Record
}

// refresh adopts the persisted record if it changed since this store last
// saw it. A missing key or a read error keeps the in-memory record. Callers
// hold s.mu.
func (s *Store) refresh(ctx context.Context) {
	raw, err := s.kv.Get(ctx, KeyWeeklyData)
	if errors.Is(err, kv.ErrNotFound) {
		return
	}
	if err != nil {
		log.Errorf("weekly store: refresh [%s]: %s, keeping in-memory record", KeyWeeklyData, err)
		return
	}
	if bytes.Equal(raw, s.synced) {
		return
	}

	res := Normalize(raw)
	s.reportRepairs(KeyWeeklyData, res.Repairs)
	s.record = res.Record
	s.synced = raw
	s.metrics.CounterExternalRefreshes.Inc()
	log.Infof("weekly store: picked up a record written by another process")
}

func (s *Store) loadPreferences(ctx context.Context) Preferences {
	prefs, repairs := NormalizePreferences(s.read(ctx, KeyPreferences))
	s.reportRepairs(KeyPreferences, repairs)
	return prefs
}

func (s *Store) loadReminders(ctx context.Context) Reminders {
	reminders, repairs := NormalizeReminders(s.read(ctx, KeyReminders))
	s.reportRepairs(KeyReminders, repairs)
	return reminders
}

func (s *Store) persist(ctx context.Context, key string, doc any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "weekly.store.persist")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	result := "ok"
	defer func() {
		s.metrics.CounterStoreWrites.WithLabelValues(key, result).Inc()
	}()

	raw, err := json.Marshal(doc)
	if err != nil {
		result = "error"
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		result = "error"
		return fmt.Errorf("persist %s: %w", key, err)
	}
	if key == KeyWeeklyData {
		s.synced = raw
	}
	return nil
}

// Record returns a deep copy of the current weekly record.
func (s *Store) Record() WeeklyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Current refreshes from the backend and returns a deep copy of the record.
func (s *Store) Current(ctx context.Context) WeeklyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
	return s.record.Clone()
}

// Replace swaps in a full record and persists it, even when nothing
// changed. There is no merging: the caller owns the read-modify-write. The
// in-memory swap happens before the write, so a persistence error leaves
// memory ahead of the backend until the next successful write.
func (s *Store) Replace(ctx context.Context, r WeeklyRecord) error {
	next := r.Clone()
	next.ensureShape()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = next
	return s.persist(ctx, KeyWeeklyData, s.record)
}

// Apply runs one command against the current record. ErrInvalidInput
// rejections leave the record untouched. The returned record is the state
// after the command.
func (s *Store) Apply(ctx context.Context, cmd Command) (WeeklyRecord, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "weekly.store.apply")
	defer span.End()
	span.SetAttributes(attribute.String("command", cmd.Name()))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	next := s.record.Clone()
	env := commandEnv{
		now:   s.now(),
		newID: s.newID,
	}
	if err := cmd.apply(&next, env); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			s.metrics.CounterRejectedCommands.WithLabelValues(cmd.Name()).Inc()
		}
		return s.record.Clone(), fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	next.ensureShape()

	s.record = next
	if _, ok := cmd.(ArchiveWeek); ok {
		s.metrics.CounterArchivedWeeks.Inc()
		log.Infof("weekly store: week archived, %d weeks in history", len(next.History.PreviousWeeks))
	}

	return s.record.Clone(), s.persist(ctx, KeyWeeklyData, s.record)
}

// ArchiveAndReset prepends a snapshot of the live week to history and
// empties workouts, meals and hydration. Goals, user info and older history
// are kept.
func (s *Store) ArchiveAndReset(ctx context.Context) error {
	_, err := s.Apply(ctx, ArchiveWeek{})
	return err
}

// Reset drops everything, archived weeks included, back to DefaultRecord.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = DefaultRecord()
	log.Infof("weekly store: record reset to defaults")
	return s.persist(ctx, KeyWeeklyData, s.record)
}

func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	cleared := len(s.record.History.PreviousWeeks)
	s.record.History.PreviousWeeks = []WeekSnapshot{}
	log.Infof("weekly store: cleared %d archived weeks", cleared)
	return s.persist(ctx, KeyWeeklyData, s.record)
}

func (s *Store) NutritionTargets() NutritionTargets {
	return ComputeNutritionTargets(s.Record().UserInfo)
}

func (s *Store) Summary() Summary {
	return Summarize(s.Record())
}

func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preferences
}

func (s *Store) ReplacePreferences(ctx context.Context, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.preferences = prefs
	return s.persist(ctx, KeyPreferences, s.preferences)
}

func (s *Store) Reminders() Reminders {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders.Clone()
}

func (s *Store) ReplaceReminders(ctx context.Context, reminders Reminders) error {
	next := reminders.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminders = next
	return s.persist(ctx, KeyReminders, s.reminders)
}
