// Package storage хранит сохраненные пользователем сценарии как непрозрачные
// блобы по ключу. Движок расчетов о хранилище не знает.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloud-ru/fincalc-go/internal/config"
	"github.com/cloud-ru/fincalc-go/internal/metrics"
)

// ErrEmptyKey возвращается при пустом ключе
var ErrEmptyKey = errors.New("empty scenario key")

// ScenarioStore key-value хранилище сценариев
type ScenarioStore interface {
	Save(ctx context.Context, key string, blob []byte) error
	// Load возвращает false, если ключа нет
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// New создает хранилище по STORE_BACKEND
func New(cfg *config.Config) (ScenarioStore, error) {
	var (
		store ScenarioStore
		err   error
	)
	switch cfg.StoreBackend {
	case "", "memory":
		store = NewMemoryStore()
	case "redis":
		store, err = NewRedisStore(cfg.RedisAddr, cfg.RedisTTL)
	case "sqlite":
		store, err = NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(cfg.StoreBackend, store), nil
}

// Instrument оборачивает хранилище счетчиками операций
func Instrument(backend string, store ScenarioStore) ScenarioStore {
	if backend == "" {
		backend = "memory"
	}
	return &instrumentedStore{backend: backend, next: store}
}

type instrumentedStore struct {
	backend string
	next    ScenarioStore
}

func (s *instrumentedStore) observe(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoreOperations.WithLabelValues(s.backend, op, status).Inc()
}

func (s *instrumentedStore) Save(ctx context.Context, key string, blob []byte) error {
	err := s.next.Save(ctx, key, blob)
	s.observe("save", err)
	return err
}

func (s *instrumentedStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	blob, ok, err := s.next.Load(ctx, key)
	s.observe("load", err)
	return blob, ok, err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	err := s.next.Delete(ctx, key)
	s.observe("delete", err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
