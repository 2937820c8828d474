package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"loan-widget/domain"
	"loan-widget/repository"
)

// StateStore persists the last raw field values as a single JSON record.
// Neither Load nor Save ever fail the caller: problems are logged and Load
// falls back to an empty state.
type StateStore struct {
	kv  repository.KeyValueStore
	key string
	log zerolog.Logger
}

func NewStateStore(kv repository.KeyValueStore, key string, log zerolog.Logger) *StateStore {
	if key == "" {
		key = DefaultStorageKey
	}
	return &StateStore{kv: kv, key: key, log: log}
}

// Key returns the record key.
func (s *StateStore) Key() string {
	return s.key
}

// Load returns the persisted state, or an empty state when there is none or
// it cannot be read.
func (s *StateStore) Load(ctx context.Context) domain.PersistedState {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.PersistedState{}
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("failed to read persisted state")
		return domain.PersistedState{}
	}

	var record map[string]any
	if err := json.Unmarshal([]byte(raw), &record); err != nil || record == nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("discarding unreadable persisted state")
		return domain.PersistedState{}
	}

	state := domain.PersistedState{}
	for _, field := range domain.Fields() {
		v, ok := record[string(field)]
		if !ok {
			continue
		}
		str, ok := v.(string)
		if !ok {
			s.log.Debug().Str("field", string(field)).Msg("ignoring non-string persisted value")
			continue
		}
		state[string(field)] = str
	}
	return state
}

// Save writes the known keys of state. It reports whether the write succeeded.
func (s *StateStore) Save(ctx context.Context, state domain.PersistedState) bool {
	data, err := json.Marshal(state.Known())
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode persisted state")
		return false
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("failed to save persisted state")
		return false
	}
	return true
}
