package keystore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/provider"
)

type fakeValidator struct {
	result provider.Validation
}

func (f fakeValidator) Validate(context.Context, string) provider.Validation {
	return f.result
}

type fakeStability struct {
	validation provider.Validation
	balances   map[string]float64
	errs       map[string]error
}

func (f fakeStability) Validate(context.Context, string) provider.Validation {
	return f.validation
}

func (f fakeStability) CheckBalance(_ context.Context, key string) (float64, error) {
	if err, ok := f.errs[key]; ok {
		return 0, err
	}
	return f.balances[key], nil
}

func newService(t *testing.T, gemini Validator, stability BalanceChecker) *Service {
	t.Helper()
	return NewService(NewFileStore(t.TempDir()), gemini, stability, logger.NewTestLogger())
}

func TestAddGeminiKey(t *testing.T) {
	t.Run("valid key is retained", func(t *testing.T) {
		s := newService(t, fakeValidator{provider.ValidationValid}, fakeStability{})

		result, err := s.AddGeminiKey(context.Background(), 1, "g-key")
		require.NoError(t, err)
		assert.Equal(t, provider.ValidationValid, result)

		key, err := s.GeminiKey(1)
		require.NoError(t, err)
		assert.Equal(t, "g-key", key)
	})

	t.Run("rejected key is removed", func(t *testing.T) {
		s := newService(t, fakeValidator{provider.ValidationInvalid}, fakeStability{})

		result, err := s.AddGeminiKey(context.Background(), 1, "g-key")
		require.NoError(t, err)
		assert.Equal(t, provider.ValidationInvalid, result)

		_, err = s.GeminiKey(1)
		assert.ErrorIs(t, err, ErrNoKey)
	})

	t.Run("indeterminate validation keeps the key", func(t *testing.T) {
		s := newService(t, fakeValidator{provider.ValidationIndeterminate}, fakeStability{})

		result, err := s.AddGeminiKey(context.Background(), 1, "g-key")
		require.NoError(t, err)
		assert.Equal(t, provider.ValidationIndeterminate, result)

		key, err := s.GeminiKey(1)
		require.NoError(t, err)
		assert.Equal(t, "g-key", key)
	})

	t.Run("slot holds a single key", func(t *testing.T) {
		s := newService(t, fakeValidator{provider.ValidationValid}, fakeStability{})

		_, err := s.AddGeminiKey(context.Background(), 1, "first")
		require.NoError(t, err)
		_, err = s.AddGeminiKey(context.Background(), 1, "second")
		require.NoError(t, err)

		key, err := s.GeminiKey(1)
		require.NoError(t, err)
		assert.Equal(t, "second", key, "add overwrites the slot")
	})
}

func TestAddStabilityKey(t *testing.T) {
	t.Run("keys accumulate", func(t *testing.T) {
		store := NewFileStore(t.TempDir())
		s := NewService(store, fakeValidator{}, fakeStability{validation: provider.ValidationValid}, logger.NewTestLogger())

		_, err := s.AddStabilityKey(context.Background(), 1, "sk-a")
		require.NoError(t, err)
		_, err = s.AddStabilityKey(context.Background(), 1, "sk-b")
		require.NoError(t, err)

		keys, err := store.Get(1, KindStability)
		require.NoError(t, err)
		assert.Equal(t, []string{"sk-a", "sk-b"}, keys)
	})

	t.Run("rejected key is filtered out", func(t *testing.T) {
		store := NewFileStore(t.TempDir())
		require.NoError(t, store.Put(1, KindStability, []string{"sk-good"}))
		s := NewService(store, fakeValidator{}, fakeStability{validation: provider.ValidationInvalid}, logger.NewTestLogger())

		result, err := s.AddStabilityKey(context.Background(), 1, "sk-bad")
		require.NoError(t, err)
		assert.Equal(t, provider.ValidationInvalid, result)

		keys, err := store.Get(1, KindStability)
		require.NoError(t, err)
		assert.Equal(t, []string{"sk-good"}, keys)
	})

	t.Run("indeterminate validation keeps the key", func(t *testing.T) {
		store := NewFileStore(t.TempDir())
		s := NewService(store, fakeValidator{}, fakeStability{validation: provider.ValidationIndeterminate}, logger.NewTestLogger())

		_, err := s.AddStabilityKey(context.Background(), 1, "sk-maybe")
		require.NoError(t, err)

		keys, err := store.Get(1, KindStability)
		require.NoError(t, err)
		assert.Equal(t, []string{"sk-maybe"}, keys)
	})
}

func TestResolveBalance(t *testing.T) {
	t.Run("sums keys above threshold and prunes the rest", func(t *testing.T) {
		store := NewFileStore(t.TempDir())
		require.NoError(t, store.Put(1, KindStability, []string{"low", "mid", "high"}))
		s := NewService(store, fakeValidator{}, fakeStability{
			balances: map[string]float64{"low": 3, "mid": 10, "high": 6},
		}, logger.NewTestLogger())

		total, active, err := s.ResolveBalance(context.Background(), 1)
		require.NoError(t, err)

		assert.Equal(t, 16.0, total)
		assert.Equal(t, "mid", active, "first surviving key becomes active")

		keys, err := store.Get(1, KindStability)
		require.NoError(t, err)
		assert.Equal(t, []string{"mid", "high"}, keys)
	})

	t.Run("no keys on file", func(t *testing.T) {
		s := newService(t, fakeValidator{}, fakeStability{})

		_, _, err := s.ResolveBalance(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNoKeys)
	})

	t.Run("all keys below threshold", func(t *testing.T) {
		store := NewFileStore(t.TempDir())
		require.NoError(t, store.Put(1, KindStability, []string{"a", "b"}))
		s := NewService(store, fakeValidator{}, fakeStability{
			balances: map[string]float64{"a": 2, "b": 5},
		}, logger.NewTestLogger())

		_, _, err := s.ResolveBalance(context.Background(), 1)
		assert.ErrorIs(t, err, ErrNoKeys)

		keys, err := store.Get(1, KindStability)
		require.NoError(t, err)
		assert.Empty(t, keys, "threshold is inclusive: balance of exactly 5 is pruned")
	})

	t.Run("unreachable provider keeps the key but counts nothing", func(t *testing.T) {
		store := NewFileStore(t.TempDir())
		require.NoError(t, store.Put(1, KindStability, []string{"flaky", "good"}))
		s := NewService(store, fakeValidator{}, fakeStability{
			balances: map[string]float64{"good": 12},
			errs:     map[string]error{"flaky": errors.New("connection refused")},
		}, logger.NewTestLogger())

		total, active, err := s.ResolveBalance(context.Background(), 1)
		require.NoError(t, err)

		assert.Equal(t, 12.0, total)
		assert.Equal(t, "good", active)

		keys, err := store.Get(1, KindStability)
		require.NoError(t, err)
		assert.Equal(t, []string{"flaky", "good"}, keys, "transient failure must not evict")
	})
}

func TestEvictGeminiKey(t *testing.T) {
	s := newService(t, fakeValidator{provider.ValidationValid}, fakeStability{})

	_, err := s.AddGeminiKey(context.Background(), 1, "g-key")
	require.NoError(t, err)
	require.NoError(t, s.EvictGeminiKey(1))

	_, err = s.GeminiKey(1)
	assert.ErrorIs(t, err, ErrNoKey)
}
