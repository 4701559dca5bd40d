package keystore

import (
	"context"
	"fmt"

	"github.com/avetisyanz/dreambot/internal/logger"
	"github.com/avetisyanz/dreambot/internal/provider"
)

// LowBalanceThreshold is the credit floor below which a pooled key is
// considered spent and silently pruned.
const LowBalanceThreshold = 5.0

type Validator interface {
	Validate(ctx context.Context, key string) provider.Validation
}

type BalanceChecker interface {
	Validator
	CheckBalance(ctx context.Context, key string) (float64, error)
}

// Service composes a Store with provider-side validation. Keys are only
// ever evicted on an explicit provider rejection or a confirmed low
// balance; transient failures keep the key as a best-effort guess.
type Service struct {
	store     Store
	gemini    Validator
	stability BalanceChecker
	logger    logger.Logger
}

func NewService(store Store, gemini Validator, stability BalanceChecker, log logger.Logger) *Service {
	return &Service{
		store:     store,
		gemini:    gemini,
		stability: stability,
		logger:    log,
	}
}

// AddGeminiKey overwrites the chat's single gemini slot and probes the
// provider synchronously.
func (s *Service) AddGeminiKey(ctx context.Context, chatID int64, key string) (provider.Validation, error) {
	if err := s.store.Put(chatID, KindGemini, []string{key}); err != nil {
		return provider.ValidationIndeterminate, err
	}

	result := s.gemini.Validate(ctx, key)
	if result == provider.ValidationInvalid {
		if err := s.store.Delete(chatID, KindGemini); err != nil {
			return result, err
		}
	}

	s.logger.WithFields(logger.Fields{
		"chat_id": chatID,
		"kind":    KindGemini,
		"result":  result.String(),
	}).Info("Key added")

	return result, nil
}

// AddStabilityKey appends to the chat's key pool and probes the provider's
// balance endpoint.
func (s *Service) AddStabilityKey(ctx context.Context, chatID int64, key string) (provider.Validation, error) {
	keys, err := s.store.Get(chatID, KindStability)
	if err != nil {
		return provider.ValidationIndeterminate, err
	}
	if err := s.store.Put(chatID, KindStability, append(keys, key)); err != nil {
		return provider.ValidationIndeterminate, err
	}

	result := s.stability.Validate(ctx, key)
	if result == provider.ValidationInvalid {
		if err := s.store.Put(chatID, KindStability, keys); err != nil {
			return result, err
		}
	}

	s.logger.WithFields(logger.Fields{
		"chat_id": chatID,
		"kind":    KindStability,
		"result":  result.String(),
	}).Info("Key added")

	return result, nil
}

// GeminiKey returns the chat's gemini key or ErrNoKey.
func (s *Service) GeminiKey(chatID int64) (string, error) {
	keys, err := s.store.Get(chatID, KindGemini)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", ErrNoKey
	}
	return keys[0], nil
}

// EvictGeminiKey drops the slot after the provider rejected the key
// mid-conversation.
func (s *Service) EvictGeminiKey(chatID int64) error {
	return s.store.Delete(chatID, KindGemini)
}

// ResolveBalance sweeps the chat's stability pool: every key's balance is
// queried, keys above the threshold are kept and summed, confirmed-low
// keys are dropped and the pool rewritten with survivors. Keys whose
// balance could not be determined stay on file but contribute nothing.
//
// The first key with a usable balance is returned as the active key and
// must be threaded explicitly through the call chain that follows; there
// is no process-global active key.
func (s *Service) ResolveBalance(ctx context.Context, chatID int64) (total float64, active string, err error) {
	keys, err := s.store.Get(chatID, KindStability)
	if err != nil {
		return 0, "", err
	}
	if len(keys) == 0 {
		return 0, "", ErrNoKeys
	}

	var survivors []string
	var usable []string
	for _, key := range keys {
		balance, err := s.stability.CheckBalance(ctx, key)
		if err != nil {
			// Indeterminate: keep the key, count nothing.
			s.logger.WithError(err).WithField("chat_id", chatID).Warn("Balance check failed, keeping key")
			survivors = append(survivors, key)
			continue
		}
		if balance <= LowBalanceThreshold {
			s.logger.WithFields(logger.Fields{
				"chat_id": chatID,
				"balance": balance,
			}).Info("Pruning low-balance key")
			continue
		}
		survivors = append(survivors, key)
		usable = append(usable, key)
		total += balance
	}

	if err := s.store.Put(chatID, KindStability, survivors); err != nil {
		return 0, "", fmt.Errorf("rewrite key pool: %w", err)
	}

	if len(usable) == 0 {
		return 0, "", ErrNoKeys
	}
	return total, usable[0], nil
}
