package keystore

import "errors"

// Kind names a provider key namespace. Each chat has one namespace per
// provider: a single-slot gemini key and an accumulating stability pool.
type Kind string

const (
	KindGemini    Kind = "gemini"
	KindStability Kind = "stability"
)

var (
	// ErrNoKey means the chat has no gemini key on file.
	ErrNoKey = errors.New("keystore: no key on file")
	// ErrNoKeys means the chat has no stability key with a usable balance.
	ErrNoKeys = errors.New("keystore: no valid keys")
)

// Store persists per-chat provider keys. Implementations must keep key
// order stable: the first pooled key that survives a balance sweep becomes
// the active key for the request being served.
type Store interface {
	Get(chatID int64, kind Kind) ([]string, error)
	Put(chatID int64, kind Kind, keys []string) error
	Delete(chatID int64, kind Kind) error
	List(kind Kind) ([]int64, error)
}
