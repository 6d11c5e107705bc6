package store

import (
	"fmt"
	"strings"

	"github.com/devilmonastery/novel/internal/tokencache"
)

// Kind names a token store implementation
type Kind string

const (
	KindFile    Kind = "file"
	KindKeyring Kind = "keyring"
	KindMemory  Kind = "memory"
	KindNone    Kind = "none"
)

// Kinds lists the accepted store kinds, for flag help
var Kinds = []Kind{KindFile, KindKeyring, KindMemory, KindNone}

// ParseKind validates a store kind name. Empty means KindFile.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindFile, nil
	case KindFile, KindKeyring, KindMemory, KindNone:
		return k, nil
	default:
		return "", fmt.Errorf("unknown token store %q (valid: file, keyring, memory, none)", s)
	}
}

// Open returns the store for kind, scoped to contextName. KindNone returns a
// nil store, which makes the token cache purely in-memory.
func Open(kind Kind, contextName string) (tokencache.Store, error) {
	switch kind {
	case KindFile, "":
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		return NewFileStore(dir, contextName), nil
	case KindKeyring:
		return NewKeyringStore(contextName), nil
	case KindMemory:
		return NewMemoryStore(), nil
	case KindNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown token store %q", kind)
	}
}
