package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/yndnr/pixmesh-go/internal/storage"
)

// DefaultKVKey is the key under which the snapshot document is stored.
const DefaultKVKey = "board"

// KVStore keeps the snapshot as a single value in an embedded KV engine.
// Each Save is one transactional Set, which replaces the value atomically.
type KVStore struct {
	kv  storage.KVEngine
	key []byte
}

// NewKVStore creates a store on top of kv. The store owns kv and closes it
// on Close.
func NewKVStore(kv storage.KVEngine, key string) *KVStore {
	if key == "" {
		key = DefaultKVKey
	}
	return &KVStore{
		kv:  kv,
		key: []byte(key),
	}
}

// Load reads and decodes the stored document.
func (s *KVStore) Load(ctx context.Context) (*Document, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("snapshot: kv get: %w", err)
	}
	return Decode(data)
}

// Save encodes and stores the document.
func (s *KVStore) Save(ctx context.Context, doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("snapshot: kv set: %w", err)
	}
	return nil
}

// Close closes the underlying engine.
func (s *KVStore) Close() error {
	return s.kv.Close()
}
