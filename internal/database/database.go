package database

import (
	"github.com/pkg/errors"
)

var (
	ErrKeyNotFound  = errors.New("key not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Database stores objects by key inside named buckets. Implementations must be
// safe for concurrent use since every running bot shares one instance.
type Database interface {
	// SaveObject inserts or replaces the object stored under key.
	SaveObject(bucket string, key string, object any) error
	// InsertObject stores the object only if key is unused, otherwise it
	// returns ErrDuplicateKey.
	InsertObject(bucket string, key string, object any) error
	GetObject(bucket string, key string, object any) error
	DeleteObject(bucket string, key string) error
	// Keys lists the keys of the bucket starting with prefix in ascending
	// order. An empty prefix lists every key.
	Keys(bucket string, prefix string) ([]string, error)
	Close() error
}
