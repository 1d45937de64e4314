package database

import (
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// InMemoryDatabase keeps BSON-encoded values so decoding behaves the same as
// MongoDatabase and callers never share memory with stored objects.
type InMemoryDatabase struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func NewInMemoryDatabase() *InMemoryDatabase {
	return &InMemoryDatabase{
		buckets: make(map[string]map[string][]byte),
	}
}

func encode(key string, object any) ([]byte, error) {
	return bson.Marshal(document{Key: key, Value: object})
}

// bucket returns the objects of name, creating the bucket when create is set.
// Callers hold db.mu.
func (db *InMemoryDatabase) bucket(name string, create bool) map[string][]byte {
	objects, ok := db.buckets[name]
	if !ok && create {
		objects = make(map[string][]byte)
		db.buckets[name] = objects
	}
	return objects
}

func (db *InMemoryDatabase) SaveObject(bucket string, key string, object any) error {
	data, err := encode(key, object)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.bucket(bucket, true)[key] = data
	return nil
}

func (db *InMemoryDatabase) InsertObject(bucket string, key string, object any) error {
	data, err := encode(key, object)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	objects := db.bucket(bucket, true)
	if _, ok := objects[key]; ok {
		return ErrDuplicateKey
	}
	objects[key] = data
	return nil
}

func (db *InMemoryDatabase) GetObject(bucket string, key string, object any) error {
	db.mu.RLock()
	data, ok := db.bucket(bucket, false)[key]
	db.mu.RUnlock()
	if !ok {
		return ErrKeyNotFound
	}

	value, err := bson.Raw(data).LookupErr("value")
	if err != nil {
		return err
	}
	return value.Unmarshal(object)
}

func (db *InMemoryDatabase) DeleteObject(bucket string, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	objects := db.bucket(bucket, false)
	if _, ok := objects[key]; !ok {
		return ErrKeyNotFound
	}
	delete(objects, key)
	return nil
}

func (db *InMemoryDatabase) Keys(bucket string, prefix string) ([]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	keys := []string{}
	for key := range db.bucket(bucket, false) {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (db *InMemoryDatabase) Close() error {
	return nil
}
