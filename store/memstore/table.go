// Package memstore keeps every entity in process memory. Documents are stored
// bson-encoded, so callers never share state with the store and the bson tags
// get the same exercise they would against MongoDB.
package memstore

import (
	"sync"
	"time"

	"munhub/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// uniqueKey returns the key a document claims, if any. Two documents of one
// table may not claim the same key.
type uniqueKey[T any] func(*T) (string, bool)

type table[T any] struct {
	mu     sync.RWMutex
	rows   map[primitive.ObjectID][]byte
	meta   func(*T) (*primitive.ObjectID, *time.Time, *time.Time)
	unique []uniqueKey[T]
	now    func() time.Time
}

func newTable[T any](meta func(*T) (*primitive.ObjectID, *time.Time, *time.Time), unique ...uniqueKey[T]) *table[T] {
	return &table[T]{
		rows:   make(map[primitive.ObjectID][]byte),
		meta:   meta,
		unique: unique,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (t *table[T]) insert(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, created, updated := t.meta(v)
	if _, exists := t.rows[*id]; exists && !id.IsZero() {
		return store.ErrDuplicate
	}
	if err := t.checkUnique(v, primitive.NilObjectID); err != nil {
		return err
	}
	store.Stamp(id, created, updated, t.now())
	return t.put(*id, v)
}

func (t *table[T]) replace(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, created, updated := t.meta(v)
	if _, exists := t.rows[*id]; !exists {
		return store.ErrNotFound
	}
	if err := t.checkUnique(v, *id); err != nil {
		return err
	}
	store.Stamp(id, created, updated, t.now())
	return t.put(*id, v)
}

func (t *table[T]) get(id primitive.ObjectID) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	raw, ok := t.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return decode[T](raw)
}

func (t *table[T]) delete(id primitive.ObjectID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return store.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// find decodes every row matching keep.
func (t *table[T]) find(keep func(*T) bool) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findLocked(keep)
}

func (t *table[T]) findOne(keep func(*T) bool) (*T, error) {
	rows, err := t.find(keep)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[0], nil
}

func (t *table[T]) count(keep func(*T) bool) (int, error) {
	rows, err := t.find(keep)
	return len(rows), err
}

// updateAll applies mutate to every matching row in one critical section.
func (t *table[T]) updateAll(keep func(*T) bool, mutate func(*T)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows, err := t.findLocked(keep)
	if err != nil {
		return err
	}
	now := t.now()
	for i := range rows {
		mutate(&rows[i])
		id, created, updated := t.meta(&rows[i])
		store.Stamp(id, created, updated, now)
		if err := t.put(*id, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *table[T]) findLocked(keep func(*T) bool) ([]T, error) {
	out := make([]T, 0)
	for _, raw := range t.rows {
		v, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(v) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (t *table[T]) checkUnique(v *T, self primitive.ObjectID) error {
	if len(t.unique) == 0 {
		return nil
	}
	for id, raw := range t.rows {
		if id == self {
			continue
		}
		other, err := decode[T](raw)
		if err != nil {
			return err
		}
		for _, key := range t.unique {
			want, ok := key(v)
			if !ok {
				continue
			}
			if got, ok := key(other); ok && got == want {
				return store.ErrDuplicate
			}
		}
	}
	return nil
}

func (t *table[T]) put(id primitive.ObjectID, v *T) error {
	raw, err := bson.Marshal(v)
	if err != nil {
		return err
	}
	t.rows[id] = raw
	return nil
}

func decode[T any](raw []byte) (*T, error) {
	v := new(T)
	if err := bson.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	return v, nil
}
