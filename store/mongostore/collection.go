// Package mongostore implements the store interfaces on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"munhub/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection is the typed CRUD shared by every entity store.
type collection[T any] struct {
	c    *mongo.Collection
	meta func(*T) (*primitive.ObjectID, *time.Time, *time.Time)
}

func newCollection[T any](db *mongo.Database, name string, meta func(*T) (*primitive.ObjectID, *time.Time, *time.Time)) collection[T] {
	return collection[T]{c: db.Collection(name), meta: meta}
}

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", store.ErrDuplicate, err.Error())
	}
	return err
}

func now() time.Time {
	return time.Now().UTC()
}

func (c collection[T]) get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return c.findOne(ctx, bson.M{"_id": id})
}

func (c collection[T]) findOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var v T
	if err := c.c.FindOne(ctx, filter, opts...).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (c collection[T]) find(ctx context.Context, filter any, sort bson.D) ([]T, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cur, err := c.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c collection[T]) count(ctx context.Context, filter any) (int, error) {
	n, err := c.c.CountDocuments(ctx, filter)
	return int(n), err
}

func (c collection[T]) insert(ctx context.Context, v *T) error {
	id, created, updated := c.meta(v)
	store.Stamp(id, created, updated, now())
	_, err := c.c.InsertOne(ctx, v)
	return translate(err)
}

func (c collection[T]) replace(ctx context.Context, v *T) error {
	id, created, updated := c.meta(v)
	store.Stamp(id, created, updated, now())
	res, err := c.c.ReplaceOne(ctx, bson.M{"_id": *id}, v)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
