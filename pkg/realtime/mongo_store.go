package realtime

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{db: db}
}

// splitPath maps "collection/docKey/nested/field" onto a collection, a
// document key and a dotted field path ("" when the path addresses the whole
// document).
func splitPath(path string) (collection, docKey, field string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	collection = parts[0]
	if len(parts) > 1 {
		docKey = parts[1]
	}
	if len(parts) > 2 {
		field = strings.Join(parts[2:], ".")
	}
	return collection, docKey, field
}

func (s *mongoStore) Set(ctx context.Context, path string, value any) error {
	collection, docKey, field := splitPath(path)
	filter := bson.M{"_id": docKey}
	opts := options.Update().SetUpsert(true)

	if field == "" {
		update := bson.M{"$set": bson.M{"value": value}}
		_, err := s.db.Collection(collection).UpdateOne(ctx, filter, update, opts)
		return err
	}

	update := bson.M{"$set": bson.M{"value." + field: value}}
	_, err := s.db.Collection(collection).UpdateOne(ctx, filter, update, opts)
	return err
}

func (s *mongoStore) Update(ctx context.Context, updates map[string]any) error {
	for path, value := range updates {
		if value == nil {
			if err := s.Delete(ctx, path); err != nil {
				return err
			}
			continue
		}
		if err := s.Set(ctx, path, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, path string) error {
	collection, docKey, field := splitPath(path)
	filter := bson.M{"_id": docKey}

	if field == "" {
		_, err := s.db.Collection(collection).DeleteOne(ctx, filter)
		return err
	}

	update := bson.M{"$unset": bson.M{"value." + field: ""}}
	_, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
	return err
}

func (s *mongoStore) Get(ctx context.Context, path string, out any) error {
	collection, docKey, field := splitPath(path)
	filter := bson.M{"_id": docKey}

	projection := "value"
	if field != "" {
		projection = "value." + field
	}

	var doc bson.M
	err := s.db.Collection(collection).
		FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{projection: 1})).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrKeyNotFound
		}
		return err
	}

	value, ok := doc["value"]
	if !ok {
		return ErrKeyNotFound
	}
	if field != "" {
		for _, part := range strings.Split(field, ".") {
			m, ok := value.(bson.M)
			if !ok {
				return ErrKeyNotFound
			}
			value, ok = m[part]
			if !ok {
				return ErrKeyNotFound
			}
		}
	}

	raw, err := bson.Marshal(bson.M{"value": value})
	if err != nil {
		return err
	}
	var wrapper struct {
		Value bson.RawValue `bson:"value"`
	}
	if err := bson.Unmarshal(raw, &wrapper); err != nil {
		return err
	}
	return wrapper.Value.Unmarshal(out)
}

func (s *mongoStore) Increment(ctx context.Context, path string, delta int64) error {
	collection, docKey, field := splitPath(path)
	filter := bson.M{"_id": docKey}

	target := "value"
	if field != "" {
		target = "value." + field
	}

	update := bson.M{"$inc": bson.M{target: delta}}
	_, err := s.db.Collection(collection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
