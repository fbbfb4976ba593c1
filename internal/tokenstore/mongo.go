package tokenstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	autherrors "github.com/gogotex/gogotex/backend/auth-widget/internal/errors"
)

// MongoStore keeps one document per key, {_id: key, accessToken, refreshToken, expiry}.
// Set replaces the whole document so a refresh never merges with the old record.
type MongoStore struct {
	col *mongo.Collection
	key string
}

func NewMongoStore(col *mongo.Collection, key string) *MongoStore {
	if key == "" {
		key = DefaultKey
	}
	return &MongoStore{col: col, key: key}
}

type mongoRecord struct {
	ID     string `bson:"_id"`
	Record `bson:",inline"`
}

func (s *MongoStore) Get(ctx context.Context) (*Record, error) {
	raw, err := s.col.FindOne(ctx, bson.M{"_id": s.key}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	var doc mongoRecord
	if err := bson.Unmarshal(raw, &doc); err != nil {
		log.Warnf("mongo: ignoring unreadable record under %q: %v", s.key, err)
		return nil, nil
	}
	if !doc.Record.Complete() {
		log.Warnf("mongo: ignoring partial record under %q", s.key)
		return nil, nil
	}
	r := doc.Record
	return &r, nil
}

func (s *MongoStore) Set(ctx context.Context, r Record) error {
	if !r.Complete() {
		return autherrors.ErrIncompleteRecord
	}
	doc := mongoRecord{ID: s.key, Record: r}
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Clear(ctx context.Context) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": s.key})
	return err
}
