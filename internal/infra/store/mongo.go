package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"app/internal/domain/model"
)

// MongoStore はコレクション内の全ドキュメントを1つの商品リストとして扱う。
// Saveは差分を計算せず、全削除→一括挿入で置き換える（ストア非依存の
// Repositoryロジックを保つための意図的なfull-replace）。
type MongoStore struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoStore(coll *mongo.Collection, timeout time.Duration) *MongoStore {
	return &MongoStore{
		coll:    coll,
		timeout: timeout,
	}
}

func (s *MongoStore) Load(ctx context.Context) ([]model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}

	products := []model.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return products, nil
}

func (s *MongoStore) Save(ctx context.Context, products []model.Product) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if len(products) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(products))
	for _, p := range products {
		docs = append(docs, p)
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}
