package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type indexSpec struct {
	collection string
	keys       bson.D
	unique     bool
}

// indexes lists every index the repositories rely on. The unique indexes on
// responses and collaboration states back upsert and create-once semantics.
var indexes = []indexSpec{
	{"responses", bson.D{{Key: "assessmentId", Value: 1}, {Key: "questionId", Value: 1}}, true},
	{"section_collaboration_states", bson.D{{Key: "assessmentId", Value: 1}, {Key: "sectionId", Value: 1}}, true},
	{"assessments", bson.D{{Key: "companyId", Value: 1}, {Key: "createdAt", Value: 1}}, false},
	{"sections", bson.D{{Key: "sectionNumber", Value: 1}}, false},
	{"questions", bson.D{{Key: "sectionId", Value: 1}, {Key: "position", Value: 1}}, false},
	{"applicability_conditions", bson.D{{Key: "questionId", Value: 1}}, false},
}

// EnsureIndexes creates the indexes the repositories depend on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range indexes {
		if err := createIndex(ctx, db.Collection(idx.collection), idx.keys, idx.unique); err != nil {
			return err
		}
	}
	return nil
}

func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D, unique bool) error {
	opts := options.Index().SetUnique(unique)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts}); err != nil {
		return fmt.Errorf("create index on %s: %w", coll.Name(), err)
	}
	return nil
}
