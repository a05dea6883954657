package curriculum

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resultportal/backend/internal/shared"
)

const defaultQueryTimeout = 10 * time.Second

// MongoStore is the MongoDB-backed curriculum Repository
type MongoStore struct {
	col     *mongo.Collection
	timeout time.Duration
}

// NewMongoStore creates a MongoStore over the curricula collection. A
// non-positive queryTimeout falls back to the default.
func NewMongoStore(db *mongo.Database, queryTimeout time.Duration) *MongoStore {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &MongoStore{col: db.Collection(shared.ColCurricula), timeout: queryTimeout}
}

// Upsert replaces the subject list for (department, semester). The unique
// index on the pair guarantees a second submission lands on the same document.
func (st *MongoStore) Upsert(ctx context.Context, m *shared.CurriculumMap) (*shared.CurriculumMap, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	now := time.Now()
	filter := bson.M{"department": m.Department, "semester": m.Semester}
	update := bson.M{
		"$set": bson.M{
			"department": m.Department,
			"semester":   m.Semester,
			"subjects":   m.Subjects,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var updated shared.CurriculumMap
	if err := st.col.FindOneAndUpdate(queryCtx, filter, update, opts).Decode(&updated); err != nil {
		if shared.IsDuplicateKeyError(err) {
			return nil, shared.Conflictf("curriculum map for %s semester %d", m.Department, m.Semester)
		}
		return nil, fmt.Errorf("failed to upsert curriculum map: %w", err)
	}

	return &updated, nil
}

// Find returns the map for (department, semester), or shared.ErrNotFound
func (st *MongoStore) Find(ctx context.Context, department string, semester int32) (*shared.CurriculumMap, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	var m shared.CurriculumMap
	err := st.col.FindOne(queryCtx, bson.M{"department": department, "semester": semester}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, shared.NotFoundf("curriculum map for %s semester %d", department, semester)
		}
		return nil, fmt.Errorf("failed to find curriculum map: %w", err)
	}

	return &m, nil
}

// FindAll returns every map sorted by department then semester
func (st *MongoStore) FindAll(ctx context.Context) ([]shared.CurriculumMap, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "department", Value: 1}, {Key: "semester", Value: 1}})

	cursor, err := st.col.Find(queryCtx, bson.M{}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list curriculum maps: %w", err)
	}
	defer cursor.Close(queryCtx)

	var maps []shared.CurriculumMap
	if err := cursor.All(queryCtx, &maps); err != nil {
		return nil, fmt.Errorf("failed to decode curriculum maps: %w", err)
	}

	return maps, nil
}
