package student

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resultportal/backend/internal/shared"
)

const defaultQueryTimeout = 10 * time.Second

// MongoStore is the MongoDB-backed student Repository
type MongoStore struct {
	col     *mongo.Collection
	timeout time.Duration
}

// NewMongoStore creates a MongoStore over the students collection. A
// non-positive queryTimeout falls back to the default.
func NewMongoStore(db *mongo.Database, queryTimeout time.Duration) *MongoStore {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &MongoStore{col: db.Collection(shared.ColStudents), timeout: queryTimeout}
}

// Insert stores a new student, relying on the unique roll_no index for
// duplicate detection
func (st *MongoStore) Insert(ctx context.Context, s *shared.Student) error {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	s.CreatedAt = time.Now()
	if _, err := st.col.InsertOne(queryCtx, s); err != nil {
		if shared.IsDuplicateKeyError(err) {
			return shared.Conflictf("student with roll number %s already exists", s.RollNo)
		}
		return fmt.Errorf("failed to insert student: %w", err)
	}
	return nil
}

// InsertMany stores a batch with ordered=false so one duplicate roll does not
// abort the rest. Duplicate rolls are reported, any other write error is
// returned.
func (st *MongoStore) InsertMany(ctx context.Context, students []shared.Student) (int, []string, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	now := time.Now()
	docs := make([]interface{}, 0, len(students))
	for i := range students {
		students[i].CreatedAt = now
		docs = append(docs, students[i])
	}

	res, err := st.col.InsertMany(queryCtx, docs, options.InsertMany().SetOrdered(false))

	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}

	if err != nil {
		bulkErr, ok := err.(mongo.BulkWriteException)
		if !ok {
			return inserted, nil, fmt.Errorf("failed to insert students: %w", err)
		}
		var conflicts []string
		for _, we := range bulkErr.WriteErrors {
			if !mongo.IsDuplicateKeyError(we.WriteError) {
				return inserted, nil, fmt.Errorf("failed to insert students: %w", err)
			}
			if we.Index >= 0 && we.Index < len(students) {
				conflicts = append(conflicts, students[we.Index].RollNo)
			}
		}
		return inserted, conflicts, nil
	}

	return inserted, nil, nil
}

// FindByID returns the student, or shared.ErrNotFound
func (st *MongoStore) FindByID(ctx context.Context, id string) (*shared.Student, error) {
	return st.findOne(ctx, bson.M{"_id": id}, id)
}

// FindByRoll returns the student with the given roll number, or
// shared.ErrNotFound
func (st *MongoStore) FindByRoll(ctx context.Context, rollNo string) (*shared.Student, error) {
	return st.findOne(ctx, bson.M{"roll_no": rollNo}, rollNo)
}

func (st *MongoStore) findOne(ctx context.Context, filter bson.M, ref string) (*shared.Student, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	var s shared.Student
	if err := st.col.FindOne(queryCtx, filter).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, shared.NotFoundf("student %s", ref)
		}
		return nil, fmt.Errorf("failed to find student: %w", err)
	}
	return &s, nil
}

// FindAll returns every student sorted by roll number
func (st *MongoStore) FindAll(ctx context.Context) ([]shared.Student, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	cursor, err := st.col.Find(queryCtx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "roll_no", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query students: %w", err)
	}
	defer cursor.Close(queryCtx)

	var students []shared.Student
	if err := cursor.All(queryCtx, &students); err != nil {
		return nil, fmt.Errorf("failed to decode students: %w", err)
	}
	return students, nil
}

// Update rewrites the student's mutable fields by ID
func (st *MongoStore) Update(ctx context.Context, s *shared.Student) error {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":       s.Name,
			"email":      s.Email,
			"department": s.Department,
			"batch":      s.Batch,
			"updated_at": time.Now(),
		},
	}

	res, err := st.col.UpdateOne(queryCtx, bson.M{"_id": s.ID}, update)
	if err != nil {
		if shared.IsDuplicateKeyError(err) {
			return shared.Conflictf("student with roll number %s already exists", s.RollNo)
		}
		return fmt.Errorf("failed to update student: %w", err)
	}
	if res.MatchedCount == 0 {
		return shared.NotFoundf("student %s", s.ID)
	}
	return nil
}

// Delete removes one student by ID
func (st *MongoStore) Delete(ctx context.Context, id string) error {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	res, err := st.col.DeleteOne(queryCtx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NotFoundf("student %s", id)
	}
	return nil
}
