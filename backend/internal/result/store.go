package result

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

// MongoStore is the MongoDB-backed result Repository
type MongoStore struct {
	col     *mongo.Collection
	timeout time.Duration
}

// NewMongoStore creates a MongoStore over the results collection. A
// non-positive queryTimeout falls back to the default.
func NewMongoStore(db *mongo.Database, queryTimeout time.Duration) *MongoStore {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &MongoStore{col: db.Collection(shared.ColResults), timeout: queryTimeout}
}

// FindByID returns the record, or shared.ErrNotFound
func (st *MongoStore) FindByID(ctx context.Context, id string) (*shared.ResultRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	var rec shared.ResultRecord
	if err := st.col.FindOne(queryCtx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, shared.NotFoundf("result %s", id)
		}
		return nil, fmt.Errorf("failed to find result: %w", err)
	}

	rec.Subjects = shared.CanonicalizeSubjects(rec.Subjects)
	return &rec, nil
}

// FindByStudent returns every record for a student, newest semester first
func (st *MongoStore) FindByStudent(ctx context.Context, studentID string) ([]shared.ResultRecord, error) {
	return st.find(ctx, bson.M{"student_id": studentID},
		options.Find().SetSort(bson.D{{Key: "semester", Value: -1}}))
}

// FindByDepartmentSemester returns every record in the targeted cohort
func (st *MongoStore) FindByDepartmentSemester(ctx context.Context, department string, semester int32) ([]shared.ResultRecord, error) {
	return st.find(ctx, bson.M{"department": department, "semester": semester}, options.Find())
}

// FindAll returns every record
func (st *MongoStore) FindAll(ctx context.Context) ([]shared.ResultRecord, error) {
	return st.find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "department", Value: 1}, {Key: "semester", Value: 1}}))
}

func (st *MongoStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]shared.ResultRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	cursor, err := st.col.Find(queryCtx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer cursor.Close(queryCtx)

	var records []shared.ResultRecord
	if err := cursor.All(queryCtx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}

	for i := range records {
		records[i].Subjects = shared.CanonicalizeSubjects(records[i].Subjects)
	}
	return records, nil
}

// Upsert writes the record keyed on (student_id, semester). The published
// flag and created_at live only in $setOnInsert, so a re-submission replaces
// subjects and summary without resetting visibility.
func (st *MongoStore) Upsert(ctx context.Context, rec *shared.ResultRecord) (*shared.ResultRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	now := time.Now()
	filter := bson.M{"student_id": rec.StudentID, "semester": rec.Semester}
	update := bson.M{
		"$set": bson.M{
			"student_id":    rec.StudentID,
			"semester":      rec.Semester,
			"department":    rec.Department,
			"batch":         rec.Batch,
			"subjects":      rec.Subjects,
			"total_points":  rec.TotalPoints,
			"gpa":           rec.GPA,
			"overall_grade": rec.OverallGrade,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.NewString(),
			"published":  false,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored shared.ResultRecord
	if err := st.col.FindOneAndUpdate(queryCtx, filter, update, opts).Decode(&stored); err != nil {
		if shared.IsDuplicateKeyError(err) {
			return nil, shared.Conflictf("result for student %s semester %d", rec.StudentID, rec.Semester)
		}
		return nil, fmt.Errorf("failed to upsert result: %w", err)
	}

	return &stored, nil
}

// Replace rewrites an existing record's semester, subjects, and summary by
// ID. Visibility, cohort fields, and creation time are deliberately not in
// the update document.
func (st *MongoStore) Replace(ctx context.Context, rec *shared.ResultRecord) error {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"semester":      rec.Semester,
			"subjects":      rec.Subjects,
			"total_points":  rec.TotalPoints,
			"gpa":           rec.GPA,
			"overall_grade": rec.OverallGrade,
			"updated_at":    time.Now(),
		},
	}

	res, err := st.col.UpdateOne(queryCtx, bson.M{"_id": rec.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update result: %w", err)
	}
	if res.MatchedCount == 0 {
		return shared.NotFoundf("result %s", rec.ID)
	}
	return nil
}

// SetPublished flips the visibility flag on one record
func (st *MongoStore) SetPublished(ctx context.Context, id string, published bool) error {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	res, err := st.col.UpdateOne(queryCtx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"published": published, "updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to set published: %w", err)
	}
	if res.MatchedCount == 0 {
		return shared.NotFoundf("result %s", id)
	}
	return nil
}

// PublishWhere sets published=true on every matching draft record. The
// published filter covers both false and missing fields so legacy documents
// are picked up too.
func (st *MongoStore) PublishWhere(ctx context.Context, department, batch string, semester int32) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	filter := bson.M{
		"batch":     batch,
		"semester":  semester,
		"published": bson.M{"$ne": true},
	}
	if department != "" {
		filter["department"] = department
	}

	res, err := st.col.UpdateMany(queryCtx, filter, bson.M{
		"$set": bson.M{"published": true, "updated_at": time.Now()},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to batch publish: %w", err)
	}

	return res.ModifiedCount, nil
}

// Delete removes one record by ID
func (st *MongoStore) Delete(ctx context.Context, id string) error {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	res, err := st.col.DeleteOne(queryCtx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	if res.DeletedCount == 0 {
		return shared.NotFoundf("result %s", id)
	}
	return nil
}

// DeleteByStudent removes every record for a student
func (st *MongoStore) DeleteByStudent(ctx context.Context, studentID string) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, st.timeout)
	defer cancel()

	res, err := st.col.DeleteMany(queryCtx, bson.M{"student_id": studentID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete results for student: %w", err)
	}
	return res.DeletedCount, nil
}
