// internal/app/store/archives/store.go
package archives

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/normalize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateArchive is returned when a snapshot already exists for the
// same group, academic year, and semester.
var ErrDuplicateArchive = errors.New("archive already exists for this group and term")

// ErrEmptyArchive is returned when a snapshot would contain no members.
var ErrEmptyArchive = errors.New("archive has no members")

// Store manages archived group snapshots.
type Store struct {
	c *mongo.Collection
}

// New creates a new archives Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("archived_groups")}
}

// EnsureIndexes creates necessary indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// One snapshot per group and term
		{
			Keys: bson.D{
				{Key: "group_name", Value: 1},
				{Key: "academic_year", Value: 1},
				{Key: "semester", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new archived group snapshot.
func (s *Store) Create(ctx context.Context, g models.ArchivedGroup) (models.ArchivedGroup, error) {
	if len(g.Members) == 0 {
		return models.ArchivedGroup{}, ErrEmptyArchive
	}

	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.GenerationDate == "" {
		g.GenerationDate = g.CreatedAt.Format("January 2, 2006")
	}

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ArchivedGroup{}, ErrDuplicateArchive
		}
		return models.ArchivedGroup{}, err
	}
	return g, nil
}

// ListFilter narrows the archive listing. GroupName matches as a
// case-insensitive prefix.
type ListFilter struct {
	GroupName    string
	AcademicYear string
	Semester     string
	Limit        int64
	Offset       int64
}

func (f ListFilter) query() bson.M {
	query := bson.M{}
	if v := normalize.QueryParam(f.GroupName); v != "" {
		query["group_name"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v), Options: "i"}
	}
	if v := normalize.QueryParam(f.AcademicYear); v != "" {
		query["academic_year"] = v
	}
	if v := normalize.QueryParam(f.Semester); v != "" {
		query["semester"] = v
	}
	return query
}

// List returns archived groups matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.ArchivedGroup, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []models.ArchivedGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Count returns the number of archives matching the filter.
func (s *Store) Count(ctx context.Context, filter ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// GetByID returns a single archived group with its full member list.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ArchivedGroup, error) {
	var g models.ArchivedGroup
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	return g, err
}

// Delete removes an archived group snapshot.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
