package profilestore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/app/system/normalize"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/approval"
	"github.com/Ekskie/CCS-SBO-MANAGEMENT/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

var (
	// ErrDuplicateStudentID is returned when a profile with the same student ID already exists.
	ErrDuplicateStudentID = errors.New("a member with this student ID already exists")
	// ErrDuplicateEmail is returned when a profile with the same email already exists.
	ErrDuplicateEmail = errors.New("a member with this email already exists")
	// ErrVersionConflict means another reviewer updated the profile first.
	ErrVersionConflict = errors.New("the profile was changed by someone else; reload and try again")

	// ErrBadRole is returned for a role outside the known set.
	ErrBadRole = errors.New(`role must be "student"|"president"|"admin"`)
)

// EnsureIndexes creates the unique and query indexes for profiles.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// Cohort scoping for president review lists
		{
			Keys: bson.D{
				{Key: "program", Value: 1},
				{Key: "year_level", Value: 1},
				{Key: "section", Value: 1},
				{Key: "major", Value: 1},
			},
		},
		// Default sort
		{
			Keys: bson.D{{Key: "last_name_ci", Value: 1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a profile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByStudentID loads a profile by its student ID.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByStudentID(ctx context.Context, studentID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"student_id": normalize.StudentID(studentID)}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail looks up a profile by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// StudentIDExists reports whether any profile carries the student ID.
func (s *Store) StudentIDExists(ctx context.Context, studentID string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"student_id": normalize.StudentID(studentID)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// EmailExists reports whether any profile carries the email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// Create inserts a new profile after normalizing & validating fields.
// Both artifact statuses start pending unless the caller set them
// (admin-created profiles start approved).
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	p.ID = primitive.NewObjectID()
	p.StudentID = normalize.StudentID(p.StudentID)
	p.Email = normalize.Email(p.Email)
	p.FirstName = normalize.Name(p.FirstName)
	p.MiddleName = normalize.Name(p.MiddleName)
	p.LastName = normalize.Name(p.LastName)
	p.SuffixName = normalize.Name(p.SuffixName)
	p.LastNameCI = text.Fold(p.LastName)
	p.Program = normalize.Program(p.Program)
	p.Section = normalize.Section(p.Section)
	p.YearLevel = normalize.YearLevel(p.YearLevel)
	p.Semester = normalize.Semester(p.Semester)
	if p.Role == "" {
		p.Role = models.RoleStudent
	}
	if p.PictureStatus == "" {
		p.PictureStatus = models.StatusPending
	}
	if p.SignatureStatus == "" {
		p.SignatureStatus = models.StatusPending
	}

	if !models.IsValidRole(p.Role) {
		return models.Profile{}, ErrBadRole
	}
	if err := models.ValidateMajor(p.Program, p.YearLevel, p.Major); err != nil {
		return models.Profile{}, err
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Version = 0

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			// The unique indexes cover student_id and email; report the
			// student ID first, matching the registration checks.
			if exists, xerr := s.StudentIDExists(ctx, p.StudentID); xerr == nil && exists {
				return models.Profile{}, ErrDuplicateStudentID
			}
			return models.Profile{}, ErrDuplicateEmail
		}
		return models.Profile{}, err
	}
	return p, nil
}

// ProfileUpdate holds the editable identity/cohort fields.
type ProfileUpdate struct {
	FirstName  string
	MiddleName string
	LastName   string
	SuffixName string
	Email      string
	Program    string
	YearLevel  string
	Section    string
	Semester   string
	Major      *string
}

// Update writes the editable fields of a profile. The major rule is
// validated against the updated program and year level.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	program := normalize.Program(upd.Program)
	yearLevel := normalize.YearLevel(upd.YearLevel)
	if err := models.ValidateMajor(program, yearLevel, upd.Major); err != nil {
		return err
	}

	lastName := normalize.Name(upd.LastName)
	set := bson.M{
		"first_name":   normalize.Name(upd.FirstName),
		"middle_name":  normalize.Name(upd.MiddleName),
		"last_name":    lastName,
		"suffix_name":  normalize.Name(upd.SuffixName),
		"last_name_ci": text.Fold(lastName),
		"email":        normalize.Email(upd.Email),
		"program":      program,
		"year_level":   yearLevel,
		"section":      normalize.Section(upd.Section),
		"semester":     normalize.Semester(upd.Semester),
		"updated_at":   time.Now(),
	}

	update := bson.M{"$set": set}
	if upd.Major != nil && *upd.Major != "" {
		set["major"] = *upd.Major
	} else {
		update["$unset"] = bson.M{"major": ""}
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetRole changes a member's role. Officers promote or demote through
// this; the editable-field update never touches the role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	if !models.IsValidRole(role) {
		return ErrBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ApplyReview persists a reviewer transition with a compare-and-swap on
// the version the reviewer read. A concurrent write surfaces as
// ErrVersionConflict instead of silently losing the earlier review.
func (s *Store) ApplyReview(ctx context.Context, id primitive.ObjectID, version int64, ch approval.Change) error {
	set := bson.M{
		statusField(ch.Kind): ch.Status,
		"updated_at":         time.Now(),
	}
	unset := bson.M{}
	if ch.Reason != nil {
		set[reasonField(ch.Kind)] = *ch.Reason
	} else {
		unset[reasonField(ch.Kind)] = ""
	}
	if ch.SetLock {
		set["is_locked"] = ch.Locked
	}

	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "version": version}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the profile is gone or someone got there first.
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
			return err
		}
		return ErrVersionConflict
	}
	return nil
}

// SetArtifact records a freshly uploaded artifact: URL, status, and a
// cleared disapproval reason. Member re-uploads pass status pending;
// admin uploads pass status approved. The lock is never touched here.
func (s *Store) SetArtifact(ctx context.Context, id primitive.ObjectID, kind approval.Kind, url, status string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				urlField(kind):     url,
				statusField(kind):  status,
				"updated_at":       time.Now(),
			},
			"$unset": bson.M{reasonField(kind): ""},
			"$inc":   bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a profile. Blob cleanup is the caller's job.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// sortColumns whitelists the sortable columns for listing. Anything
// else falls back to last name.
var sortColumns = map[string]string{
	"last_name":        "last_name_ci",
	"student_id":       "student_id",
	"program":          "program",
	"role":             "role",
	"picture_status":   "picture_status",
	"signature_status": "signature_status",
}

// ListFilter selects and orders profiles for listing.
type ListFilter struct {
	Program   string
	YearLevel string
	Section   string
	Semester  string
	Major     *string // filter by exact major
	MajorNone bool    // filter for profiles without a major
	Role      string
	Search    string // matches names, student ID, or email
	ExcludeID primitive.ObjectID

	SortBy   string
	SortDesc bool
	Limit    int64
	Offset   int64
}

func (f ListFilter) query() bson.M {
	q := bson.M{}
	if f.Program != "" {
		q["program"] = normalize.Program(f.Program)
	}
	if f.YearLevel != "" {
		q["year_level"] = f.YearLevel
	}
	if f.Section != "" {
		q["section"] = normalize.Section(f.Section)
	}
	if f.Semester != "" {
		q["semester"] = f.Semester
	}
	if f.MajorNone {
		q["major"] = bson.M{"$exists": false}
	} else if f.Major != nil {
		q["major"] = *f.Major
	}
	if f.Role != "" {
		q["role"] = normalize.Role(f.Role)
	}
	if f.ExcludeID != primitive.NilObjectID {
		q["_id"] = bson.M{"$ne": f.ExcludeID}
	}
	if search := normalize.QueryParam(f.Search); search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		q["$or"] = []bson.M{
			{"first_name": rx},
			{"last_name": rx},
			{"student_id": rx},
			{"email": rx},
		}
	}
	return q
}

// List returns profiles matching the filter, sorted by the whitelisted
// column with last name as the tiebreaker.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Profile, error) {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "last_name_ci"
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}

	sort := bson.D{{Key: column, Value: dir}}
	if column != "last_name_ci" {
		sort = append(sort, bson.E{Key: "last_name_ci", Value: 1})
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(sort).
		SetLimit(limit).
		SetSkip(f.Offset)

	cursor, err := s.c.Find(ctx, f.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Profile
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of profiles matching the filter.
func (s *Store) Count(ctx context.Context, f ListFilter) (int64, error) {
	return s.c.CountDocuments(ctx, f.query())
}

// ListCohort returns every profile in an exact cohort, ordered by
// folded last name then first name, the order rosters print in. An
// empty semester matches every semester.
func (s *Store) ListCohort(ctx context.Context, program, yearLevel, section, semester string, major *string) ([]models.Profile, error) {
	q := bson.M{
		"program":    normalize.Program(program),
		"year_level": yearLevel,
		"section":    normalize.Section(section),
	}
	if major != nil && *major != "" {
		q["major"] = *major
	} else {
		q["major"] = bson.M{"$exists": false}
	}
	if s := normalize.Semester(semester); s != "" {
		q["semester"] = s
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "last_name_ci", Value: 1},
		{Key: "first_name", Value: 1},
	})

	cursor, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Profile
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CohortGroup is one distinct cohort present in the collection, with
// its member count.
type CohortGroup struct {
	Program   string  `bson:"program"`
	YearLevel string  `bson:"year_level"`
	Section   string  `bson:"section"`
	Major     *string `bson:"major"`
	Semester  string  `bson:"semester"`
	Members   int64   `bson:"members"`
}

// ListCohortGroups enumerates the distinct cohorts across all profiles.
func (s *Store) ListCohortGroups(ctx context.Context) ([]CohortGroup, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"program":    "$program",
				"year_level": "$year_level",
				"section":    "$section",
				"major":      "$major",
				"semester":   "$semester",
			},
			"members": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.program", Value: 1},
			{Key: "_id.year_level", Value: 1},
			{Key: "_id.section", Value: 1},
			{Key: "_id.major", Value: 1},
		}}},
	}

	cursor, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key     CohortGroup `bson:"_id"`
		Members int64       `bson:"members"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	groups := make([]CohortGroup, 0, len(rows))
	for _, row := range rows {
		g := row.Key
		g.Members = row.Members
		groups = append(groups, g)
	}
	return groups, nil
}

func statusField(kind approval.Kind) string {
	if kind == approval.KindPicture {
		return "picture_status"
	}
	return "signature_status"
}

func reasonField(kind approval.Kind) string {
	if kind == approval.KindPicture {
		return "picture_disapproval_reason"
	}
	return "signature_disapproval_reason"
}

func urlField(kind approval.Kind) string {
	if kind == approval.KindPicture {
		return "picture_url"
	}
	return "signature_url"
}
