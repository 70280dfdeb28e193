package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArchivedMember is a point-in-time snapshot of one member inside an
// archived group. It is denormalized on purpose: later edits or
// deletions of the live profile must not change the archive.
type ArchivedMember struct {
	StudentID    string  `bson:"student_id"`
	FullName     string  `bson:"full_name"` // "Last, First Middle"
	Course       string  `bson:"course"`    // e.g. "BSIT - 3rd Year A (Web Development)"
	Email        string  `bson:"email,omitempty"`
	PictureURL   *string `bson:"picture_url,omitempty"`
	SignatureURL *string `bson:"signature_url,omitempty"`
}

// ArchivedGroup is an immutable cohort snapshot in the
// "archived_groups" collection. Uniquely keyed by
// (group_name, academic_year, semester); never updated in place.
type ArchivedGroup struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	GroupName    string             `bson:"group_name"` // e.g. "BSIT - 3rd YearA - WEB DEVELOPMENT"
	AcademicYear string             `bson:"academic_year"`
	Semester     string             `bson:"semester"`

	Members []ArchivedMember `bson:"members"`

	// GenerationDate is the human-readable date printed on the roster,
	// e.g. "January 2, 2006". CreatedAt is the machine timestamp.
	GenerationDate string    `bson:"generation_date"`
	CreatedAt      time.Time `bson:"created_at"`
}
