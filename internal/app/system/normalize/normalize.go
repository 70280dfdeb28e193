// Package normalize canonicalizes user-supplied field values before
// validation or storage. Keeping this in one place means stores and
// handlers never disagree about casing or stray whitespace.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person name but preserves its casing.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// StudentID trims a student ID. IDs are compared verbatim otherwise.
func StudentID(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims an artifact review status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Program uppercases and trims a program code (BSIT, BSCS, ...).
func Program(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Section uppercases and trims a section letter.
func Section(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// YearLevel trims a year level label ("1st Year" ... "4th Year").
func YearLevel(s string) string {
	return strings.TrimSpace(s)
}

// Semester trims a semester label ("1st Semester", "2nd Semester").
func Semester(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a free-text query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// MajorFilter trims a major filter value; "all" (any case) means no
// filter and collapses to the empty string.
func MajorFilter(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
