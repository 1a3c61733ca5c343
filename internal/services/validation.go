package services

import (
	"strconv"
	"strings"
	"time"

	"khosta-backend-go/internal/models"
)

const (
	MinimumAge  = 18
	MinSentence = 1
	MaxSentence = 100

	dateLayout = "2006-01-02"
)

// RecordDraft carries intake form values as submitted, before any parsing.
type RecordDraft struct {
	FullName      string
	BirthDate     string
	Gender        string
	ProcessNumber string
	Crime         string
	OtherCrime    string
	EntryDate     string
	Sentence      string
	Status        string
	Photo         string
}

// RecordInput is an accepted draft with every field parsed.
type RecordInput struct {
	FullName      string
	BirthDate     time.Time
	Gender        models.Gender
	ProcessNumber string
	Crime         models.Crime
	OtherCrime    string
	EntryDate     time.Time
	SentenceYears int
	Status        models.Status
	Photo         string
}

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Violations []Violation

func (v Violations) OK() bool {
	return len(v) == 0
}

func (v Violations) Messages() []string {
	out := make([]string, 0, len(v))
	for _, item := range v {
		out = append(out, item.Message)
	}
	return out
}

func (v *Violations) add(field, message string) {
	*v = append(*v, Violation{Field: field, Message: message})
}

// ValidateRecord checks an intake draft against the record rules at the
// given submission time. A non-empty Violations means the draft was rejected.
func ValidateRecord(d RecordDraft, now time.Time) (RecordInput, Violations) {
	var out RecordInput
	var violations Violations
	today := civilDate(now)

	birth, birthOK := parseDate(d.BirthDate)
	switch {
	case !birthOK:
		violations.add("birthDate", "Birth date is missing or invalid")
	case AgeAt(birth, today) < MinimumAge:
		violations.add("birthDate", "Prisoner must be at least 18 years old")
	}

	entry, entryOK := parseDate(d.EntryDate)
	switch {
	case !entryOK:
		violations.add("entryDate", "Entry date is missing or invalid")
	case entry.After(today):
		violations.add("entryDate", "Entry date cannot be in the future")
	}

	if birthOK && entryOK && entry.Before(birth.AddDate(MinimumAge, 0, 0)) {
		violations.add("entryDate", "Entry date must be on or after the 18th birthday")
	}

	sentence, err := strconv.Atoi(strings.TrimSpace(d.Sentence))
	switch {
	case err != nil:
		violations.add("sentence", "Sentence must be a whole number of years")
	case sentence < MinSentence || sentence > MaxSentence:
		violations.add("sentence", "Sentence must be between 1 and 100 years")
	}

	gender := models.Gender(strings.ToLower(strings.TrimSpace(d.Gender)))
	if !gender.Valid() {
		violations.add("gender", "Gender is invalid")
	}

	crime := models.Crime(strings.ToLower(strings.TrimSpace(d.Crime)))
	otherCrime := strings.TrimSpace(d.OtherCrime)
	if crime == models.CrimeOther && otherCrime == "" {
		violations.add("otherCrime", "Describe the crime when the category is other")
	}

	fullName := strings.TrimSpace(d.FullName)
	if fullName == "" {
		violations.add("fullName", "Full name is required")
	}
	processNumber := strings.TrimSpace(d.ProcessNumber)
	if processNumber == "" {
		violations.add("processNumber", "Process number is required")
	}
	if crime == "" {
		violations.add("crime", "Crime is required")
	} else if !crime.Valid() {
		violations.add("crime", "Crime category is invalid")
	}

	status := models.Status(strings.ToLower(strings.TrimSpace(d.Status)))
	if status == "" {
		status = models.StatusIncarcerated
	} else if !status.Valid() {
		violations.add("status", "Status is invalid")
	}

	if !violations.OK() {
		return RecordInput{}, violations
	}
	if crime != models.CrimeOther {
		otherCrime = ""
	}
	out = RecordInput{
		FullName:      fullName,
		BirthDate:     birth,
		Gender:        gender,
		ProcessNumber: processNumber,
		Crime:         crime,
		OtherCrime:    otherCrime,
		EntryDate:     entry,
		SentenceYears: sentence,
		Status:        status,
		Photo:         strings.TrimSpace(d.Photo),
	}
	return out, nil
}

// ValidateStored applies the intake rules to a persisted record.
func ValidateStored(r models.Record, now time.Time) Violations {
	_, violations := ValidateRecord(DraftFromRecord(r), now)
	return violations
}

// DraftFromRecord renders a record back into form values, used to merge
// partial edits and to re-validate stored data.
func DraftFromRecord(r models.Record) RecordDraft {
	return RecordDraft{
		FullName:      r.FullName,
		BirthDate:     formatDate(r.BirthDate),
		Gender:        string(r.Gender),
		ProcessNumber: r.ProcessNumber,
		Crime:         string(r.Crime),
		OtherCrime:    r.OtherCrime,
		EntryDate:     formatDate(r.EntryDate),
		Sentence:      strconv.Itoa(r.SentenceYears),
		Status:        string(r.Status),
		Photo:         r.Photo,
	}
}

// AgeAt returns completed years between birth and at.
func AgeAt(birth, at time.Time) int {
	age := at.Year() - birth.Year()
	if at.Month() < birth.Month() || (at.Month() == birth.Month() && at.Day() < birth.Day()) {
		age--
	}
	return age
}

func parseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return civilDate(parsed), true
	}
	return time.Time{}, false
}

func formatDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(dateLayout)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
