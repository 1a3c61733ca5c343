package models

import "time"

// Record is a prisoner intake entry.
type Record struct {
	ID            string               `json:"id" db:"id"`
	FullName      string               `json:"fullName" db:"full_name"`
	BirthDate     time.Time            `json:"birthDate" db:"birth_date"`
	Gender        Gender               `json:"gender" db:"gender"`
	ProcessNumber string               `json:"processNumber" db:"process_number"`
	Crime         Crime                `json:"crime" db:"crime"`
	OtherCrime    string               `json:"otherCrime,omitempty" db:"other_crime"`
	EntryDate     time.Time            `json:"entryDate" db:"entry_date"`
	SentenceYears int                  `json:"sentenceYears" db:"sentence_years"`
	Status        Status               `json:"status" db:"status"`
	Photo         string               `json:"photo,omitempty" db:"photo"`
	CreatedAt     time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time            `json:"updatedAt" db:"updated_at"`
	History       []StatusHistoryEntry `json:"history" db:"-"`
}

// CrimeLabel is the crime shown to operators: the free-text override
// replaces the "other" category when one was given.
func (r Record) CrimeLabel() string {
	if r.Crime == CrimeOther && r.OtherCrime != "" {
		return r.OtherCrime
	}
	return string(r.Crime)
}

type StatusHistoryEntry struct {
	Date    time.Time `json:"date" db:"date"`
	Status  Status    `json:"status" db:"status"`
	Details string    `json:"details" db:"details"`
}

type Visitor struct {
	ID        string    `json:"id" db:"id"`
	FullName  string    `json:"fullName" db:"full_name"`
	Document  string    `json:"document" db:"document"`
	Relation  string    `json:"relation" db:"relation"`
	RecordID  string    `json:"recordId" db:"record_id"`
	Photo     string    `json:"photo,omitempty" db:"photo"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Visit struct {
	ID           string    `json:"id" db:"id"`
	VisitorID    string    `json:"visitorId" db:"visitor_id"`
	RecordID     string    `json:"recordId" db:"record_id"`
	VisitDate    time.Time `json:"visitDate" db:"visit_date"`
	VisitType    VisitType `json:"visitType" db:"visit_type"`
	Notes        string    `json:"notes,omitempty" db:"notes"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
	RegisteredBy string    `json:"registeredBy" db:"registered_by"`
}

// User is an operator account.
type User struct {
	ID           string    `json:"id" db:"id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"passwordHash" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// MediaAsset is a stored photo.
type MediaAsset struct {
	ID          string    `json:"id"`
	Bucket      string    `json:"bucket"`
	ContentType string    `json:"contentType"`
	SizeBytes   int64     `json:"sizeBytes"`
	Sha256      string    `json:"sha256"`
	CreatedAt   time.Time `json:"createdAt"`
}
