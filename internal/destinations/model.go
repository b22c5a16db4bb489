package destinations

import "time"

// Payload carries the type-specific fields of a destination record. Only the
// fields relevant to the record's destination type are meaningful; the rest
// stay empty and are ignored by the store.
type Payload struct {
	Employer     string   `json:"employer,omitempty"`
	Position     string   `json:"position,omitempty"`
	Salary       *float64 `json:"salary,omitempty"`
	WorkLocation string   `json:"workLocation,omitempty"`
	SchoolName   string   `json:"schoolName,omitempty"`
	Major        string   `json:"major,omitempty"`
	DegreeLevel  string   `json:"degreeLevel,omitempty"`
	Country      string   `json:"country,omitempty"`
	VentureName  string   `json:"ventureName,omitempty"`
	FounderRole  string   `json:"founderRole,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// Record is the single destination record a student owns. There is at most
// one per student; a new submission replaces the payload and resets the
// review state.
type Record struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"studentId"`
	StudentNo       string     `json:"studentNo,omitempty"`
	StudentName     string     `json:"studentName,omitempty"`
	DestinationType string     `json:"destinationType"`
	Payload         Payload    `json:"payload"`
	Status          string     `json:"status"`
	ReviewComment   *string    `json:"reviewComment,omitempty"`
	ReviewedBy      *string    `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	SubmittedAt     time.Time  `json:"submittedAt"`
	BatchID         *string    `json:"batchId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
