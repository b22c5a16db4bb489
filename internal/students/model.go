package students

import "time"

// Student is one roster entry. The import pipeline only reads the roster; it
// never creates or mutates students.
type Student struct {
	ID             string    `json:"id"`
	StudentNo      string    `json:"studentNo"`
	FullName       string    `json:"fullName"`
	ClassName      string    `json:"className,omitempty"`
	EnrollmentYear int       `json:"enrollmentYear,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
