package imports

import (
	"fmt"
	"strconv"
	"strings"

	"gradtrack-backend/internal/destinations"
)

// Row field keys consumed by the validator and the payload mapper.
const (
	FieldStudentNo       = "student_no"
	FieldDestinationType = "destination_type"
	FieldEmployer        = "employer"
	FieldPosition        = "position"
	FieldSalary          = "salary"
	FieldWorkLocation    = "work_location"
	FieldSchoolName      = "school_name"
	FieldMajor           = "major"
	FieldDegreeLevel     = "degree_level"
	FieldCountry         = "country"
	FieldVentureName     = "venture_name"
	FieldFounderRole     = "founder_role"
	FieldDescription     = "description"
)

// ValidateRow checks the two required fields of a row and returns the
// canonical destination type code. Known localized type labels are
// normalized before the membership check; anything else is rejected rather
// than defaulted, so garbage codes never reach persisted state. It has no
// side effects.
func ValidateRow(row Row) (string, error) {
	if strings.TrimSpace(row[FieldStudentNo]) == "" {
		return "", fmt.Errorf("%s", MsgStudentNoRequired)
	}
	rawType := strings.TrimSpace(row[FieldDestinationType])
	if rawType == "" {
		return "", fmt.Errorf("%s", MsgDestinationTypeRequired)
	}
	code, ok := destinations.NormalizeType(rawType)
	if !ok {
		return "", fmt.Errorf("%s: %q", MsgUnknownDestinationType, rawType)
	}
	return code, nil
}

// PayloadFromRow maps the row's optional fields onto a destination payload.
// Fields that are absent or not meaningful for the destination type are
// simply left empty; a salary that does not parse as a number is dropped
// rather than failing the row.
func PayloadFromRow(row Row) destinations.Payload {
	payload := destinations.Payload{
		Employer:     strings.TrimSpace(row[FieldEmployer]),
		Position:     strings.TrimSpace(row[FieldPosition]),
		WorkLocation: strings.TrimSpace(row[FieldWorkLocation]),
		SchoolName:   strings.TrimSpace(row[FieldSchoolName]),
		Major:        strings.TrimSpace(row[FieldMajor]),
		DegreeLevel:  strings.TrimSpace(row[FieldDegreeLevel]),
		Country:      strings.TrimSpace(row[FieldCountry]),
		VentureName:  strings.TrimSpace(row[FieldVentureName]),
		FounderRole:  strings.TrimSpace(row[FieldFounderRole]),
		Description:  strings.TrimSpace(row[FieldDescription]),
	}
	if raw := strings.TrimSpace(row[FieldSalary]); raw != "" {
		if salary, err := strconv.ParseFloat(raw, 64); err == nil {
			payload.Salary = &salary
		}
	}
	return payload
}
