package imports

import "errors"

var (
	ErrNotFound     = errors.New("import batch not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Stable per-field validation messages. Operators match on these strings in
// the failure ledger, so changing them is a breaking change.
const (
	MsgStudentNoRequired       = "student_no is required"
	MsgDestinationTypeRequired = "destination_type is required"
	MsgUnknownDestinationType  = "unknown destination_type"
)
