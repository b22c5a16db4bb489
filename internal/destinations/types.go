package destinations

import "strings"

// Canonical destination type codes.
const (
	TypeEmployment       = "employment"
	TypeFurtherStudy     = "further_study"
	TypeAbroad           = "abroad"
	TypeEntrepreneurship = "entrepreneurship"
	TypeUnemployed       = "unemployed"
	TypeOther            = "other"
)

// Review statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Review decisions accepted by the review workflow.
const (
	DecisionApproved = StatusApproved
	DecisionRejected = StatusRejected
)

var validTypes = map[string]struct{}{
	TypeEmployment:       {},
	TypeFurtherStudy:     {},
	TypeAbroad:           {},
	TypeEntrepreneurship: {},
	TypeUnemployed:       {},
	TypeOther:            {},
}

// typeSynonyms maps localized spreadsheet labels to canonical codes. Upstream
// templates historically carried Chinese column values, so both scripts are
// accepted on input; persisted records always hold the canonical code.
var typeSynonyms = map[string]string{
	"就业":   TypeEmployment,
	"升学":   TypeFurtherStudy,
	"考研":   TypeFurtherStudy,
	"出国":   TypeAbroad,
	"出国留学": TypeAbroad,
	"创业":   TypeEntrepreneurship,
	"待业":   TypeUnemployed,
	"未就业":  TypeUnemployed,
	"其他":   TypeOther,
}

// IsValidType reports whether code is one of the canonical destination types.
func IsValidType(code string) bool {
	_, ok := validTypes[code]
	return ok
}

// NormalizeType maps a raw destination type value to its canonical code.
// Known localized synonyms are translated first; anything that is not a
// canonical code after translation is rejected.
func NormalizeType(raw string) (string, bool) {
	code := strings.TrimSpace(raw)
	if canonical, ok := typeSynonyms[code]; ok {
		code = canonical
	}
	if IsValidType(code) {
		return code, true
	}
	return "", false
}

// ValidDecision reports whether decision is an accepted review decision.
func ValidDecision(decision string) bool {
	return decision == DecisionApproved || decision == DecisionRejected
}
