package imports

import (
	"strings"
	"testing"

	"gradtrack-backend/internal/destinations"
)

func TestValidateRowRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		row     Row
		wantMsg string
	}{
		{
			name:    "missing student_no",
			row:     Row{FieldDestinationType: destinations.TypeEmployment},
			wantMsg: MsgStudentNoRequired,
		},
		{
			name:    "blank student_no",
			row:     Row{FieldStudentNo: "   ", FieldDestinationType: destinations.TypeEmployment},
			wantMsg: MsgStudentNoRequired,
		},
		{
			name:    "missing destination_type",
			row:     Row{FieldStudentNo: "2021001"},
			wantMsg: MsgDestinationTypeRequired,
		},
		{
			name:    "unknown destination_type",
			row:     Row{FieldStudentNo: "2021001", FieldDestinationType: "bogus"},
			wantMsg: MsgUnknownDestinationType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRow(tt.row)
			if err == nil {
				t.Fatalf("expected error for %v", tt.row)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateRowAcceptsCanonicalCodes(t *testing.T) {
	for _, code := range []string{
		destinations.TypeEmployment,
		destinations.TypeFurtherStudy,
		destinations.TypeAbroad,
		destinations.TypeEntrepreneurship,
		destinations.TypeUnemployed,
		destinations.TypeOther,
	} {
		got, err := ValidateRow(Row{FieldStudentNo: "2021001", FieldDestinationType: code})
		if err != nil {
			t.Fatalf("ValidateRow(%s): %v", code, err)
		}
		if got != code {
			t.Fatalf("ValidateRow(%s) = %s", code, got)
		}
	}
}

func TestValidateRowNormalizesSynonyms(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"就业", destinations.TypeEmployment},
		{"升学", destinations.TypeFurtherStudy},
		{"考研", destinations.TypeFurtherStudy},
		{"出国", destinations.TypeAbroad},
		{"出国留学", destinations.TypeAbroad},
		{"创业", destinations.TypeEntrepreneurship},
		{"待业", destinations.TypeUnemployed},
		{"其他", destinations.TypeOther},
	}
	for _, tt := range tests {
		got, err := ValidateRow(Row{FieldStudentNo: "2021001", FieldDestinationType: tt.raw})
		if err != nil {
			t.Fatalf("ValidateRow(%s): %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("ValidateRow(%s) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestPayloadFromRow(t *testing.T) {
	row := Row{
		FieldEmployer:     " Acme Co ",
		FieldPosition:     "Engineer",
		FieldSalary:       "8500.50",
		FieldWorkLocation: "Springfield",
		FieldSchoolName:   "State University",
		FieldDescription:  "notes",
	}
	payload := PayloadFromRow(row)
	if payload.Employer != "Acme Co" {
		t.Fatalf("employer = %q", payload.Employer)
	}
	if payload.Salary == nil || *payload.Salary != 8500.50 {
		t.Fatalf("salary = %v", payload.Salary)
	}
	if payload.SchoolName != "State University" {
		t.Fatalf("school = %q", payload.SchoolName)
	}
}

func TestPayloadFromRowDropsUnparseableSalary(t *testing.T) {
	payload := PayloadFromRow(Row{FieldSalary: "lots"})
	if payload.Salary != nil {
		t.Fatalf("expected nil salary, got %v", *payload.Salary)
	}
}
