package importer

import (
	"testing"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

func validRow() model.Participant {
	return model.Participant{
		ParticipantID: "AUTO1001",
		Name:          "Arjun Kumar",
		FatherName:    "Suresh Kumar",
		School:        "Central School",
		HomeTown:      "Pune",
		Email:         "arjun@example.com",
		Phone:         "9876543210",
		DOB:           "2010-03-15",
		Class:         "7",
		Type:          model.TypeIndividual,
		Status:        model.StatusPending,
	}
}

func TestValidateRowFieldRules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*model.Participant)
		field   string
		wantMsg string
	}{
		{"baseline valid", func(p *model.Participant) {}, "", ""},
		{"empty name", func(p *model.Participant) { p.Name = "" }, "name", "Name can't be empty"},
		{"short name", func(p *model.Participant) { p.Name = "Raj" }, "name", "Name can't be less than 6 characters"},
		{"empty father name", func(p *model.Participant) { p.FatherName = "" }, "fatherName", "Father Name can't be empty"},
		{"short father name", func(p *model.Participant) { p.FatherName = "Lal" }, "fatherName", "Father Name can't be less than 6 characters"},
		{"empty school", func(p *model.Participant) { p.School = "" }, "school", "School can't be empty"},
		{"short school", func(p *model.Participant) { p.School = "DPS" }, "school", "School name too short"},
		{"empty hometown", func(p *model.Participant) { p.HomeTown = "" }, "homeTown", "Hometown can't be empty"},
		{"short hometown", func(p *model.Participant) { p.HomeTown = "Ab" }, "homeTown", "Hometown name too short"},
		{"empty email", func(p *model.Participant) { p.Email = "" }, "email", "Email can't be empty"},
		{"bad email", func(p *model.Participant) { p.Email = "not-an-email" }, "email", "Invalid email format"},
		{"empty phone", func(p *model.Participant) { p.Phone = "" }, "phone", "Phone can't be empty"},
		{"short phone", func(p *model.Participant) { p.Phone = "12345" }, "phone", "Invalid phone number"},
		{"alpha phone", func(p *model.Participant) { p.Phone = "987654321x" }, "phone", "Invalid phone number"},
		{"class not number", func(p *model.Participant) { p.Class = "seventh" }, "class", "Class must be a number"},
		{"class below range", func(p *model.Participant) { p.Class = "4" }, "class", "Class not allowed (5-10 only)"},
		{"class above range", func(p *model.Participant) { p.Class = "11" }, "class", "Class not allowed (5-10 only)"},
		{"empty dob", func(p *model.Participant) { p.DOB = "" }, "dob", "DOB can't be empty"},
		{"bad dob format", func(p *model.Participant) { p.DOB = "15/03/2010" }, "dob", "Invalid date format (yyyy-mm-dd)"},
		{"birth year too early", func(p *model.Participant) { p.DOB = "2004-12-31" }, "dob", "Birth year must be between 2005-2015"},
		{"birth year too late", func(p *model.Participant) { p.DOB = "2016-01-01" }, "dob", "Birth year must be between 2005-2015"},
		{"bad type", func(p *model.Participant) { p.Type = "team" }, "type", "Invalid type"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			row := validRow()
			tc.mutate(&row)
			ok, errs := ValidateRow(row, nil, nil)
			if tc.field == "" {
				if !ok || len(errs) != 0 {
					t.Fatalf("expected valid, got errs %v", errs)
				}
				return
			}
			if ok {
				t.Fatalf("expected invalid on %s", tc.field)
			}
			if got := errs[tc.field]; got != tc.wantMsg {
				t.Errorf("errs[%q] = %q, want %q", tc.field, got, tc.wantMsg)
			}
		})
	}
}

func TestValidateRowBoundaries(t *testing.T) {
	t.Parallel()

	for _, class := range []string{"5", "10", " 7 "} {
		row := validRow()
		row.Class = class
		if ok, errs := ValidateRow(row, nil, nil); !ok {
			t.Errorf("class %q should be valid, got %v", class, errs)
		}
	}
	for _, dob := range []string{"2005-01-01", "2015-12-31"} {
		row := validRow()
		row.DOB = dob
		if ok, errs := ValidateRow(row, nil, nil); !ok {
			t.Errorf("dob %q should be valid, got %v", dob, errs)
		}
	}
}

func TestValidateRowDuplicates(t *testing.T) {
	t.Parallel()

	t.Run("email case-insensitive", func(t *testing.T) {
		t.Parallel()
		row := validRow()
		row.Email = "Arjun@Example.COM"
		ok, errs := ValidateRow(row, []string{"arjun@example.com"}, nil)
		if ok || errs["email"] != "Email already in use" {
			t.Fatalf("want duplicate email flag, got ok=%v errs=%v", ok, errs)
		}
	})

	t.Run("phone exact", func(t *testing.T) {
		t.Parallel()
		row := validRow()
		ok, errs := ValidateRow(row, nil, []string{"9876543210"})
		if ok || errs["phone"] != "Phone already in use" {
			t.Fatalf("want duplicate phone flag, got ok=%v errs=%v", ok, errs)
		}
	})

	t.Run("school type exempt", func(t *testing.T) {
		t.Parallel()
		row := validRow()
		row.Type = model.TypeSchool
		ok, errs := ValidateRow(row, []string{"arjun@example.com"}, []string{"9876543210"})
		if !ok {
			t.Fatalf("school rows share contacts, got errs %v", errs)
		}
	})

	t.Run("inputs not mutated", func(t *testing.T) {
		t.Parallel()
		emails := []string{"a@b.co"}
		phones := []string{"1112223334"}
		row := validRow()
		_, _ = ValidateRow(row, emails, phones)
		if len(emails) != 1 || len(phones) != 1 {
			t.Fatal("ValidateRow must not grow the duplicate sets")
		}
	})
}
