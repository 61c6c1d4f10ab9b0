package csvutil

import (
	"errors"
	"testing"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trims cells", " a , b ,c ", []string{"a", "b", "c"}},
		{"keeps empty fields", "a,,c", []string{"a", "", "c"}},
		{"quoted comma", `"Springfield, East",b`, []string{"Springfield, East", "b"}},
		{"doubled quote", `"O""Brien",x`, []string{`O"Brien`, "x"}},
		{"quoted only", `"hello"`, []string{"hello"}},
		{"trailing empty", "a,b,", []string{"a", "b", ""}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseLine(tc.line)
			if len(got) != len(tc.want) {
				t.Fatalf("ParseLine(%q) = %v, want %v", tc.line, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("cell %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Father Name": "fathername",
		"father_name": "fathername",
		" Email ":     "email",
		"HOME-TOWN":   "hometown",
	}
	for in, want := range cases {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2010-03-15": "2010-03-15",
		"15/03/2010": "2010-03-15",
		"15-03-2010": "2010-03-15",
		"5/3/2010":   "2010-03-05",
		"":           "",
		// Short ISO parts pass through for the validator to reject.
		"2010-3-15":   "2010-3-15",
		"not-a-date":  "not-a-date",
		" 15/03/2010": "2010-03-15",
	}
	for in, want := range cases {
		if got := NormalizeDate(in); got != want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRejectsHeaderOnly(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "name,email", "name,email\n\n  \n"} {
		if _, err := Parse(raw); !errors.Is(err, ErrNoData) {
			t.Errorf("Parse(%q) err = %v, want ErrNoData", raw, err)
		}
	}
}

func TestParseRows(t *testing.T) {
	t.Parallel()

	raw := "Name,Email,Phone,DOB,Class,School,Home Town,Father Name,Type\r\n" +
		"Arjun Kumar,arjun@example.com,9876543210,15/03/2010,7,Central School,Pune,Suresh Kumar,Individual\r\n" +
		"\r\n" +
		"Meena Devi,NULL,9876543211,2011-04-01,8,Model School,Nashik,Ramesh Lal,\r\n"

	rows, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank lines dropped)", len(rows))
	}

	first := rows[0]
	if first.ParticipantID != "AUTO1001" {
		t.Errorf("ParticipantID = %q, want AUTO1001", first.ParticipantID)
	}
	if first.Name != "Arjun Kumar" || first.FatherName != "Suresh Kumar" {
		t.Errorf("unexpected name fields: %q / %q", first.Name, first.FatherName)
	}
	if first.DOB != "2010-03-15" {
		t.Errorf("DOB = %q, want normalized 2010-03-15", first.DOB)
	}
	if first.Type != "individual" {
		t.Errorf("Type = %q, want lower-cased individual", first.Type)
	}
	if first.Status != "pending" {
		t.Errorf("Status = %q, want pending", first.Status)
	}

	second := rows[1]
	if second.ParticipantID != "AUTO1002" {
		t.Errorf("second ParticipantID = %q, want AUTO1002", second.ParticipantID)
	}
	if second.Email != "" {
		t.Errorf("NULL cell should fold to empty, got %q", second.Email)
	}
	if second.Type != "individual" {
		t.Errorf("empty type should default to individual, got %q", second.Type)
	}
}

func TestParseHeaderOrderIndependent(t *testing.T) {
	t.Parallel()

	raw := "email,name,type\n" +
		"a@b.co,Someone Long,school\n"
	rows, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rows[0].Email != "a@b.co" || rows[0].Name != "Someone Long" || rows[0].Type != "school" {
		t.Errorf("fields bound by header name, got %+v", rows[0])
	}
	// Missing columns yield empty fields, not errors.
	if rows[0].Phone != "" || rows[0].DOB != "" {
		t.Errorf("absent columns should be empty, got phone=%q dob=%q", rows[0].Phone, rows[0].DOB)
	}
}
