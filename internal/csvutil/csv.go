// Package csvutil turns raw uploaded CSV text into staged participant
// rows. The dialect is the one the console's import template uses:
// comma separated, double quotes around fields that contain commas, a
// doubled quote inside a quoted field for a literal quote, and the
// literal word NULL standing in for an empty cell.
package csvutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

// ErrNoData is returned when the file has fewer than two non-blank
// lines; a header plus at least one data row is required.
var ErrNoData = errors.New("csv must have a header and at least one data row")

var (
	lineBreakRE = regexp.MustCompile(`\r?\n`)
	nonAlnumRE  = regexp.MustCompile(`[^a-zA-Z0-9]`)
	isoDateRE   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDateRE   = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)
)

// recognized header keys after normalization. Unrecognized headers are
// simply ignored; a missing recognized header yields empty fields.
const (
	colName       = "name"
	colEmail      = "email"
	colPhone      = "phone"
	colDOB        = "dob"
	colClass      = "class"
	colSchool     = "school"
	colHomeTown   = "hometown"
	colFatherName = "fathername"
	colType       = "type"
)

// ParseLine splits one CSV line into trimmed cells. A field wrapped in
// double quotes may contain commas, and a doubled quote inside it
// decodes to a literal quote. Unquoted fields split strictly on commas.
func ParseLine(line string) []string {
	var (
		cells    []string
		buf      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			buf.WriteByte(ch)
		case ch == ',' && !inQuotes:
			cells = append(cells, decodeCell(buf.String()))
			buf.Reset()
		default:
			buf.WriteByte(ch)
		}
	}
	cells = append(cells, decodeCell(buf.String()))
	return cells
}

// decodeCell trims a raw cell and strips one layer of surrounding
// quotes, decoding "" escapes inside them.
func decodeCell(raw string) string {
	cell := strings.TrimSpace(raw)
	if len(cell) >= 2 && strings.HasPrefix(cell, `"`) && strings.HasSuffix(cell, `"`) {
		cell = strings.ReplaceAll(cell[1:len(cell)-1], `""`, `"`)
	}
	return strings.TrimSpace(cell)
}

// NormalizeHeader reduces a header cell to its lookup key: trimmed,
// stripped of every non-alphanumeric character and lower-cased, so
// "Father Name" and "father_name" both map to "fathername".
func NormalizeHeader(h string) string {
	return strings.ToLower(nonAlnumRE.ReplaceAllString(strings.TrimSpace(h), ""))
}

// NormalizeDate accepts yyyy-mm-dd unchanged and rewrites d-m-yyyy or
// d/m/yyyy (one or two digit day and month) to zero-padded yyyy-mm-dd.
// Anything else passes through untouched for the validator to reject.
func NormalizeDate(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if isoDateRE.MatchString(v) {
		return v
	}
	if m := dmyDateRE.FindStringSubmatch(v); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[2]), pad2(m[1]))
	}
	return v
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// Parse converts raw file text into ordered participant rows. Lines are
// split on any line-ending convention, trimmed and blank lines dropped.
// Every row gets a synthetic AUTO participant id derived from its
// position in the file; the backend overwrites it on persist. Type
// defaults to individual and status is always pending at import time.
func Parse(raw string) ([]model.Participant, error) {
	var lines []string
	for _, l := range lineBreakRE.Split(raw, -1) {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return nil, ErrNoData
	}

	headerIndex := make(map[string]int)
	for i, h := range ParseLine(lines[0]) {
		headerIndex[NormalizeHeader(h)] = i
	}

	rows := make([]model.Participant, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		cols := ParseLine(lines[i])
		get := func(key string) string {
			idx, ok := headerIndex[key]
			if !ok || idx >= len(cols) {
				return ""
			}
			cell := cols[idx]
			if strings.ToUpper(cell) == "NULL" {
				return ""
			}
			return cell
		}

		typ := strings.ToLower(get(colType))
		if typ == "" {
			typ = model.TypeIndividual
		}

		rows = append(rows, model.Participant{
			ParticipantID: fmt.Sprintf("AUTO%d", 1000+i),
			Name:          get(colName),
			FatherName:    get(colFatherName),
			School:        get(colSchool),
			HomeTown:      get(colHomeTown),
			Email:         get(colEmail),
			Phone:         get(colPhone),
			DOB:           NormalizeDate(get(colDOB)),
			Class:         get(colClass),
			Type:          typ,
			Status:        model.StatusPending,
		})
	}
	return rows, nil
}
