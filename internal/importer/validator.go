package importer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

var (
	emailRE   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRE   = regexp.MustCompile(`^[0-9]{10}$`)
	isoDateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Birth years accepted for the current event edition.
const (
	minBirthYear = 2005
	maxBirthYear = 2015
)

// Classes admitted to the quiz.
const (
	minClass = 5
	maxClass = 10
)

// ValidateRow checks one staged row against the field rules and the
// emails/phones already seen earlier in the batch. It is pure: inputs
// are never mutated, and the caller is responsible for folding this
// row's email (lower-cased) and phone into the existing sets before
// validating the next row. Duplicate detection is therefore strictly
// sequential over file order: the first occurrence wins and later ones
// are flagged. Only individual-type rows are subject to the duplicate
// checks; school-type rows share contact details by nature.
func ValidateRow(row model.Participant, existingEmails, existingPhones []string) (bool, map[string]string) {
	errs := make(map[string]string)

	switch {
	case row.Name == "":
		errs["name"] = "Name can't be empty"
	case len(row.Name) < 6:
		errs["name"] = "Name can't be less than 6 characters"
	}

	switch {
	case row.FatherName == "":
		errs["fatherName"] = "Father Name can't be empty"
	case len(row.FatherName) < 6:
		errs["fatherName"] = "Father Name can't be less than 6 characters"
	}

	switch {
	case row.School == "":
		errs["school"] = "School can't be empty"
	case len(row.School) < 6:
		errs["school"] = "School name too short"
	}

	switch {
	case row.HomeTown == "":
		errs["homeTown"] = "Hometown can't be empty"
	case len(row.HomeTown) < 3:
		errs["homeTown"] = "Hometown name too short"
	}

	typ := strings.ToLower(row.Type)

	if row.Email == "" {
		errs["email"] = "Email can't be empty"
	} else if !emailRE.MatchString(row.Email) {
		errs["email"] = "Invalid email format"
	} else if typ == model.TypeIndividual && contains(existingEmails, strings.ToLower(row.Email)) {
		errs["email"] = "Email already in use"
	}

	if row.Phone == "" {
		errs["phone"] = "Phone can't be empty"
	} else if !phoneRE.MatchString(row.Phone) {
		errs["phone"] = "Invalid phone number"
	} else if typ == model.TypeIndividual && contains(existingPhones, row.Phone) {
		errs["phone"] = "Phone already in use"
	}

	if classNum, err := strconv.Atoi(strings.TrimSpace(row.Class)); err != nil {
		errs["class"] = "Class must be a number"
	} else if classNum < minClass || classNum > maxClass {
		errs["class"] = "Class not allowed (5-10 only)"
	}

	if row.DOB == "" {
		errs["dob"] = "DOB can't be empty"
	} else if !isoDateRE.MatchString(row.DOB) {
		errs["dob"] = "Invalid date format (yyyy-mm-dd)"
	} else {
		year, _ := strconv.Atoi(row.DOB[:4])
		if year < minBirthYear || year > maxBirthYear {
			errs["dob"] = "Birth year must be between 2005-2015"
		}
	}

	if typ != model.TypeIndividual && typ != model.TypeSchool {
		errs["type"] = "Invalid type"
	}

	return len(errs) == 0, errs
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
