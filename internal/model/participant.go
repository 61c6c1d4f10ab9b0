package model

// Participant mirrors the backend's participant resource as exchanged
// over the REST API. The console never stores participants itself; this
// struct is the wire shape for listing, verification and bulk insert.
//
// Fields:
//  ParticipantID – backend identifier (a synthetic AUTO* placeholder
//                  while a row is only staged for import).
//  Name          – full participant name.
//  FatherName    – father's full name.
//  School        – school the participant belongs to.
//  HomeTown      – participant's home town.
//  Email         – contact email, unique per individual participant.
//  Phone         – 10 digit contact number.
//  DOB           – date of birth, ISO yyyy-mm-dd.
//  Class         – school class as a string numeral (5-10).
//  Type          – "individual" or "school".
//  Status        – "pending", "verified" or "inactive".
type Participant struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	FatherName    string `json:"fatherName"`
	School        string `json:"school"`
	HomeTown      string `json:"homeTown"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	DOB           string `json:"dob"`
	Class         string `json:"class"`
	Type          string `json:"type"`
	Status        string `json:"status"`
}

// Participant type values accepted by the importer.
const (
	TypeIndividual = "individual"
	TypeSchool     = "school"
)

// Participant status values used by the console views.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusInactive = "inactive"
)

// StagedRow is one CSV record staged for bulk creation. It keeps every
// field as the string the file produced plus the validation verdict.
// A separate type from Participant on purpose: staged rows always carry
// annotations and never a backend identity.
type StagedRow struct {
	Participant
	IsValid   bool              `json:"isValid"`
	ErrorMsgs map[string]string `json:"errorMsgs"`
}
