package model

// Roles recognized by the console. These match the values the backend
// embeds in the token's "role" claim.
const (
	RoleAdmin       = "admin"
	RoleModerator   = "moderator"
	RoleCoordinator = "coordinator"
	RoleUser        = "user"
)

// Account status values carried in the token's "status" claim.
const (
	AccountPending  = "pending"
	AccountVerified = "verified"
	AccountDeleted  = "deleted"
)

// Claims is the subset of the bearer token payload the console consumes.
// The token is decoded without signature verification on this side of
// the trust boundary; the backend re-validates the signature on every
// forwarded request, so these values are advisory and drive UI gating
// only.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Status string `json:"status"`
	Exp    int64  `json:"exp"` // unix seconds
}

// Session is the in-memory authenticated principal for one operator.
// The token cookie is the durable store; everything else here is
// re-derived from it after a restart.
type Session struct {
	Token           string
	UserID          string
	Role            string
	Status          string
	IsAuthenticated bool
}
