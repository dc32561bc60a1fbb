package common

// AccessTokenHeaderName is the gRPC metadata key carrying the session token.
const AccessTokenHeaderName = "access_token"

// EmailTypeOutreach tags email log entries produced by the outreach batch.
const EmailTypeOutreach = "outreach"

// Role names seeded by the migrations.
const (
	RoleAdmin   = "Admin"
	RoleManager = "Manager"
	RoleUser    = "User"
)
