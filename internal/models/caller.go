package models

// Caller identifies who makes a request and on behalf of which organization.
type Caller struct {
	UserID         string
	OrganizationID string
}
