package model

// Envelope is the consistent JSON structure for all API responses.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// InvalidMembersDetails lists identities rejected at vault creation.
type InvalidMembersDetails struct {
	InvalidMembers []string `json:"invalidMembers"`
}
