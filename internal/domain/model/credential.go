// Package model holds the domain types shared by the services and adapters.
package model

// Credential is an n8n credential as returned by the REST API. Data holds the
// secret material and must never be handed back to a tool caller.
type Credential struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Data        map[string]any `json:"data,omitempty"`
	NodesAccess []NodeAccess   `json:"nodesAccess,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty"`
}

// NodeAccess grants a node type access to a credential.
type NodeAccess struct {
	NodeType string `json:"nodeType"`
	Date     string `json:"date,omitempty"`
}

// CredentialPage is one page of a credential listing.
type CredentialPage struct {
	Data       []Credential `json:"data"`
	NextCursor *string      `json:"nextCursor"`
}

// ListOptions controls credential pagination. A zero Limit lets the server
// pick its default; an empty Cursor requests the first page.
type ListOptions struct {
	Limit  int
	Cursor string
}

// NewCredential is the payload for creating a credential. A nil NodesAccess
// is not sent.
type NewCredential struct {
	Name        string
	Type        string
	Data        map[string]any
	NodesAccess []NodeAccess
}

// CredentialPatch is a partial credential update. Nil fields are not sent;
// an empty but non-nil Data or NodesAccess is.
type CredentialPatch struct {
	Name        *string
	Data        map[string]any
	NodesAccess []NodeAccess
}

// IsEmpty reports whether the patch carries no fields.
func (p CredentialPatch) IsEmpty() bool {
	return p.Name == nil && p.Data == nil && p.NodesAccess == nil
}

// CredentialTestResult is the outcome of a provider connectivity test.
type CredentialTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HealthStatus is the n8n instance health as reported by /healthz.
type HealthStatus struct {
	Status   string         `json:"status"`
	Features map[string]any `json:"features,omitempty"`
}
