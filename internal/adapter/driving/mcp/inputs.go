package mcphandler

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

// InputError reports a tool argument that passed schema validation but is
// still unusable.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

func requireNonBlank(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &InputError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

// NodeAccessInput grants a node type access to a credential.
type NodeAccessInput struct {
	NodeType string `json:"nodeType"`
}

func toNodeAccess(in []NodeAccessInput) []model.NodeAccess {
	if in == nil {
		return nil
	}
	out := make([]model.NodeAccess, 0, len(in))
	for _, na := range in {
		out = append(out, model.NodeAccess{NodeType: na.NodeType})
	}
	return out
}

func validateNodeAccess(in []NodeAccessInput) error {
	for i, na := range in {
		if err := requireNonBlank(fmt.Sprintf("nodesAccess[%d].nodeType", i), na.NodeType); err != nil {
			return err
		}
	}
	return nil
}

// ListCredentialsInput holds the arguments of n8n_list_credentials.
type ListCredentialsInput struct {
	Limit  *int   `json:"limit,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

func (in ListCredentialsInput) validate() error {
	if in.Limit != nil && (*in.Limit < 1 || *in.Limit > MaxListLimit) {
		return &InputError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxListLimit)}
	}
	return nil
}

// IDInput holds the arguments of the tools that act on one credential.
type IDInput struct {
	ID string `json:"id"`
}

func (in IDInput) validate() error {
	return requireNonBlank("id", in.ID)
}

// CreateCredentialInput holds the arguments of n8n_create_credential.
type CreateCredentialInput struct {
	Name        string            `json:"name"`
	Type        string            `json:"type"`
	Data        map[string]any    `json:"data"`
	NodesAccess []NodeAccessInput `json:"nodesAccess,omitempty"`
}

func (in CreateCredentialInput) validate() error {
	if err := requireNonBlank("name", in.Name); err != nil {
		return err
	}
	if err := requireNonBlank("type", in.Type); err != nil {
		return err
	}
	if in.Data == nil {
		return &InputError{Field: "data", Reason: "is required"}
	}
	return validateNodeAccess(in.NodesAccess)
}

// UpdateCredentialInput holds the arguments of n8n_update_credential. Data
// and NodesAccess stay nil when absent so an explicit empty value can be
// told apart.
type UpdateCredentialInput struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Data        map[string]any    `json:"data,omitempty"`
	NodesAccess []NodeAccessInput `json:"nodesAccess,omitempty"`
}

func (in UpdateCredentialInput) validate() error {
	if err := requireNonBlank("id", in.ID); err != nil {
		return err
	}
	return validateNodeAccess(in.NodesAccess)
}

// CredentialTypeInput holds the arguments of get_credential_type_info.
type CredentialTypeInput struct {
	Type string `json:"type"`
}

func (in CredentialTypeInput) validate() error {
	return requireNonBlank("type", in.Type)
}

// ListCredentialTypesInput holds the arguments of list_credential_types.
type ListCredentialTypesInput struct {
	Filter string `json:"filter,omitempty"`
}

func (in ListCredentialTypesInput) validate() error { return nil }

// NodeTypeInput holds the arguments of get_node_credential_requirements.
type NodeTypeInput struct {
	NodeType string `json:"nodeType"`
}

func (in NodeTypeInput) validate() error {
	return requireNonBlank("nodeType", in.NodeType)
}
