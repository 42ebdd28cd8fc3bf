package mcphandler

import (
	"github.com/ericfisherdev/credmcp/internal/application"
	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

// NodeAccessResponse is the JSON representation of a node access grant.
type NodeAccessResponse struct {
	NodeType string `json:"nodeType"`
	Date     string `json:"date,omitempty"`
}

// CredentialSummaryResponse is the JSON representation of credential metadata.
type CredentialSummaryResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Type        string               `json:"type"`
	CreatedAt   string               `json:"createdAt"`
	UpdatedAt   string               `json:"updatedAt"`
	NodesAccess []NodeAccessResponse `json:"nodesAccess,omitempty"`
}

// CredentialListResponse is the result of n8n_list_credentials.
type CredentialListResponse struct {
	Credentials []CredentialSummaryResponse `json:"credentials"`
	NextCursor  *string                     `json:"nextCursor"`
	Total       int                         `json:"total"`
}

// CredentialDetailResponse is the result of n8n_get_credential.
type CredentialDetailResponse struct {
	CredentialSummaryResponse
	DataStructure []string `json:"dataStructure"`
}

// CreatedCredentialResponse is the result of n8n_create_credential.
type CreatedCredentialResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
	Message   string `json:"message"`
}

// UpdatedCredentialResponse is the result of n8n_update_credential.
type UpdatedCredentialResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updatedAt"`
	Message   string `json:"message"`
}

// DeletedCredentialResponse is the result of n8n_delete_credential.
type DeletedCredentialResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CredentialTestResponse is the result of n8n_test_credential.
type CredentialTestResponse struct {
	ID       string `json:"id"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TestedAt string `json:"testedAt"`
}

// NotFoundResponse is returned for unknown credential or node types.
type NotFoundResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion"`
}

// CredentialTypeResponse is the result of get_credential_type_info.
type CredentialTypeResponse struct {
	Type             string                     `json:"type"`
	DisplayName      string                     `json:"displayName"`
	DocumentationURL string                     `json:"documentationUrl"`
	Properties       []model.CredentialProperty `json:"properties"`
	Examples         map[string]any             `json:"examples"`
}

// CredentialTypeSummaryResponse is one entry of list_credential_types.
type CredentialTypeSummaryResponse struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	NodeCount   int    `json:"nodeCount"`
}

// CredentialTypeListResponse is the result of list_credential_types.
type CredentialTypeListResponse struct {
	CredentialTypes []CredentialTypeSummaryResponse `json:"credentialTypes"`
	Total           int                             `json:"total"`
}

// CredentialRequirementResponse is one credential slot of a node.
type CredentialRequirementResponse struct {
	Name           string         `json:"name"`
	Required       bool           `json:"required"`
	DisplayOptions map[string]any `json:"displayOptions,omitempty"`
	Description    string         `json:"description"`
}

// CredentialRefResponse is a placeholder credential reference.
type CredentialRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NodeConfigurationResponse is the node snippet inside a usage example.
type NodeConfigurationResponse struct {
	Type        string                           `json:"type"`
	Credentials map[string]CredentialRefResponse `json:"credentials"`
}

// NodeExampleResponse shows how a node references its credentials.
type NodeExampleResponse struct {
	NodeConfiguration NodeConfigurationResponse `json:"nodeConfiguration"`
	Usage             string                    `json:"usage"`
}

// NodeRequirementsResponse is the result of get_node_credential_requirements.
// Credentials and Examples are omitted for nodes without credentials.
type NodeRequirementsResponse struct {
	NodeType            string                          `json:"nodeType"`
	NodeName            string                          `json:"nodeName"`
	RequiresCredentials bool                            `json:"requiresCredentials"`
	Message             string                          `json:"message,omitempty"`
	Credentials         []CredentialRequirementResponse `json:"credentials,omitempty"`
	Examples            *NodeExampleResponse            `json:"examples,omitempty"`
}

func toNodeAccessResponses(in []model.NodeAccess) []NodeAccessResponse {
	if len(in) == 0 {
		return nil
	}
	out := make([]NodeAccessResponse, 0, len(in))
	for _, na := range in {
		out = append(out, NodeAccessResponse{NodeType: na.NodeType, Date: na.Date})
	}
	return out
}

func toCredentialSummaryResponse(s application.CredentialSummary) CredentialSummaryResponse {
	return CredentialSummaryResponse{
		ID:          s.ID,
		Name:        s.Name,
		Type:        s.Type,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		NodesAccess: toNodeAccessResponses(s.NodesAccess),
	}
}

func toCredentialListResponse(l *application.CredentialList) CredentialListResponse {
	creds := make([]CredentialSummaryResponse, 0, len(l.Credentials))
	for _, c := range l.Credentials {
		creds = append(creds, toCredentialSummaryResponse(c))
	}
	return CredentialListResponse{
		Credentials: creds,
		NextCursor:  l.NextCursor,
		Total:       l.Total,
	}
}

func toCredentialDetailResponse(d *application.CredentialDetail) CredentialDetailResponse {
	keys := d.DataStructure
	if keys == nil {
		keys = []string{}
	}
	return CredentialDetailResponse{
		CredentialSummaryResponse: toCredentialSummaryResponse(d.CredentialSummary),
		DataStructure:             keys,
	}
}

func toCredentialTypeResponse(d *application.CredentialTypeDetail) CredentialTypeResponse {
	return CredentialTypeResponse{
		Type:             d.Type,
		DisplayName:      d.DisplayName,
		DocumentationURL: d.DocumentationURL,
		Properties:       d.Properties,
		Examples:         d.Examples,
	}
}

func toCredentialTypeListResponse(l *application.CredentialTypeList) CredentialTypeListResponse {
	types := make([]CredentialTypeSummaryResponse, 0, len(l.CredentialTypes))
	for _, ct := range l.CredentialTypes {
		types = append(types, CredentialTypeSummaryResponse{
			Type:        ct.Type,
			DisplayName: ct.DisplayName,
			Description: ct.Description,
			NodeCount:   ct.NodeCount,
		})
	}
	return CredentialTypeListResponse{CredentialTypes: types, Total: l.Total}
}

func toNodeRequirementsResponse(r *application.NodeRequirements) NodeRequirementsResponse {
	resp := NodeRequirementsResponse{
		NodeType:            r.NodeType,
		NodeName:            r.NodeName,
		RequiresCredentials: r.RequiresCredentials,
		Message:             r.Message,
	}
	if !r.RequiresCredentials {
		return resp
	}

	resp.Credentials = make([]CredentialRequirementResponse, 0, len(r.Credentials))
	for _, c := range r.Credentials {
		resp.Credentials = append(resp.Credentials, CredentialRequirementResponse{
			Name:           c.Name,
			Required:       c.Required,
			DisplayOptions: c.DisplayOptions,
			Description:    c.Description,
		})
	}

	if r.Examples != nil {
		refs := make(map[string]CredentialRefResponse, len(r.Examples.Credentials))
		for name, ref := range r.Examples.Credentials {
			refs[name] = CredentialRefResponse{ID: ref.ID, Name: ref.Name}
		}
		resp.Examples = &NodeExampleResponse{
			NodeConfiguration: NodeConfigurationResponse{Type: r.Examples.NodeType, Credentials: refs},
			Usage:             r.Examples.Usage,
		}
	}
	return resp
}

func toNotFoundResponse(nf *application.NotFound) NotFoundResponse {
	return NotFoundResponse{Error: nf.Error, Suggestion: nf.Suggestion}
}
