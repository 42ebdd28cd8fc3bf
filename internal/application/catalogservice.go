package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
	"github.com/ericfisherdev/credmcp/internal/domain/port/driven"
)

// NotFound is a successful lookup result for an unknown credential or node
// type. It is returned instead of an error so the caller can recover without
// error handling.
type NotFound struct {
	Error      string
	Suggestion string
}

// CredentialTypeDetail is a credential type's schema plus an example payload.
type CredentialTypeDetail struct {
	Type             string
	DisplayName      string
	DocumentationURL string
	Properties       []model.CredentialProperty
	Examples         map[string]any
}

// CredentialTypeResult holds exactly one of Detail or NotFound.
type CredentialTypeResult struct {
	Detail   *CredentialTypeDetail
	NotFound *NotFound
}

// CredentialTypeList is the list of catalogued credential types.
type CredentialTypeList struct {
	CredentialTypes []model.CredentialTypeSummary
	Total           int
}

// CredentialRequirement is one credential slot of a node, enriched with a
// description.
type CredentialRequirement struct {
	Name           string
	Required       bool
	DisplayOptions map[string]any
	Description    string
}

// NodeRequirements describes the credentials a node accepts. Credentials and
// Examples are set only when RequiresCredentials is true; Message only when
// it is false.
type NodeRequirements struct {
	NodeType            string
	NodeName            string
	RequiresCredentials bool
	Message             string
	Credentials         []CredentialRequirement
	Examples            *NodeCredentialExample
}

// NodeRequirementsResult holds exactly one of Requirements or NotFound.
type NodeRequirementsResult struct {
	Requirements *NodeRequirements
	NotFound     *NotFound
}

// CatalogService answers credential-type and node-requirement questions from
// the node catalog, enriched with the static example tables.
type CatalogService struct {
	catalog driven.NodeCatalog
	logger  *slog.Logger
}

// NewCatalogService creates a CatalogService backed by the given catalog.
func NewCatalogService(catalog driven.NodeCatalog, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		logger:  logger,
	}
}

// GetCredentialTypeInfo returns the schema of a credential type, or a
// NotFound result if the type is unknown.
func (s *CatalogService) GetCredentialTypeInfo(ctx context.Context, credType string) (*CredentialTypeResult, error) {
	info, err := s.catalog.GetCredentialTypeInfo(ctx, credType)
	if err != nil {
		s.logger.Error("error getting credential type info", "type", credType, "error", err)
		return nil, fmt.Errorf("get credential type info %q: %w", credType, err)
	}

	if info == nil {
		return &CredentialTypeResult{NotFound: &NotFound{
			Error:      fmt.Sprintf("Credential type '%s' not found", credType),
			Suggestion: "Use list_credential_types to see available types",
		}}, nil
	}

	props := info.Properties
	if props == nil {
		props = []model.CredentialProperty{}
	}

	return &CredentialTypeResult{Detail: &CredentialTypeDetail{
		Type:             info.Type,
		DisplayName:      info.DisplayName,
		DocumentationURL: info.DocumentationURL,
		Properties:       props,
		Examples:         CredentialExample(credType),
	}}, nil
}

// ListCredentialTypes lists catalogued credential types matching filter.
func (s *CatalogService) ListCredentialTypes(ctx context.Context, filter string) (*CredentialTypeList, error) {
	types, err := s.catalog.ListCredentialTypes(ctx, filter)
	if err != nil {
		s.logger.Error("error listing credential types", "filter", filter, "error", err)
		return nil, fmt.Errorf("list credential types: %w", err)
	}

	if types == nil {
		types = []model.CredentialTypeSummary{}
	}

	return &CredentialTypeList{
		CredentialTypes: types,
		Total:           len(types),
	}, nil
}

// GetNodeCredentialRequirements describes the credentials a node type
// accepts, or returns a NotFound result if the node type is unknown.
func (s *CatalogService) GetNodeCredentialRequirements(ctx context.Context, nodeType string) (*NodeRequirementsResult, error) {
	node, err := s.catalog.GetNodeByType(ctx, nodeType)
	if err != nil {
		s.logger.Error("error getting node credential requirements", "node_type", nodeType, "error", err)
		return nil, fmt.Errorf("get node %q: %w", nodeType, err)
	}

	if node == nil {
		return &NodeRequirementsResult{NotFound: &NotFound{
			Error:      fmt.Sprintf("Node type '%s' not found", nodeType),
			Suggestion: "Use list_nodes to see available node types",
		}}, nil
	}

	if len(node.Credentials) == 0 {
		return &NodeRequirementsResult{Requirements: &NodeRequirements{
			NodeType:            nodeType,
			NodeName:            node.DisplayName,
			RequiresCredentials: false,
			Message:             "This node does not require any credentials",
		}}, nil
	}

	reqs := make([]CredentialRequirement, 0, len(node.Credentials))
	for _, c := range node.Credentials {
		reqs = append(reqs, CredentialRequirement{
			Name:           c.Name,
			Required:       c.IsRequired(),
			DisplayOptions: c.DisplayOptions,
			Description:    CredentialDescription(c.Name),
		})
	}

	example := BuildNodeCredentialExample(nodeType, node.Credentials)

	return &NodeRequirementsResult{Requirements: &NodeRequirements{
		NodeType:            nodeType,
		NodeName:            node.DisplayName,
		RequiresCredentials: true,
		Credentials:         reqs,
		Examples:            &example,
	}}, nil
}

// ImportCatalog loads a catalog into the node catalog.
func (s *CatalogService) ImportCatalog(ctx context.Context, catalog *model.Catalog) error {
	if err := s.catalog.Import(ctx, catalog); err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	s.logger.Info("catalog imported",
		"credential_types", len(catalog.CredentialTypes),
		"nodes", len(catalog.Nodes),
	)
	return nil
}
