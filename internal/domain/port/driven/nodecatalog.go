package driven

import (
	"context"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

// NodeCatalog defines the driven port for the node documentation index.
// Lookups report not-found as a nil result, not as an error.
type NodeCatalog interface {
	// GetCredentialTypeInfo returns (nil, nil) if the type is not catalogued.
	GetCredentialTypeInfo(ctx context.Context, credType string) (*model.CredentialTypeInfo, error)

	// ListCredentialTypes returns all credential types whose type or display
	// name contains filter (case-insensitive). An empty filter matches all.
	ListCredentialTypes(ctx context.Context, filter string) ([]model.CredentialTypeSummary, error)

	// GetNodeByType returns (nil, nil) if the node type is not catalogued.
	GetNodeByType(ctx context.Context, nodeType string) (*model.NodeInfo, error)

	// Import upserts every credential type and node in the catalog.
	Import(ctx context.Context, catalog *model.Catalog) error
}
