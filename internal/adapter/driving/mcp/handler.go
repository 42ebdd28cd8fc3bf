// Package mcphandler is the MCP driving adapter that exposes credential
// management and the node catalog as tools.
package mcphandler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ericfisherdev/credmcp/internal/application"
)

// ServerName is the implementation name reported to MCP clients.
const ServerName = "credmcp"

// Handler serves the credential and catalog tools.
type Handler struct {
	credentials *application.CredentialService
	catalog     *application.CatalogService
	logger      *slog.Logger
}

// NewHandler creates a Handler. credentials may be nil when no n8n API is
// configured; only the catalog tools are registered in that case.
func NewHandler(
	credentials *application.CredentialService,
	catalog *application.CatalogService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		credentials: credentials,
		catalog:     catalog,
		logger:      logger,
	}
}

// NewServer creates an MCP server with every available tool registered and
// request logging installed.
func NewServer(h *Handler, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)
	server.AddReceivingMiddleware(loggingMiddleware(h.logger))

	h.Register(server)
	return server
}

// Register adds the tools to server.
func (h *Handler) Register(server *mcp.Server) {
	tools := make(map[string]*mcp.Tool)
	for _, t := range AllTools() {
		tools[t.Name] = t
	}

	if h.credentials != nil {
		mcp.AddTool(server, tools[ToolListCredentials], h.ListCredentials)
		mcp.AddTool(server, tools[ToolGetCredential], h.GetCredential)
		mcp.AddTool(server, tools[ToolCreateCredential], h.CreateCredential)
		mcp.AddTool(server, tools[ToolUpdateCredential], h.UpdateCredential)
		mcp.AddTool(server, tools[ToolDeleteCredential], h.DeleteCredential)
		mcp.AddTool(server, tools[ToolTestCredential], h.TestCredential)
	} else {
		h.logger.Warn("n8n API not configured, credential tools disabled")
	}

	mcp.AddTool(server, tools[ToolGetCredentialTypeInfo], h.GetCredentialTypeInfo)
	mcp.AddTool(server, tools[ToolListCredentialTypes], h.ListCredentialTypes)
	mcp.AddTool(server, tools[ToolGetNodeRequirements], h.GetNodeCredentialRequirements)
}

// ListCredentials handles n8n_list_credentials.
func (h *Handler) ListCredentials(ctx context.Context, _ *mcp.CallToolRequest, in ListCredentialsInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	req := application.ListCredentialsRequest{Cursor: in.Cursor}
	if in.Limit != nil {
		req.Limit = *in.Limit
	}

	list, err := h.credentials.ListCredentials(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(toCredentialListResponse(list))
}

// GetCredential handles n8n_get_credential.
func (h *Handler) GetCredential(ctx context.Context, _ *mcp.CallToolRequest, in IDInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	detail, err := h.credentials.GetCredential(ctx, in.ID)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(toCredentialDetailResponse(detail))
}

// CreateCredential handles n8n_create_credential.
func (h *Handler) CreateCredential(ctx context.Context, _ *mcp.CallToolRequest, in CreateCredentialInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	created, err := h.credentials.CreateCredential(ctx, application.CreateCredentialRequest{
		Name:        in.Name,
		Type:        in.Type,
		Data:        in.Data,
		NodesAccess: toNodeAccess(in.NodesAccess),
	})
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(CreatedCredentialResponse{
		ID:        created.ID,
		Name:      created.Name,
		Type:      created.Type,
		CreatedAt: created.CreatedAt,
		Message:   created.Message,
	})
}

// UpdateCredential handles n8n_update_credential.
func (h *Handler) UpdateCredential(ctx context.Context, _ *mcp.CallToolRequest, in UpdateCredentialInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	updated, err := h.credentials.UpdateCredential(ctx, application.UpdateCredentialRequest{
		ID:          in.ID,
		Name:        in.Name,
		Data:        in.Data,
		NodesAccess: toNodeAccess(in.NodesAccess),
	})
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(UpdatedCredentialResponse{
		ID:        updated.ID,
		Name:      updated.Name,
		Type:      updated.Type,
		UpdatedAt: updated.UpdatedAt,
		Message:   updated.Message,
	})
}

// DeleteCredential handles n8n_delete_credential.
func (h *Handler) DeleteCredential(ctx context.Context, _ *mcp.CallToolRequest, in IDInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	deleted, err := h.credentials.DeleteCredential(ctx, in.ID)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(DeletedCredentialResponse{Success: deleted.Success, Message: deleted.Message})
}

// TestCredential handles n8n_test_credential.
func (h *Handler) TestCredential(ctx context.Context, _ *mcp.CallToolRequest, in IDInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	report, err := h.credentials.TestCredential(ctx, in.ID)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(CredentialTestResponse{
		ID:       report.ID,
		Success:  report.Success,
		Message:  report.Message,
		TestedAt: report.TestedAt,
	})
}

// GetCredentialTypeInfo handles get_credential_type_info.
func (h *Handler) GetCredentialTypeInfo(ctx context.Context, _ *mcp.CallToolRequest, in CredentialTypeInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	result, err := h.catalog.GetCredentialTypeInfo(ctx, in.Type)
	if err != nil {
		return nil, nil, err
	}
	if result.NotFound != nil {
		return jsonResult(toNotFoundResponse(result.NotFound))
	}
	return jsonResult(toCredentialTypeResponse(result.Detail))
}

// ListCredentialTypes handles list_credential_types.
func (h *Handler) ListCredentialTypes(ctx context.Context, _ *mcp.CallToolRequest, in ListCredentialTypesInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	list, err := h.catalog.ListCredentialTypes(ctx, in.Filter)
	if err != nil {
		return nil, nil, err
	}
	return jsonResult(toCredentialTypeListResponse(list))
}

// GetNodeCredentialRequirements handles get_node_credential_requirements.
func (h *Handler) GetNodeCredentialRequirements(ctx context.Context, _ *mcp.CallToolRequest, in NodeTypeInput) (*mcp.CallToolResult, any, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	result, err := h.catalog.GetNodeCredentialRequirements(ctx, in.NodeType)
	if err != nil {
		return nil, nil, err
	}
	if result.NotFound != nil {
		return jsonResult(toNotFoundResponse(result.NotFound))
	}
	return jsonResult(toNodeRequirementsResponse(result.Requirements))
}

// jsonResult renders v as indented JSON text content.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// loggingMiddleware logs every inbound MCP request with its method and duration.
func loggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)

			attrs := []any{
				"method", method,
				"duration", time.Since(start).Round(time.Microsecond),
			}
			if err != nil {
				logger.Warn("mcp request failed", append(attrs, "error", err)...)
				return result, err
			}
			logger.Debug("mcp request", attrs...)
			return result, nil
		}
	}
}
