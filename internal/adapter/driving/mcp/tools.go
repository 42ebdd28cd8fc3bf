package mcphandler

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names.
const (
	ToolListCredentials       = "n8n_list_credentials"
	ToolGetCredential         = "n8n_get_credential"
	ToolCreateCredential      = "n8n_create_credential"
	ToolUpdateCredential      = "n8n_update_credential"
	ToolDeleteCredential      = "n8n_delete_credential"
	ToolTestCredential        = "n8n_test_credential"
	ToolGetCredentialTypeInfo = "get_credential_type_info"
	ToolListCredentialTypes   = "list_credential_types"
	ToolGetNodeRequirements   = "get_node_credential_requirements"
)

// MaxListLimit is the largest page size n8n accepts.
const MaxListLimit = 250

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func nodesAccessProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items: objectSchema(map[string]*jsonschema.Schema{
			"nodeType": {Type: "string"},
		}, "nodeType"),
	}
}

func floatPtr(v float64) *float64 { return &v }

// CredentialTools returns the descriptors of the tools that call the n8n API.
func CredentialTools() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        ToolListCredentials,
			Description: "List all credentials in the n8n instance. Returns credential metadata without sensitive data.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"limit": {
					Type:        "integer",
					Description: "Maximum number of credentials to return (default: 100)",
					Minimum:     floatPtr(1),
					Maximum:     floatPtr(MaxListLimit),
				},
				"cursor": stringProp("Pagination cursor for next page"),
			}),
		},
		{
			Name:        ToolGetCredential,
			Description: "Get details of a specific credential by ID. Returns metadata and structure but not the actual credential values for security.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"id": stringProp("Credential ID"),
			}, "id"),
		},
		{
			Name:        ToolCreateCredential,
			Description: "Create a new credential in n8n. Requires credential type and data matching the type's schema.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"name": stringProp("Display name for the credential"),
				"type": stringProp(`Credential type (e.g., "httpBasicAuth", "slackApi", "openAiApi")`),
				"data": {
					Type:        "object",
					Description: "Credential data matching the type schema. Structure varies by credential type.",
				},
				"nodesAccess": nodesAccessProp("Optional: Array of node types that can access this credential"),
			}, "name", "type", "data"),
		},
		{
			Name:        ToolUpdateCredential,
			Description: "Update an existing credential. Can update name, data, or node access permissions.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"id":   stringProp("Credential ID to update"),
				"name": stringProp("New display name for the credential"),
				"data": {
					Type:        "object",
					Description: "Updated credential data. Only provided fields will be updated.",
				},
				"nodesAccess": nodesAccessProp("Updated array of node types that can access this credential"),
			}, "id"),
		},
		{
			Name:        ToolDeleteCredential,
			Description: "Delete a credential by ID. This action cannot be undone.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"id": stringProp("Credential ID to delete"),
			}, "id"),
		},
		{
			Name:        ToolTestCredential,
			Description: "Test if a credential is working correctly. Returns success status and any error messages.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"id": stringProp("Credential ID to test"),
			}, "id"),
		},
	}
}

// CatalogTools returns the descriptors of the tools answered from the node
// catalog.
func CatalogTools() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        ToolGetCredentialTypeInfo,
			Description: "Get schema information for a specific credential type. Shows what fields are required and their types.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"type": stringProp(`Credential type name (e.g., "httpBasicAuth", "slackApi", "openAiApi")`),
			}, "type"),
		},
		{
			Name:        ToolListCredentialTypes,
			Description: "List all available credential types that can be created in n8n.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"filter": stringProp("Optional filter to search credential types by name"),
			}),
		},
		{
			Name:        ToolGetNodeRequirements,
			Description: "Get the credential requirements for a specific node type. Shows what credentials are needed and whether they're required or optional.",
			InputSchema: objectSchema(map[string]*jsonschema.Schema{
				"nodeType": stringProp(`Node type name (e.g., "n8n-nodes-base.slack", "n8n-nodes-base.httpRequest")`),
			}, "nodeType"),
		},
	}
}

// AllTools returns every tool descriptor, n8n tools first.
func AllTools() []*mcp.Tool {
	return append(CredentialTools(), CatalogTools()...)
}
