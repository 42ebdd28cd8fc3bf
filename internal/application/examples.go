package application

import "github.com/ericfisherdev/credmcp/internal/domain/model"

// genericExampleMessage is returned for credential types without a canned example.
const genericExampleMessage = "Credential structure varies by type. Check the n8n UI for required fields."

// genericCredentialDescription is returned for credential names without a canned description.
const genericCredentialDescription = "Authentication credentials for this service"

// nodeCredentialUsage explains how the generated node example is meant to be used.
const nodeCredentialUsage = "Add credentials to your node by setting the credentials property with the credential ID"

// CredentialExample returns an example data payload for a credential type.
// Each call returns a fresh map.
func CredentialExample(credType string) map[string]any {
	switch credType {
	case "httpBasicAuth":
		return map[string]any{"user": "myUsername", "password": "myPassword"}
	case "httpHeaderAuth":
		return map[string]any{"name": "Authorization", "value": "Bearer YOUR_API_TOKEN"}
	case "openAiApi":
		return map[string]any{"apiKey": "sk-..."}
	case "slackApi":
		return map[string]any{"accessToken": "xoxb-..."}
	case "googleSheetsOAuth2Api":
		// OAuth2 credentials are normally completed through the n8n UI.
		return map[string]any{"clientId": "YOUR_CLIENT_ID", "clientSecret": "YOUR_CLIENT_SECRET"}
	default:
		return map[string]any{"message": genericExampleMessage}
	}
}

// CredentialDescription returns a human description for a credential name.
func CredentialDescription(name string) string {
	switch name {
	case "httpBasicAuth":
		return "Basic HTTP authentication with username and password"
	case "httpHeaderAuth":
		return "HTTP header-based authentication (e.g., API key in header)"
	case "httpDigestAuth":
		return "HTTP digest authentication"
	case "httpQueryAuth":
		return "Authentication via query parameters"
	case "oauth1Api":
		return "OAuth 1.0a authentication"
	case "oauth2Api":
		return "OAuth 2.0 authentication"
	case "slackApi":
		return "Slack API token authentication"
	case "slackOAuth2Api":
		return "Slack OAuth 2.0 authentication"
	case "openAiApi":
		return "OpenAI API key authentication"
	case "googleSheetsOAuth2Api":
		return "Google Sheets OAuth 2.0 authentication"
	default:
		return genericCredentialDescription
	}
}

// CredentialRef is a placeholder reference to a stored credential inside a
// node configuration.
type CredentialRef struct {
	ID   string
	Name string
}

// NodeCredentialExample shows how a node references its credentials.
type NodeCredentialExample struct {
	NodeType    string
	Credentials map[string]CredentialRef
	Usage       string
}

// BuildNodeCredentialExample synthesizes a node configuration snippet with a
// placeholder reference for every declared credential.
func BuildNodeCredentialExample(nodeType string, creds []model.NodeCredential) NodeCredentialExample {
	refs := make(map[string]CredentialRef, len(creds))
	for _, c := range creds {
		refs[c.Name] = CredentialRef{
			ID:   "{credentialId}",
			Name: "My " + c.Name + " Credential",
		}
	}

	return NodeCredentialExample{
		NodeType:    nodeType,
		Credentials: refs,
		Usage:       nodeCredentialUsage,
	}
}
