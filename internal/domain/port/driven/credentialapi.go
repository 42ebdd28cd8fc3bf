// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

// CredentialAPI defines the driven port for the n8n credential endpoints.
// Implementations return an error on any transport or non-2xx failure.
type CredentialAPI interface {
	ListCredentials(ctx context.Context, opts model.ListOptions) (*model.CredentialPage, error)
	GetCredential(ctx context.Context, id string) (*model.Credential, error)
	CreateCredential(ctx context.Context, cred model.NewCredential) (*model.Credential, error)
	// UpdateCredential sends only the fields set on patch. An empty patch is
	// still sent.
	UpdateCredential(ctx context.Context, id string, patch model.CredentialPatch) (*model.Credential, error)
	DeleteCredential(ctx context.Context, id string) error
	// TestCredential asks n8n to run the provider's connectivity test.
	TestCredential(ctx context.Context, id string) (*model.CredentialTestResult, error)

	HealthCheck(ctx context.Context) (*model.HealthStatus, error)
}
