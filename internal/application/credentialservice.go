// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/ericfisherdev/credmcp/internal/domain/apierr"
	"github.com/ericfisherdev/credmcp/internal/domain/model"
	"github.com/ericfisherdev/credmcp/internal/domain/port/driven"
)

// DefaultListLimit is the page size used when the caller does not pick one.
const DefaultListLimit = 100

// testedAtLayout is an ISO-8601 UTC timestamp with millisecond precision.
const testedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// ListCredentialsRequest selects one page of credentials.
type ListCredentialsRequest struct {
	Limit  int
	Cursor string
}

// CreateCredentialRequest carries a new credential. Data is forwarded as is;
// its shape is checked by n8n, not here.
type CreateCredentialRequest struct {
	Name        string
	Type        string
	Data        map[string]any
	NodesAccess []model.NodeAccess
}

// UpdateCredentialRequest carries a partial credential update. See
// CredentialService.UpdateCredential for which fields are forwarded.
type UpdateCredentialRequest struct {
	ID          string
	Name        string
	Data        map[string]any
	NodesAccess []model.NodeAccess
}

// CredentialSummary is credential metadata with the secret data removed.
type CredentialSummary struct {
	ID          string
	Name        string
	Type        string
	CreatedAt   string
	UpdatedAt   string
	NodesAccess []model.NodeAccess
}

// CredentialList is one sanitized page of credentials. Total counts the
// credentials on this page.
type CredentialList struct {
	Credentials []CredentialSummary
	NextCursor  *string
	Total       int
}

// CredentialDetail is a single credential's metadata plus the key names of
// its data payload.
type CredentialDetail struct {
	CredentialSummary
	DataStructure []string
}

// CreatedCredential acknowledges a created credential.
type CreatedCredential struct {
	ID        string
	Name      string
	Type      string
	CreatedAt string
	Message   string
}

// UpdatedCredential acknowledges an updated credential.
type UpdatedCredential struct {
	ID        string
	Name      string
	Type      string
	UpdatedAt string
	Message   string
}

// DeletedCredential acknowledges a deleted credential.
type DeletedCredential struct {
	Success bool
	Message string
}

// CredentialTestReport is the outcome of a credential connectivity test.
type CredentialTestReport struct {
	ID       string
	Success  bool
	Message  string
	TestedAt string
}

// CredentialService translates credential tool calls into CredentialAPI calls
// and strips secret material from every response. API failures are logged
// once and returned as *apierr.Error.
type CredentialService struct {
	api    driven.CredentialAPI
	logger *slog.Logger
	now    func() time.Time
}

// NewCredentialService creates a CredentialService backed by the given API client.
func NewCredentialService(api driven.CredentialAPI, logger *slog.Logger) *CredentialService {
	return &CredentialService{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// ListCredentials fetches one page of credentials. A non-positive limit
// falls back to DefaultListLimit.
func (s *CredentialService) ListCredentials(ctx context.Context, req ListCredentialsRequest) (*CredentialList, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	page, err := s.api.ListCredentials(ctx, model.ListOptions{Limit: limit, Cursor: req.Cursor})
	if err != nil {
		return nil, s.fail("error listing credentials", err)
	}

	creds := make([]CredentialSummary, 0, len(page.Data))
	for _, c := range page.Data {
		creds = append(creds, summarize(c))
	}

	return &CredentialList{
		Credentials: creds,
		NextCursor:  page.NextCursor,
		Total:       len(creds),
	}, nil
}

// GetCredential fetches one credential. Only the key names of its data are
// returned, never the values.
func (s *CredentialService) GetCredential(ctx context.Context, id string) (*CredentialDetail, error) {
	cred, err := s.api.GetCredential(ctx, id)
	if err != nil {
		return nil, s.fail("error getting credential", err, "id", id)
	}

	keys := make([]string, 0, len(cred.Data))
	for k := range cred.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &CredentialDetail{
		CredentialSummary: summarize(*cred),
		DataStructure:     keys,
	}, nil
}

// CreateCredential creates a credential.
func (s *CredentialService) CreateCredential(ctx context.Context, req CreateCredentialRequest) (*CreatedCredential, error) {
	cred, err := s.api.CreateCredential(ctx, model.NewCredential{
		Name:        req.Name,
		Type:        req.Type,
		Data:        req.Data,
		NodesAccess: req.NodesAccess,
	})
	if err != nil {
		return nil, s.fail("error creating credential", err, "type", req.Type)
	}

	return &CreatedCredential{
		ID:        cred.ID,
		Name:      cred.Name,
		Type:      cred.Type,
		CreatedAt: cred.CreatedAt,
		Message:   "Credential created successfully",
	}, nil
}

// UpdateCredential applies a partial update. Name is forwarded only when
// non-empty; Data and NodesAccess only when non-nil, so an empty object or
// array is still sent. Setting a field to an empty value is therefore not
// possible through this call. The update is issued even when nothing is
// forwarded.
func (s *CredentialService) UpdateCredential(ctx context.Context, req UpdateCredentialRequest) (*UpdatedCredential, error) {
	patch := buildPatch(req)

	cred, err := s.api.UpdateCredential(ctx, req.ID, patch)
	if err != nil {
		return nil, s.fail("error updating credential", err, "id", req.ID)
	}

	return &UpdatedCredential{
		ID:        cred.ID,
		Name:      cred.Name,
		Type:      cred.Type,
		UpdatedAt: cred.UpdatedAt,
		Message:   "Credential updated successfully",
	}, nil
}

// DeleteCredential deletes a credential.
func (s *CredentialService) DeleteCredential(ctx context.Context, id string) (*DeletedCredential, error) {
	if err := s.api.DeleteCredential(ctx, id); err != nil {
		return nil, s.fail("error deleting credential", err, "id", id)
	}

	return &DeletedCredential{
		Success: true,
		Message: "Credential " + id + " deleted successfully",
	}, nil
}

// TestCredential runs the provider connectivity test for a credential. When
// n8n gives no message, one is derived from the outcome.
func (s *CredentialService) TestCredential(ctx context.Context, id string) (*CredentialTestReport, error) {
	result, err := s.api.TestCredential(ctx, id)
	if err != nil {
		return nil, s.fail("error testing credential", err, "id", id)
	}

	msg := result.Message
	if msg == "" {
		msg = "Credential test failed"
		if result.Success {
			msg = "Credential test successful"
		}
	}

	return &CredentialTestReport{
		ID:       id,
		Success:  result.Success,
		Message:  msg,
		TestedAt: s.now().UTC().Format(testedAtLayout),
	}, nil
}

// HealthCheck reports whether the n8n instance is reachable.
func (s *CredentialService) HealthCheck(ctx context.Context) (*model.HealthStatus, error) {
	status, err := s.api.HealthCheck(ctx)
	if err != nil {
		return nil, apierr.Normalize(err)
	}
	return status, nil
}

// fail logs an API failure and returns it normalized.
func (s *CredentialService) fail(msg string, err error, attrs ...any) error {
	s.logger.Error(msg, append(attrs, "error", err)...)
	return apierr.Normalize(err)
}

func buildPatch(req UpdateCredentialRequest) model.CredentialPatch {
	var patch model.CredentialPatch
	if req.Name != "" {
		name := req.Name
		patch.Name = &name
	}
	if req.Data != nil {
		patch.Data = req.Data
	}
	if req.NodesAccess != nil {
		patch.NodesAccess = req.NodesAccess
	}
	return patch
}

func summarize(c model.Credential) CredentialSummary {
	return CredentialSummary{
		ID:          c.ID,
		Name:        c.Name,
		Type:        c.Type,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		NodesAccess: c.NodesAccess,
	}
}
