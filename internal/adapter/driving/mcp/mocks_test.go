package mcphandler_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

// --- Mock implementations ---

type mockCredentialAPI struct {
	page       *model.CredentialPage
	credential *model.Credential
	testResult *model.CredentialTestResult
	err        error

	listOpts []model.ListOptions
	created  []model.NewCredential
	patches  []model.CredentialPatch
	deleted  []string
}

func (m *mockCredentialAPI) ListCredentials(_ context.Context, opts model.ListOptions) (*model.CredentialPage, error) {
	m.listOpts = append(m.listOpts, opts)
	return m.page, m.err
}

func (m *mockCredentialAPI) GetCredential(_ context.Context, _ string) (*model.Credential, error) {
	return m.credential, m.err
}

func (m *mockCredentialAPI) CreateCredential(_ context.Context, cred model.NewCredential) (*model.Credential, error) {
	m.created = append(m.created, cred)
	return m.credential, m.err
}

func (m *mockCredentialAPI) UpdateCredential(_ context.Context, _ string, patch model.CredentialPatch) (*model.Credential, error) {
	m.patches = append(m.patches, patch)
	return m.credential, m.err
}

func (m *mockCredentialAPI) DeleteCredential(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockCredentialAPI) TestCredential(_ context.Context, _ string) (*model.CredentialTestResult, error) {
	return m.testResult, m.err
}

func (m *mockCredentialAPI) HealthCheck(_ context.Context) (*model.HealthStatus, error) {
	return &model.HealthStatus{Status: "ok"}, m.err
}

type mockNodeCatalog struct {
	typeInfo *model.CredentialTypeInfo
	types    []model.CredentialTypeSummary
	node     *model.NodeInfo
	err      error
}

func (m *mockNodeCatalog) GetCredentialTypeInfo(_ context.Context, _ string) (*model.CredentialTypeInfo, error) {
	return m.typeInfo, m.err
}

func (m *mockNodeCatalog) ListCredentialTypes(_ context.Context, _ string) ([]model.CredentialTypeSummary, error) {
	return m.types, m.err
}

func (m *mockNodeCatalog) GetNodeByType(_ context.Context, _ string) (*model.NodeInfo, error) {
	return m.node, m.err
}

func (m *mockNodeCatalog) Import(_ context.Context, _ *model.Catalog) error {
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
