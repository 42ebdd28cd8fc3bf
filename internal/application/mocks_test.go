package application_test

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

// --- Mock implementations ---

type updateCall struct {
	ID    string
	Patch model.CredentialPatch
}

type mockCredentialAPI struct {
	page       *model.CredentialPage
	credential *model.Credential
	testResult *model.CredentialTestResult
	health     *model.HealthStatus
	err        error

	listOpts    []model.ListOptions
	created     []model.NewCredential
	updates     []updateCall
	deletedIDs  []string
	testedIDs   []string
	gotIDs      []string
	healthCalls int
}

func (m *mockCredentialAPI) ListCredentials(_ context.Context, opts model.ListOptions) (*model.CredentialPage, error) {
	m.listOpts = append(m.listOpts, opts)
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func (m *mockCredentialAPI) GetCredential(_ context.Context, id string) (*model.Credential, error) {
	m.gotIDs = append(m.gotIDs, id)
	if m.err != nil {
		return nil, m.err
	}
	return m.credential, nil
}

func (m *mockCredentialAPI) CreateCredential(_ context.Context, cred model.NewCredential) (*model.Credential, error) {
	m.created = append(m.created, cred)
	if m.err != nil {
		return nil, m.err
	}
	return m.credential, nil
}

func (m *mockCredentialAPI) UpdateCredential(_ context.Context, id string, patch model.CredentialPatch) (*model.Credential, error) {
	m.updates = append(m.updates, updateCall{ID: id, Patch: patch})
	if m.err != nil {
		return nil, m.err
	}
	return m.credential, nil
}

func (m *mockCredentialAPI) DeleteCredential(_ context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return m.err
}

func (m *mockCredentialAPI) TestCredential(_ context.Context, id string) (*model.CredentialTestResult, error) {
	m.testedIDs = append(m.testedIDs, id)
	if m.err != nil {
		return nil, m.err
	}
	return m.testResult, nil
}

func (m *mockCredentialAPI) HealthCheck(_ context.Context) (*model.HealthStatus, error) {
	m.healthCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.health, nil
}

type mockNodeCatalog struct {
	typeInfo *model.CredentialTypeInfo
	types    []model.CredentialTypeSummary
	node     *model.NodeInfo
	err      error

	filters  []string
	imported []*model.Catalog
}

func (m *mockNodeCatalog) GetCredentialTypeInfo(_ context.Context, _ string) (*model.CredentialTypeInfo, error) {
	return m.typeInfo, m.err
}

func (m *mockNodeCatalog) ListCredentialTypes(_ context.Context, filter string) ([]model.CredentialTypeSummary, error) {
	m.filters = append(m.filters, filter)
	return m.types, m.err
}

func (m *mockNodeCatalog) GetNodeByType(_ context.Context, _ string) (*model.NodeInfo, error) {
	return m.node, m.err
}

func (m *mockNodeCatalog) Import(_ context.Context, catalog *model.Catalog) error {
	m.imported = append(m.imported, catalog)
	return m.err
}

// --- Test helpers ---

// newTestLogger returns a logger that writes text records into buf.
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func ptr[T any](v T) *T { return &v }
