package main

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credmcp/internal/domain/apierr"
	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

// fakeAPI is an in-memory CredentialAPI.
type fakeAPI struct {
	creds     map[string]model.Credential
	nextID    int
	healthErr error
	createErr error
	testErr   error
	calls     []string
}

func newFakeAPI(existing ...model.Credential) *fakeAPI {
	f := &fakeAPI{creds: make(map[string]model.Credential)}
	for _, c := range existing {
		f.creds[c.ID] = c
	}
	return f
}

func (f *fakeAPI) ListCredentials(_ context.Context, opts model.ListOptions) (*model.CredentialPage, error) {
	f.calls = append(f.calls, "list")
	page := &model.CredentialPage{Data: []model.Credential{}}
	for _, c := range f.creds {
		if len(page.Data) == opts.Limit {
			break
		}
		page.Data = append(page.Data, c)
	}
	return page, nil
}

func (f *fakeAPI) GetCredential(_ context.Context, id string) (*model.Credential, error) {
	f.calls = append(f.calls, "get")
	c, ok := f.creds[id]
	if !ok {
		return nil, apierr.FromResponse(404, "Not Found", nil, nil)
	}
	return &c, nil
}

func (f *fakeAPI) CreateCredential(_ context.Context, cred model.NewCredential) (*model.Credential, error) {
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := model.Credential{ID: "new-" + strconv.Itoa(f.nextID), Name: cred.Name, Type: cred.Type, Data: cred.Data}
	f.creds[c.ID] = c
	return &c, nil
}

func (f *fakeAPI) UpdateCredential(_ context.Context, id string, patch model.CredentialPatch) (*model.Credential, error) {
	f.calls = append(f.calls, "update")
	c := f.creds[id]
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	f.creds[id] = c
	return &c, nil
}

func (f *fakeAPI) DeleteCredential(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete")
	delete(f.creds, id)
	return nil
}

func (f *fakeAPI) TestCredential(_ context.Context, _ string) (*model.CredentialTestResult, error) {
	f.calls = append(f.calls, "test")
	if f.testErr != nil {
		return nil, f.testErr
	}
	return &model.CredentialTestResult{Success: true}, nil
}

func (f *fakeAPI) HealthCheck(_ context.Context) (*model.HealthStatus, error) {
	f.calls = append(f.calls, "health")
	if f.healthErr != nil {
		return nil, f.healthErr
	}
	return &model.HealthStatus{Status: "ok"}, nil
}

func TestRun_AllSteps(t *testing.T) {
	api := newFakeAPI(
		model.Credential{ID: "1", Name: "Slack", Type: "slackApi"},
		model.Credential{ID: "2", Name: "Other Slack", Type: "slackApi"},
	)
	var out bytes.Buffer

	err := run(context.Background(), api, &out)

	require.NoError(t, err)
	assert.Equal(t, []string{"health", "list", "create", "get", "update", "test", "delete", "list"}, api.calls)
	assert.Len(t, api.creds, 2, "test credential must be deleted")

	text := out.String()
	assert.Contains(t, text, "Created credential: Test HTTP Basic Auth ")
	assert.Contains(t, text, "Updated credential name to: Updated Test HTTP Basic Auth ")
	assert.Contains(t, text, "Credential test result: SUCCESS")
	assert.Contains(t, text, "  - slackApi: 2 credential(s)")
	assert.True(t, strings.HasSuffix(text, "All credential tests completed successfully!\n"))
}

func TestRun_TestFailureIsWarning(t *testing.T) {
	api := newFakeAPI()
	api.testErr = apierr.FromResponse(404, "", nil, nil)
	var out bytes.Buffer

	err := run(context.Background(), api, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "WARN Credential test endpoint might not be available")
	assert.Contains(t, api.calls, "delete")
}

func TestRun_LifecycleFailureDoesNotAbort(t *testing.T) {
	api := newFakeAPI()
	api.createErr = errors.New("boom")
	var out bytes.Buffer

	err := run(context.Background(), api, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "FAIL Error during credential operations: create: boom")
	assert.Equal(t, []string{"health", "list", "create", "list"}, api.calls)
}

func TestRun_HealthFailureAborts(t *testing.T) {
	api := newFakeAPI()
	api.healthErr = apierr.NoResponse(errors.New("dial tcp: connection refused"))
	var out bytes.Buffer

	err := run(context.Background(), api, &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrNoResponse)
	assert.Equal(t, []string{"health"}, api.calls)
}
