package application_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/credmcp/internal/application"
	"github.com/ericfisherdev/credmcp/internal/domain/apierr"
	"github.com/ericfisherdev/credmcp/internal/domain/model"
)

func newCredentialService(api *mockCredentialAPI) (*application.CredentialService, *bytes.Buffer) {
	var buf bytes.Buffer
	return application.NewCredentialService(api, newTestLogger(&buf)), &buf
}

func TestListCredentials_StripsData(t *testing.T) {
	api := &mockCredentialAPI{page: &model.CredentialPage{
		Data: []model.Credential{{
			ID:        "1",
			Name:      "Prod Slack",
			Type:      "slackApi",
			Data:      map[string]any{"accessToken": "xoxb-secret"},
			CreatedAt: "2026-01-01T00:00:00.000Z",
			UpdatedAt: "2026-01-02T00:00:00.000Z",
		}},
		NextCursor: ptr("next-page"),
	}}
	svc, _ := newCredentialService(api)

	got, err := svc.ListCredentials(context.Background(), application.ListCredentialsRequest{Limit: 1})

	require.NoError(t, err)
	require.Len(t, got.Credentials, 1)
	assert.Equal(t, application.CredentialSummary{
		ID:        "1",
		Name:      "Prod Slack",
		Type:      "slackApi",
		CreatedAt: "2026-01-01T00:00:00.000Z",
		UpdatedAt: "2026-01-02T00:00:00.000Z",
	}, got.Credentials[0])
	assert.Equal(t, "next-page", *got.NextCursor)
	assert.Equal(t, 1, got.Total)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "xoxb-secret")
}

func TestListCredentials_Limit(t *testing.T) {
	tests := []struct {
		name      string
		req       application.ListCredentialsRequest
		wantLimit int
	}{
		{name: "default when unset", req: application.ListCredentialsRequest{}, wantLimit: 100},
		{name: "explicit limit", req: application.ListCredentialsRequest{Limit: 10}, wantLimit: 10},
		{name: "negative falls back", req: application.ListCredentialsRequest{Limit: -5}, wantLimit: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockCredentialAPI{page: &model.CredentialPage{}}
			svc, _ := newCredentialService(api)

			_, err := svc.ListCredentials(context.Background(), tt.req)

			require.NoError(t, err)
			require.Len(t, api.listOpts, 1)
			assert.Equal(t, tt.wantLimit, api.listOpts[0].Limit)
		})
	}
}

func TestListCredentials_ForwardsCursor(t *testing.T) {
	api := &mockCredentialAPI{page: &model.CredentialPage{}}
	svc, _ := newCredentialService(api)

	got, err := svc.ListCredentials(context.Background(), application.ListCredentialsRequest{Cursor: "abc"})

	require.NoError(t, err)
	assert.Equal(t, "abc", api.listOpts[0].Cursor)
	assert.Empty(t, got.Credentials)
	assert.NotNil(t, got.Credentials)
	assert.Nil(t, got.NextCursor)
	assert.Equal(t, 0, got.Total)
}

func TestListCredentials_ErrorIsLoggedAndNormalized(t *testing.T) {
	api := &mockCredentialAPI{err: apierr.FromResponse(http.StatusUnauthorized, "bad key", nil, http.Header{})}
	svc, logs := newCredentialService(api)

	got, err := svc.ListCredentials(context.Background(), application.ListCredentialsRequest{})

	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrAuthentication)
	assert.Equal(t, 1, strings.Count(logs.String(), "error listing credentials"))
}

func TestGetCredential_ExposesKeysOnly(t *testing.T) {
	api := &mockCredentialAPI{credential: &model.Credential{
		ID:          "7",
		Name:        "Basic",
		Type:        "httpBasicAuth",
		Data:        map[string]any{"user": "admin", "password": "hunter2"},
		NodesAccess: []model.NodeAccess{{NodeType: "n8n-nodes-base.httpRequest"}},
		CreatedAt:   "c",
		UpdatedAt:   "u",
	}}
	svc, _ := newCredentialService(api)

	got, err := svc.GetCredential(context.Background(), "7")

	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, api.gotIDs)
	assert.Equal(t, []string{"password", "user"}, got.DataStructure)
	assert.Equal(t, "httpBasicAuth", got.Type)
	assert.Equal(t, []model.NodeAccess{{NodeType: "n8n-nodes-base.httpRequest"}}, got.NodesAccess)

	encoded, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "hunter2")
	assert.NotContains(t, string(encoded), "admin")
}

func TestGetCredential_NoData(t *testing.T) {
	api := &mockCredentialAPI{credential: &model.Credential{ID: "7", Name: "Basic", Type: "httpBasicAuth"}}
	svc, _ := newCredentialService(api)

	got, err := svc.GetCredential(context.Background(), "7")

	require.NoError(t, err)
	assert.NotNil(t, got.DataStructure)
	assert.Empty(t, got.DataStructure)
}

func TestGetCredential_NotFound(t *testing.T) {
	api := &mockCredentialAPI{err: apierr.FromResponse(http.StatusNotFound, "Not Found", nil, http.Header{})}
	svc, logs := newCredentialService(api)

	_, err := svc.GetCredential(context.Background(), "missing")

	assert.ErrorIs(t, err, apierr.ErrNotFound)
	assert.Contains(t, logs.String(), "error getting credential")
	assert.Contains(t, logs.String(), "id=missing")
}

func TestCreateCredential_Scenario(t *testing.T) {
	api := &mockCredentialAPI{credential: &model.Credential{
		ID: "1", Name: "X", Type: "httpBasicAuth", CreatedAt: "T",
	}}
	svc, _ := newCredentialService(api)

	got, err := svc.CreateCredential(context.Background(), application.CreateCredentialRequest{
		Name: "X",
		Type: "httpBasicAuth",
		Data: map[string]any{"user": "u", "password": "p"},
	})

	require.NoError(t, err)
	assert.Equal(t, &application.CreatedCredential{
		ID:        "1",
		Name:      "X",
		Type:      "httpBasicAuth",
		CreatedAt: "T",
		Message:   "Credential created successfully",
	}, got)

	require.Len(t, api.created, 1)
	assert.Equal(t, model.NewCredential{
		Name: "X",
		Type: "httpBasicAuth",
		Data: map[string]any{"user": "u", "password": "p"},
	}, api.created[0])
}

func TestCreateCredential_Error(t *testing.T) {
	api := &mockCredentialAPI{err: apierr.FromResponse(http.StatusBadRequest, "request.body.data is not valid", nil, http.Header{})}
	svc, logs := newCredentialService(api)

	_, err := svc.CreateCredential(context.Background(), application.CreateCredentialRequest{
		Name: "X",
		Type: "httpBasicAuth",
		Data: map[string]any{"password": "topsecret"},
	})

	assert.ErrorIs(t, err, apierr.ErrValidation)
	assert.Contains(t, logs.String(), "error creating credential")
	assert.NotContains(t, logs.String(), "topsecret")
}

func TestUpdateCredential_Forwarding(t *testing.T) {
	tests := []struct {
		name      string
		req       application.UpdateCredentialRequest
		wantPatch model.CredentialPatch
	}{
		{
			name:      "id only sends empty patch",
			req:       application.UpdateCredentialRequest{ID: "1"},
			wantPatch: model.CredentialPatch{},
		},
		{
			name:      "empty name is dropped",
			req:       application.UpdateCredentialRequest{ID: "1", Name: ""},
			wantPatch: model.CredentialPatch{},
		},
		{
			name:      "name is forwarded",
			req:       application.UpdateCredentialRequest{ID: "1", Name: "Renamed"},
			wantPatch: model.CredentialPatch{Name: ptr("Renamed")},
		},
		{
			name:      "empty data object is forwarded",
			req:       application.UpdateCredentialRequest{ID: "1", Data: map[string]any{}},
			wantPatch: model.CredentialPatch{Data: map[string]any{}},
		},
		{
			name: "all fields",
			req: application.UpdateCredentialRequest{
				ID:          "1",
				Name:        "Renamed",
				Data:        map[string]any{"apiKey": "sk-new"},
				NodesAccess: []model.NodeAccess{{NodeType: "n8n-nodes-base.openAi"}},
			},
			wantPatch: model.CredentialPatch{
				Name:        ptr("Renamed"),
				Data:        map[string]any{"apiKey": "sk-new"},
				NodesAccess: []model.NodeAccess{{NodeType: "n8n-nodes-base.openAi"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockCredentialAPI{credential: &model.Credential{ID: "1", Name: "N", Type: "openAiApi", UpdatedAt: "U"}}
			svc, _ := newCredentialService(api)

			got, err := svc.UpdateCredential(context.Background(), tt.req)

			require.NoError(t, err)
			require.Len(t, api.updates, 1, "update must be issued")
			assert.Equal(t, "1", api.updates[0].ID)
			assert.Equal(t, tt.wantPatch, api.updates[0].Patch)
			assert.Equal(t, &application.UpdatedCredential{
				ID:        "1",
				Name:      "N",
				Type:      "openAiApi",
				UpdatedAt: "U",
				Message:   "Credential updated successfully",
			}, got)
		})
	}
}

func TestUpdateCredential_Error(t *testing.T) {
	api := &mockCredentialAPI{err: errors.New("dial tcp: connection refused")}
	svc, logs := newCredentialService(api)

	_, err := svc.UpdateCredential(context.Background(), application.UpdateCredentialRequest{ID: "1"})

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierr.CodeRequest, apiErr.Code)
	assert.Contains(t, logs.String(), "error updating credential")
}

func TestDeleteCredential(t *testing.T) {
	api := &mockCredentialAPI{}
	svc, _ := newCredentialService(api)

	got, err := svc.DeleteCredential(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, api.deletedIDs)
	assert.Equal(t, &application.DeletedCredential{Success: true, Message: "Credential 42 deleted successfully"}, got)
}

func TestDeleteCredential_Error(t *testing.T) {
	api := &mockCredentialAPI{err: apierr.FromResponse(http.StatusNotFound, "", nil, http.Header{})}
	svc, logs := newCredentialService(api)

	got, err := svc.DeleteCredential(context.Background(), "42")

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apierr.ErrNotFound)
	assert.Contains(t, logs.String(), "error deleting credential")
}

func TestTestCredential_Messages(t *testing.T) {
	tests := []struct {
		name        string
		result      model.CredentialTestResult
		wantMessage string
	}{
		{name: "success default", result: model.CredentialTestResult{Success: true}, wantMessage: "Credential test successful"},
		{name: "failure default", result: model.CredentialTestResult{Success: false}, wantMessage: "Credential test failed"},
		{name: "server message wins", result: model.CredentialTestResult{Success: false, Message: "401 from Slack"}, wantMessage: "401 from Slack"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.result
			api := &mockCredentialAPI{testResult: &result}
			svc, _ := newCredentialService(api)

			before := time.Now().UTC().Truncate(time.Millisecond)
			got, err := svc.TestCredential(context.Background(), "9")
			after := time.Now().UTC()

			require.NoError(t, err)
			assert.Equal(t, "9", got.ID)
			assert.Equal(t, tt.result.Success, got.Success)
			assert.Equal(t, tt.wantMessage, got.Message)

			testedAt, err := time.Parse("2006-01-02T15:04:05.000Z07:00", got.TestedAt)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(got.TestedAt, "Z"))
			assert.False(t, testedAt.Before(before))
			assert.False(t, testedAt.After(after))
		})
	}
}

func TestTestCredential_Error(t *testing.T) {
	api := &mockCredentialAPI{err: apierr.FromResponse(http.StatusBadGateway, "", nil, http.Header{})}
	svc, logs := newCredentialService(api)

	_, err := svc.TestCredential(context.Background(), "9")

	assert.ErrorIs(t, err, apierr.ErrServer)
	assert.Contains(t, logs.String(), "error testing credential")
}

func TestHealthCheck(t *testing.T) {
	api := &mockCredentialAPI{health: &model.HealthStatus{Status: "ok"}}
	svc, _ := newCredentialService(api)

	got, err := svc.HealthCheck(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, 1, api.healthCalls)
}

func TestHealthCheck_Error(t *testing.T) {
	api := &mockCredentialAPI{err: apierr.NoResponse(errors.New("timeout"))}
	svc, _ := newCredentialService(api)

	_, err := svc.HealthCheck(context.Background())

	assert.ErrorIs(t, err, apierr.ErrNoResponse)
}
