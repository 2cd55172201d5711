package mockapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearpathlending/intake/internal/app/domain/deal"
	"github.com/clearpathlending/intake/internal/backend"
)

type bearer string

func (b bearer) Token(context.Context) (string, bool) { return string(b), b != "" }

func newClient(t *testing.T, url string, token string) *backend.Client {
	t.Helper()
	client, err := backend.NewClient(nil, url+"/api/v1", bearer(token), nil)
	require.NoError(t, err)
	return client
}

func createApplication(t *testing.T, url string) (backend.CreateResponse, *backend.Client) {
	t.Helper()
	amount := 320000.0
	resp, err := newClient(t, url, "").CreateBorrowerAndApplication(context.Background(), backend.CreateRequest{
		Email:       "jane@example.com",
		FirstName:   "Jane",
		LastName:    "Doe",
		Phone:       "5551234567",
		Password:    "hunter2hunter2",
		LoanPurpose: "Purchase",
		LoanAmount:  &amount,
	})
	require.NoError(t, err)
	return resp, newClient(t, url, resp.AccessToken)
}

func TestCreateThenGet(t *testing.T) {
	server := httptest.NewServer(NewServer(nil))
	defer server.Close()

	resp, client := createApplication(t, server.URL)
	require.NotEmpty(t, resp.Application.ID)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, string(deal.StatusDraft), resp.Application.Status)

	got, err := client.GetApplication(context.Background(), resp.Application.ID)
	require.NoError(t, err)
	require.Equal(t, resp.Application.ID, got.ID)
	require.Equal(t, "Jane", *got.Borrower.FirstName)
	require.Equal(t, 320000.0, got.LoanAmount)
}

func TestDuplicateEmailRejected(t *testing.T) {
	server := httptest.NewServer(NewServer(nil))
	defer server.Close()

	createApplication(t, server.URL)
	_, err := newClient(t, server.URL, "").CreateBorrowerAndApplication(context.Background(), backend.CreateRequest{
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.Error(t, err)
	require.Equal(t, "email already registered", err.Error())
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	server := httptest.NewServer(NewServer(nil))
	defer server.Close()

	resp, _ := createApplication(t, server.URL)

	_, err := newClient(t, server.URL, "").GetApplication(context.Background(), resp.Application.ID)
	require.True(t, backend.IsUnauthorized(err), "expected 401, got %v", err)

	_, err = newClient(t, server.URL, "forged-token").GetApplication(context.Background(), resp.Application.ID)
	require.True(t, backend.IsUnauthorized(err), "expected 401 for forged token, got %v", err)
}

func TestSaveMergesSparsePatch(t *testing.T) {
	server := httptest.NewServer(NewServer(nil))
	defer server.Close()

	resp, client := createApplication(t, server.URL)
	ctx := context.Background()

	married := "MARRIED"
	vet := true
	saved, err := client.SaveApplication(ctx, resp.Application.ID, backend.SavePatch{
		Borrower:     &backend.BorrowerPayload{MaritalStatus: &married, IsVeteran: &vet},
		NextFormStep: "co-borrower-question",
	})
	require.NoError(t, err)

	// Patched fields applied, untouched fields kept.
	require.Equal(t, "MARRIED", *saved.Borrower.MaritalStatus)
	require.Equal(t, "Jane", *saved.Borrower.FirstName)
	require.Equal(t, "co-borrower-question", saved.CurrentFormStep)
}

func TestSaveCreatesCoBorrowerOnFirstPatch(t *testing.T) {
	server := httptest.NewServer(NewServer(nil))
	defer server.Close()

	resp, client := createApplication(t, server.URL)
	ctx := context.Background()

	first := "John"
	saved, err := client.SaveApplication(ctx, resp.Application.ID, backend.SavePatch{
		CoBorrower: &backend.BorrowerPayload{FirstName: &first},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.CoBorrowerID)
	require.Equal(t, "John", *saved.CoBorrower.FirstName)
}

func TestProgressLifecycle(t *testing.T) {
	server := httptest.NewServer(NewServer(nil))
	defer server.Close()

	resp, client := createApplication(t, server.URL)
	ctx := context.Background()

	// Created incomplete.
	prog, err := client.GetProgress(ctx, resp.Application.ID)
	require.NoError(t, err)
	require.Equal(t, 0, prog.ProgressPercentage)
	require.Equal(t, "Section1a_PersonalInfo", prog.NextIncompleteSection)

	require.NoError(t, client.UpdateProgressSection(ctx, resp.Application.ID, "Section1a_PersonalInfo", true))

	prog, err = client.GetProgress(ctx, resp.Application.ID)
	require.NoError(t, err)
	require.Equal(t, 100, prog.ProgressPercentage)
	require.True(t, prog.Sections["Section1a_PersonalInfo"])
}

func TestMetricsEndpoint(t *testing.T) {
	server := httptest.NewServer(NewServer(nil))
	defer server.Close()

	// At least one instrumented request before scraping.
	createApplication(t, server.URL)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "intake_http_requests_total"),
		"scrape output missing request counter")
}

func TestUnknownApplication(t *testing.T) {
	server := httptest.NewServer(NewServer(nil))
	defer server.Close()

	_, client := createApplication(t, server.URL)
	_, err := client.GetApplication(context.Background(), "no-such-id")
	require.Error(t, err)
	require.Equal(t, "application not found", err.Error())
}
