package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clearpathlending/intake/pkg/testutil"
)

func TestClient_SaveApplicationSendsSparsePatch(t *testing.T) {
	var gotAuth string
	var gotBody map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/urla/applications/42/save" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(Application{ID: "42", CurrentFormStep: "borrower-info-2"})
	}))
	defer server.Close()

	client, err := NewClient(server.Client(), server.URL+"/api/v1", testutil.StaticTokenSource("tok"), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	first := "Jane"
	app, err := client.SaveApplication(context.Background(), "42", SavePatch{
		Borrower:     &BorrowerPayload{FirstName: &first},
		NextFormStep: "borrower-info-2",
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if app.ID != "42" {
		t.Fatalf("unexpected application: %#v", app)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("missing bearer token, got %q", gotAuth)
	}
	if _, present := gotBody["coBorrower"]; present {
		t.Fatal("patch leaked an absent coBorrower key")
	}
	if _, present := gotBody["loan"]; present {
		t.Fatal("patch leaked an absent loan key")
	}
	if _, present := gotBody["borrower"]; !present {
		t.Fatal("patch lost the borrower key")
	}
}

func TestClient_ServerErrorMessageSurfacedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"phone number already registered"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.Client(), server.URL, nil, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.GetApplication(context.Background(), "1")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "phone number already registered" {
		t.Fatalf("server message not surfaced: %q", err.Error())
	}
}

func TestClient_GenericMessageWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, _ := NewClient(server.Client(), server.URL, nil, nil)
	_, err := client.GetApplication(context.Background(), "1")
	if err == nil || err.Error() != "server error 502" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, _ := NewClient(server.Client(), server.URL, nil, nil)
	_, err := client.GetApplication(context.Background(), "1")
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized classification, got %v", err)
	}

	if IsUnauthorized(nil) {
		t.Fatal("nil misclassified")
	}
}

func TestUserMessage_NoResponseReceived(t *testing.T) {
	client, _ := NewClient(&http.Client{}, "http://127.0.0.1:1", nil, nil)
	_, err := client.GetApplication(context.Background(), "1")
	if err == nil {
		t.Fatal("expected transport error")
	}
	msg := UserMessage(err)
	if msg == "" || IsUnauthorized(err) {
		t.Fatalf("unexpected classification: %q", msg)
	}
}
