package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func tokenServer(t *testing.T, token string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"` + token + `","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetTokenAndSetAuthHeader(t *testing.T) {
	srv := tokenServer(t, "token123")

	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL})
	token, err := client.GetToken()
	if err != nil {
		t.Fatalf("GetToken returned error: %v", err)
	}
	if token != "token123" {
		t.Fatalf("unexpected token %s", token)
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if err := client.SetAuthHeader(req); err != nil {
		t.Fatalf("SetAuthHeader returned error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer token123" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
}

func TestGetTokenCachesValidToken(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL})
	if _, err := client.GetToken(); err != nil {
		t.Fatalf("GetToken returned error: %v", err)
	}
	if _, err := client.GetToken(); err != nil {
		t.Fatalf("GetToken returned error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 token request, got %d", calls)
	}
}

func TestForceRefresh(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL})
	if _, err := client.GetToken(); err != nil {
		t.Fatalf("GetToken returned error: %v", err)
	}
	if _, err := client.ForceRefresh(); err != nil {
		t.Fatalf("ForceRefresh returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 token requests, got %d", calls)
	}
}

func TestConfEnabled(t *testing.T) {
	if (Conf{}).Enabled() {
		t.Fatal("empty conf must not be enabled")
	}
	if !(Conf{AuthURL: "http://idp/token"}).Enabled() {
		t.Fatal("conf with auth_url must be enabled")
	}
}
