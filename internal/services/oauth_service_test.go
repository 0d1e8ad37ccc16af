package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeGoogle(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub": "g-42", "email": "g@example.com", "email_verified": true, "name": "Grace",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleOAuthExchange(t *testing.T) {
	srv := newFakeGoogle(t)
	svc := NewGoogleOAuthService("cid", "csecret", "http://localhost/cb").(*googleOAuthService)
	svc.cfg.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	svc.userInfoURL = srv.URL + "/userinfo"

	profile, err := svc.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "g-42", profile.Subject)
	assert.Equal(t, "g@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)

	_, err = svc.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGoogleOAuthAuthCodeURL(t *testing.T) {
	svc := NewGoogleOAuthService("cid", "csecret", "http://localhost/cb")
	assert.Equal(t, "google", svc.Provider())

	u, err := url.Parse(svc.AuthCodeURL("state-xyz"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "state-xyz", q.Get("state"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "email")
}
