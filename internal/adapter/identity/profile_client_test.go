package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPProfileProvider(t *testing.T) {
	_, err := NewHTTPProfileProvider("", "sk_test", time.Second)
	assert.Error(t, err)

	_, err = NewHTTPProfileProvider("https://api.example.com", "", time.Second)
	assert.Error(t, err)

	p, err := NewHTTPProfileProvider("https://api.example.com/", "sk_test", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", p.baseURL)
}

func TestHTTPProfileProvider_GetProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v1/users/user_2abc":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "user_2abc",
				"first_name": "Ada",
				"last_name": "Lovelace",
				"image_url": "https://img.example.com/ada.png",
				"email_addresses": [{"email_address": "ada@example.com"}, {"email_address": ""}],
				"public_metadata": {"role": "admin"}
			}`))
		case "/v1/users/user_broken":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	p, err := NewHTTPProfileProvider(server.URL, "sk_test", time.Second)
	require.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		profile, err := p.GetProfile(context.Background(), "user_2abc")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "Ada", profile.FirstName)
		assert.Equal(t, []string{"ada@example.com"}, profile.Emails)
		assert.Equal(t, "admin", profile.Role)
		assert.Equal(t, "https://img.example.com/ada.png", profile.AvatarURL)
	})

	t.Run("NotFound", func(t *testing.T) {
		profile, err := p.GetProfile(context.Background(), "user_missing")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		profile, err := p.GetProfile(context.Background(), "user_broken")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
		assert.Nil(t, profile)
	})
}
