package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"votist/internal/domain"

	"golang.org/x/oauth2"
)

// userPayload is the provider's user object, reduced to what we keep.
type userPayload struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ImageURL       string `json:"image_url"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PublicMetadata struct {
		Role string `json:"role"`
	} `json:"public_metadata"`
}

func (p userPayload) toProfile() *domain.Profile {
	emails := make([]string, 0, len(p.EmailAddresses))
	for _, e := range p.EmailAddresses {
		if e.EmailAddress != "" {
			emails = append(emails, e.EmailAddress)
		}
	}
	return &domain.Profile{
		Subject:   p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		AvatarURL: p.ImageURL,
		Emails:    emails,
		Role:      p.PublicMetadata.Role,
	}
}

// HTTPProfileProvider reads user records from the identity provider's
// backend API, authenticating with the secret key as a bearer token.
type HTTPProfileProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProfileProvider returns an error when baseURL or secretKey is empty.
func NewHTTPProfileProvider(baseURL, secretKey string, timeout time.Duration) (*HTTPProfileProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("identity API base URL cannot be empty")
	}
	if secretKey == "" {
		return nil, fmt.Errorf("identity API secret key cannot be empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: secretKey, TokenType: "Bearer"})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = timeout

	return &HTTPProfileProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

func (p *HTTPProfileProvider) GetProfile(ctx context.Context, subject string) (*domain.Profile, error) {
	endpoint := p.baseURL + "/v1/users/" + url.PathEscape(subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload userPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if payload.ID == "" {
		payload.ID = subject
	}
	return payload.toProfile(), nil
}
