package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/tazhibayda/jobboard/internal/domain"
)

// Client reads user profiles from the identity provider's backend API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient authenticates every request with the provider secret key as a bearer token.
func NewClient(baseURL, secretKey string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: secretKey, TokenType: "Bearer"})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = 5 * time.Second
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type emailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type userDTO struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []emailAddress `json:"email_addresses"`
}

func (u userDTO) email() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Profile fetches the profile of the user with the given subject.
func (c *Client) Profile(ctx context.Context, externalID string) (domain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/users/"+url.PathEscape(externalID), nil)
	if err != nil {
		return domain.Identity{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("identity: fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.Identity{}, fmt.Errorf("identity: fetch profile: status %d", resp.StatusCode)
	}

	var u userDTO
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return domain.Identity{}, fmt.Errorf("identity: decode profile: %w", err)
	}
	return domain.Identity{
		ExternalID: externalID,
		Email:      u.email(),
		Name:       strings.TrimSpace(u.FirstName + " " + u.LastName),
		ImageURL:   u.ImageURL,
	}, nil
}
