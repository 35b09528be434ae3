package membership

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"academy/internal/domain/identity"
)

// DefaultMemberstackURL is the Memberstack admin REST API.
const DefaultMemberstackURL = "https://admin.memberstack.com"

// MemberstackClient is a Client backed by the Memberstack admin API.
type MemberstackClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ Client = (*MemberstackClient)(nil)

// NewMemberstackClient creates a client. An empty baseURL uses DefaultMemberstackURL.
// PRE: apiKey is a Memberstack secret key
func NewMemberstackClient(baseURL, apiKey string, client *http.Client) *MemberstackClient {
	if baseURL == "" {
		baseURL = DefaultMemberstackURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &MemberstackClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

type memberstackMember struct {
	ID   string `json:"id"`
	Auth struct {
		Email string `json:"email"`
	} `json:"auth"`
	CustomFields    map[string]any `json:"customFields"`
	PlanConnections []struct {
		PlanID   string `json:"planId"`
		PlanName string `json:"planName"`
		Status   string `json:"status"`
	} `json:"planConnections"`
}

// VerifyToken checks a member JWT with Memberstack.
func (c *MemberstackClient) VerifyToken(ctx context.Context, token string) (string, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	status, err := c.do(ctx, http.MethodPost, "/members/verify-token", body, &out)
	if err != nil {
		if status == http.StatusUnauthorized || status == http.StatusBadRequest || status == http.StatusForbidden {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if out.Data.ID == "" {
		return "", ErrInvalidToken
	}
	return out.Data.ID, nil
}

// GetMember loads a member's profile and plan connections.
func (c *MemberstackClient) GetMember(ctx context.Context, id string) (identity.Member, error) {
	var out struct {
		Data memberstackMember `json:"data"`
	}
	status, err := c.do(ctx, http.MethodGet, "/members/"+url.PathEscape(id), nil, &out)
	if err != nil {
		if status == http.StatusNotFound {
			return identity.Member{}, ErrUnknownMember
		}
		return identity.Member{}, err
	}
	if out.Data.ID == "" {
		return identity.Member{}, ErrUnknownMember
	}
	return toMember(out.Data), nil
}

func (c *MemberstackClient) do(ctx context.Context, method, path string, body []byte, dst any) (int, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("memberstack request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("memberstack returned %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, dst); err != nil {
		return resp.StatusCode, fmt.Errorf("parse memberstack response: %w", err)
	}
	return resp.StatusCode, nil
}

func toMember(m memberstackMember) identity.Member {
	out := identity.Member{
		ID:    m.ID,
		Email: m.Auth.Email,
		Name:  displayName(m.CustomFields, m.Auth.Email),
	}
	for _, pc := range m.PlanConnections {
		out.Plans = append(out.Plans, identity.Plan{ID: pc.PlanID, Name: pc.PlanName, Status: pc.Status})
	}
	return out
}

// displayName prefers first/last name custom fields, then a single name field,
// then the local part of the email.
func displayName(fields map[string]any, email string) string {
	str := func(k string) string {
		v, _ := fields[k].(string)
		return strings.TrimSpace(v)
	}
	full := strings.TrimSpace(str("first-name") + " " + str("last-name"))
	if full != "" {
		return full
	}
	if n := str("name"); n != "" {
		return n
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
