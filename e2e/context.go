// Package e2e drives a running demandas server through its HTTP API.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TestContext carries one scenario's HTTP state.
type TestContext struct {
	BaseURL    string
	SigningKey string
	Issuer     string
	Audience   string

	client      *http.Client
	accessToken string
	status      int
	body        map[string]any
	remembered  map[string]string
}

// NewTestContext reads the target server from the environment.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    envOr("E2E_BASE_URL", "http://localhost:8080"),
		SigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Issuer:     envOr("JWT_ISSUER", "demandas"),
		Audience:   envOr("JWT_AUDIENCE", "demandas-api"),
		client:     &http.Client{Timeout: 10 * time.Second},
		remembered: map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.accessToken = ""
	tc.status = 0
	tc.body = nil
	tc.remembered = map[string]string{}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Authenticate mints an analyst token signed with the server's key.
func (tc *TestContext) Authenticate(name string) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"analyst_id": uuid.NewString(),
		"name":       name,
		"iss":        tc.Issuer,
		"aud":        tc.Audience,
		"iat":        now.Unix(),
		"exp":        now.Add(time.Hour).Unix(),
		"jti":        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tc.SigningKey))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	tc.accessToken = token
	return nil
}

func (tc *TestContext) GetAccessToken() string { return tc.accessToken }

func (tc *TestContext) ClearAccessToken() { tc.accessToken = "" }

func (tc *TestContext) Remember(key, value string) { tc.remembered[key] = value }

func (tc *TestContext) Recall(key string) string { return tc.remembered[key] }

func (tc *TestContext) POST(path string, body any) error {
	return tc.Do(http.MethodPost, path, body)
}

func (tc *TestContext) PATCH(path string, body any) error {
	return tc.Do(http.MethodPatch, path, body)
}

func (tc *TestContext) GET(path string) error {
	return tc.Do(http.MethodGet, path, nil)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.Do(http.MethodDelete, path, nil)
}

// Do sends a JSON request with the current token and keeps the decoded
// response for later assertions.
func (tc *TestContext) Do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.status = resp.StatusCode
	tc.body = nil
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &tc.body); err != nil {
			return fmt.Errorf("decode response of %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (tc *TestContext) GetStatus() int { return tc.status }

// GetResponseField walks a dotted path through the last response. Numeric
// segments index arrays.
func (tc *TestContext) GetResponseField(path string) (any, error) {
	var cur any = tc.body
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in response", path)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %q", part, path)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("field %q not found in response", path)
		}
	}
	return cur, nil
}
