package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultClientID identifies the seisview CLI to the authority.
// This is public and safe to commit; the device flow needs no secret.
// A different client registration can be set as client_id in the
// config file.
const DefaultClientID = "seisview-cli"

// Flow runs the OAuth 2.0 device authorization grant against an authority.
// The authority is the base URL of the token service, e.g. the demo
// server's /auth prefix or a real identity provider.
type Flow struct {
	clientID   string
	authority  string
	httpClient *http.Client
}

// NewFlow creates a device flow client for the given authority.
func NewFlow(clientID, authority string) *Flow {
	if clientID == "" {
		clientID = DefaultClientID
	}
	return &Flow{
		clientID:   clientID,
		authority:  strings.TrimRight(strings.TrimSpace(authority), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Token is an access token response from the authority.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// DeviceCodeResponse contains the response from requesting a device code.
type DeviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// RequestDeviceCode initiates the device authorization flow.
// The user must visit the VerificationURI and enter the UserCode.
func (f *Flow) RequestDeviceCode(ctx context.Context) (*DeviceCodeResponse, error) {
	data := url.Values{
		"client_id": {f.clientID},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", f.authority+"/device/code", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var result DeviceCodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.DeviceCode == "" {
		return nil, fmt.Errorf("authority returned no device code")
	}

	return &result, nil
}

// PollForToken polls the authority for the access token after user authorization.
// It respects the interval from the device code response.
// Returns the token when authorized, or an error if expired/denied.
func (f *Flow) PollForToken(ctx context.Context, deviceCode string, interval int) (*Token, error) {
	if interval < 1 {
		interval = 1
	}

	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			token, err := f.checkDeviceToken(ctx, deviceCode)
			if err != nil {
				// Check if it's a "still waiting" error
				if strings.Contains(err.Error(), "authorization_pending") {
					continue // Keep polling
				}
				if strings.Contains(err.Error(), "slow_down") {
					// Increase interval and continue
					ticker.Reset(time.Duration(interval+5) * time.Second)
					continue
				}
				return nil, err // Real error (expired, denied, etc.)
			}
			return token, nil
		}
	}
}

// checkDeviceToken attempts to exchange the device code for a token.
func (f *Flow) checkDeviceToken(ctx context.Context, deviceCode string) (*Token, error) {
	data := url.Values{
		"client_id":   {f.clientID},
		"device_code": {deviceCode},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
	}

	req, err := http.NewRequestWithContext(ctx, "POST", f.authority+"/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
		Error       string `json:"error"`
		ErrorDesc   string `json:"error_description"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Error != "" {
		return nil, fmt.Errorf("%s: %s", result.Error, result.ErrorDesc)
	}

	return &Token{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		Scope:       result.Scope,
	}, nil
}
