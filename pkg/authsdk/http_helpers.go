package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// url builds a complete URL by appending the path and query to the base URL.
func (c *SDKClient) url(path string, query url.Values) string {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doJSON sends body (if non-nil) as JSON and decodes a 2xx response into
// target (if non-nil). bearer defaults to the API key, the way Supabase
// clients authenticate anonymous calls.
func (c *SDKClient) doJSON(
	ctx context.Context,
	method, path string,
	query url.Values,
	bearer string,
	body, target any,
) error {
	if c.closed() {
		return ErrClosed
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if bearer == "" {
		bearer = c.APIKey
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("X-Client-Info", clientInfo)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return decodeJSON(resp, target)
}

// decodeJSON decodes a JSON response into the target.
// Returns an *APIError if the response status is not 2xx.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := parseErrorResponse(resp, bodyBytes); err != nil {
		return err
	}

	if target == nil || len(bodyBytes) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
