package devicegrant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// postForm issues a single form-encoded POST to endpoint and decodes the
// success payload into out. There are no retries at this layer: retry policy
// belongs to the polling loop, which alone knows the protocol semantics of a
// given failure.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &TransportError{Op: "creating request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: "sending request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "reading response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeErrorBody(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: "decoding response", Err: err}
	}
	return nil
}

// decodeErrorBody classifies a non-2xx response: a well-formed OAuth error
// body becomes a ProtocolError, anything else an OtherError naming the
// empty or unparseable body.
func decodeErrorBody(status int, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &OtherError{Status: status, Detail: "server returned empty error response"}
	}

	var e struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description,omitempty"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return &OtherError{Status: status, Detail: "server returned unparseable error response"}
	}
	return &ProtocolError{Code: e.Error, Description: e.ErrorDescription}
}
