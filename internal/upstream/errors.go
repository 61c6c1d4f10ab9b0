package upstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError carries the status and human-readable message of a failed
// backend call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream api: %s (status %d)", e.Message, e.Status)
}

// decodeAPIError extracts a message from an error response body. The
// backend reports either {"message": ...} or {"error": ...}; anything
// else falls back to the HTTP status text.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			apiErr.Message = payload.Message
		} else if payload.Error != "" {
			apiErr.Message = payload.Error
		}
	}
	return apiErr
}

// report is the single last-resort path every terminal request failure
// funnels through, so nothing rejects without at least a diagnostic
// trace.
func (c *Client) report(err error) error {
	c.log.Error().Err(err).Msg("upstream request failed")
	return err
}
