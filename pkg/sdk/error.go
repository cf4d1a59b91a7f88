// ABOUTME: APIError carries the backend's status code and error message
// ABOUTME: Built from non-2xx RPC responses; body parse failures fall back to status text

package sdk

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method     string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Method, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d", e.Method, e.StatusCode)
}

func newAPIError(method string, resp *http.Response) *APIError {
	apiErr := &APIError{Method: method, StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			apiErr.Message = payload.Error
		} else {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}
