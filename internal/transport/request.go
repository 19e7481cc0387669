package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/dogsync/pkg/constants"
	"github.com/agentstation/dogsync/pkg/errors"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// errorBody covers the error shapes of the APIs in use.
type errorBody struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Error       string `json:"error"`
}

// CheckResponse returns an *errors.APIError when resp is not a 2xx. The
// response body is consumed and closed in that case.
func CheckResponse(resp *http.Response, api string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := errors.NewAPIError(api, resp.StatusCode, errorMessage(resp, body))
	if resp.Request != nil && resp.Request.URL != nil {
		apiErr.Endpoint = resp.Request.URL.Redacted()
	}
	return apiErr
}

func errorMessage(resp *http.Response, body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Description != "":
			return eb.Description
		case eb.Message != "":
			return eb.Message
		case eb.Error != "":
			return eb.Error
		}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return msg
	}
	return resp.Status
}

// DecodeResponse decodes a JSON response into the target structure and
// closes the body.
func DecodeResponse(resp *http.Response, api string, target any) error {
	if err := CheckResponse(resp, api); err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.APIError{API: api, StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", api+" response", err)
	}
	return nil
}

// ReadBody returns the body of a 2xx response, up to constants.MaxImageBytes.
func ReadBody(resp *http.Response, api string) ([]byte, error) {
	if err := CheckResponse(resp, api); err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.MaxImageBytes+1))
	if err != nil {
		return nil, &errors.APIError{API: api, StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}
	if len(data) > constants.MaxImageBytes {
		return nil, errors.NewAPIError(api, resp.StatusCode, "response body exceeds size limit")
	}
	return data, nil
}
