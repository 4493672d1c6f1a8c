// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package transport

import (
	"encoding/json"
	"fmt"
)

// APIError is the body the charm store returns alongside a failing status
// code. It is only used to produce diagnostics.
type APIError struct {
	Message string `json:"Message"`
	Code    string `json:"Code"`
}

// Error implements the error interface.
func (a APIError) Error() string {
	if a.Code == "" {
		return a.Message
	}
	return fmt.Sprintf("%s (%s)", a.Message, a.Code)
}

// DecodeAPIError attempts to read an error envelope from a response body.
// It reports false when the body is not an envelope.
func DecodeAPIError(body []byte) (APIError, bool) {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return APIError{}, false
	}
	if apiErr.Message == "" && apiErr.Code == "" {
		return APIError{}, false
	}
	return apiErr, true
}
