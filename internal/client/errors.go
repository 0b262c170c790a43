// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned when no refresh credential is left.
var ErrSessionExpired = errors.New("client: session expired, please log in")

// APIError is a non-2xx response in the server's error envelope.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an [APIError] with the given status.
func IsStatus(err error, status int) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.Status == status
}

func newAPIError(status int, payload []byte) *APIError {
	apiError := &APIError{Status: status}
	if err := json.Unmarshal(payload, apiError); err != nil || apiError.Message == "" {
		apiError.Message = http.StatusText(status)
	}
	return apiError
}
