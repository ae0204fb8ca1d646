// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error codes produced or relayed by the client.
//
// Application codes come from the server's {error_code, details} body and are
// passed through unmodified. Transport codes are synthesized by the client.
const (
	ErrCodeProjectNameTaken         = "PROJECT_NAME_TAKEN"
	ErrCodeOwnerAlreadyExists       = "OWNER_ALREADY_EXISTS"
	ErrCodeInvalidProjectName       = "INVALID_PROJECT_NAME"
	ErrCodeInvalidImageURL          = "INVALID_IMAGE_URL"
	ErrCodeImageScanFailed          = "IMAGE_SCAN_FAILED"
	ErrCodeOwnerCannotBeParticipant = "OWNER_CANNOT_BE_PARTICIPANT"
	ErrCodeGithubAccountNotLinked   = "GITHUB_ACCOUNT_NOT_LINKED"
	ErrCodeGithubRepoNotAccessible  = "GITHUB_REPO_NOT_ACCESSIBLE"
	ErrCodeGithubPackageNotPublic   = "GITHUB_PACKAGE_NOT_PUBLIC"
	ErrCodeUnauthorized             = "UNAUTHORIZED"
	ErrCodeDeleteFailed             = "DELETE_FAILED"
	ErrCodeNotFound                 = "NOT_FOUND"

	// ErrCodeClientError is reported when a request could not be built.
	ErrCodeClientError = "CLIENT_ERROR"
	// ErrCodeClientSerialization is reported when a payload could not be encoded.
	ErrCodeClientSerialization = "CLIENT_SERIALIZATION_ERROR"
	// ErrCodeNetworkError is reported when no response was received.
	ErrCodeNetworkError = "NETWORK_ERROR"
	// ErrCodeResponseParse is reported when a 2xx response body could not be decoded.
	ErrCodeResponseParse = "RESPONSE_PARSE_ERROR"

	httpErrorPrefix = "HTTP_ERROR_"
)

// APIError is the normalized shape of every failure returned by the client.
//
// The four failure families (no response, structured application error,
// unstructured HTTP failure, client-side encoding failure) all end up here so
// presentation code only has to localize ErrorCode.
type APIError struct {
	// ErrorCode is a machine-readable code (e.g. "PROJECT_NAME_TAKEN",
	// "HTTP_ERROR_502", "NETWORK_ERROR").
	ErrorCode string `json:"error_code"`

	// Details carries optional extra information, such as the scanner report
	// for IMAGE_SCAN_FAILED or the transport error for NETWORK_ERROR.
	Details string `json:"details,omitempty"`

	// Status is the HTTP status code, zero when no response was received.
	Status int `json:"-"`

	err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.ErrorCode, e.Details)
	}
	return e.ErrorCode
}

// Unwrap returns the underlying transport or decoding error, if any.
func (e *APIError) Unwrap() error {
	return e.err
}

// NewAPIError builds an APIError with the given code. Used for client-side
// validation failures that never reach the network.
func NewAPIError(code, details string) *APIError {
	return &APIError{ErrorCode: code, Details: details}
}

// HTTPErrorCode returns the synthesized code for an unstructured failure.
func HTTPErrorCode(status int) string {
	return httpErrorPrefix + strconv.Itoa(status)
}

// IsHTTPErrorCode reports whether code was synthesized from an HTTP status.
func IsHTTPErrorCode(code string) bool {
	return strings.HasPrefix(code, httpErrorPrefix)
}

// AsAPIError normalizes any error into an *APIError. Errors that are not
// already API errors become CLIENT_ERROR.
func AsAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{ErrorCode: ErrCodeClientError, Details: err.Error(), err: err}
}

// ErrorCode returns the code of err, or "" for nil.
func ErrorCode(err error) string {
	if apiErr := AsAPIError(err); apiErr != nil {
		return apiErr.ErrorCode
	}
	return ""
}

// IsStatus reports whether err is an APIError for the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
