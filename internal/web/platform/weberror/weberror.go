// Package weberror maps typed application failures to web responses.
package weberror

import (
	"net/http"

	apperrors "github.com/kwanzahq/vendordesk/internal/errors"
)

// Kind classifies application failures for consistent HTTP mapping.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindUnavailable  Kind = "unavailable"
	KindNotFound     Kind = "not_found"
)

// KindOf classifies a coded application error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	switch apperrors.GetCode(err) {
	case apperrors.CodeAuthEmailRequired,
		apperrors.CodeAuthPasswordRequired,
		apperrors.CodeAuthNameRequired,
		apperrors.CodeAuthUnknownProvider,
		apperrors.CodeOnboardingMissingFields,
		apperrors.CodeOnboardingInvalidStep:
		return KindInvalidInput
	case apperrors.CodeAuthInvalidCredentials,
		apperrors.CodeAuthNotAuthenticated,
		apperrors.CodeAuthEmailNotVerified:
		return KindUnauthorized
	case apperrors.CodeAuthEmailExists,
		apperrors.CodeAuthRequestInFlight,
		apperrors.CodeOnboardingSubmitInFlight,
		apperrors.CodeOnboardingAlreadySubmitted:
		return KindConflict
	case apperrors.CodeAuthProviderUnavailable,
		apperrors.CodeStoreUnavailable,
		apperrors.CodeOnboardingSubmitFailed:
		return KindUnavailable
	case apperrors.CodeNotFound:
		return KindNotFound
	}
	return KindUnknown
}

// HTTPStatus maps an error to an HTTP status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to the user for an error. Coded errors
// surface their message; anything else gets a generic line so internal
// details never reach the page.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if code := apperrors.GetCode(err); code != apperrors.CodeUnknown {
		return err.Error()
	}
	return "Something went wrong. Please try again."
}
