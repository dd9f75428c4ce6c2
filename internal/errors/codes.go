// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Auth errors
	CodeAuthEmailRequired       Code = "AUTH_EMAIL_REQUIRED"
	CodeAuthPasswordRequired    Code = "AUTH_PASSWORD_REQUIRED"
	CodeAuthNameRequired        Code = "AUTH_NAME_REQUIRED"
	CodeAuthEmailExists         Code = "AUTH_EMAIL_EXISTS"
	CodeAuthInvalidCredentials  Code = "AUTH_INVALID_CREDENTIALS"
	CodeAuthUnknownProvider     Code = "AUTH_UNKNOWN_PROVIDER"
	CodeAuthPopupBlocked        Code = "AUTH_POPUP_BLOCKED"
	CodeAuthPopupUnsupported    Code = "AUTH_POPUP_UNSUPPORTED"
	CodeAuthPopupCancelled      Code = "AUTH_POPUP_CANCELLED"
	CodeAuthPopupClosedByUser   Code = "AUTH_POPUP_CLOSED_BY_USER"
	CodeAuthRequestInFlight     Code = "AUTH_REQUEST_IN_FLIGHT"
	CodeAuthNotAuthenticated    Code = "AUTH_NOT_AUTHENTICATED"
	CodeAuthEmailNotVerified    Code = "AUTH_EMAIL_NOT_VERIFIED"
	CodeAuthProviderUnavailable Code = "AUTH_PROVIDER_UNAVAILABLE"

	// Onboarding errors
	CodeOnboardingMissingFields    Code = "ONBOARDING_MISSING_FIELDS"
	CodeOnboardingInvalidStep      Code = "ONBOARDING_INVALID_STEP"
	CodeOnboardingSubmitInFlight   Code = "ONBOARDING_SUBMIT_IN_FLIGHT"
	CodeOnboardingSubmitFailed     Code = "ONBOARDING_SUBMIT_FAILED"
	CodeOnboardingAlreadySubmitted Code = "ONBOARDING_ALREADY_SUBMITTED"

	// Storage errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)
