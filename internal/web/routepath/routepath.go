// Package routepath stores canonical HTTP paths for the web screens.
package routepath

const (
	Root   = "/"
	Login  = "/login"
	Signup = "/signup"
	Logout = "/logout"
	Health = "/up"

	AuthProviderPattern = "/auth/{provider}/start"
	VerifyResend        = "/verify/resend"
	VerifyRefresh       = "/verify/refresh"

	Dashboard        = "/dashboard"
	OnboardingNext   = "/dashboard/onboarding/next"
	OnboardingPrev   = "/dashboard/onboarding/prev"
	OnboardingJump   = "/dashboard/onboarding/jump"
	OnboardingSubmit = "/dashboard/onboarding/submit"
)

// ProviderStart returns the handshake start path for a provider id.
func ProviderStart(providerID string) string {
	return "/auth/" + providerID + "/start"
}
