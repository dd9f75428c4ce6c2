// Package i18n provides localized copy for the web screens.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const appDisplayName = "VendorDesk"

// supported lists the languages the screens ship copy for. English is the
// fallback; Swahili covers the primary deployment market.
var supported = []language.Tag{
	language.MustParse("en-US"),
	language.MustParse("sw"),
}

var matcher = language.NewMatcher(supported)

// Copy holds translatable copy for the auth and dashboard screens.
type Copy struct {
	LoginTitle         string
	LoginHeading       string
	LoginEmail         string
	LoginPassword      string
	LoginSubmit        string
	LoginWithGoogle    string
	LoginWithApple     string
	LoginSignupPrompt  string
	SignupTitle        string
	SignupHeading      string
	SignupName         string
	SignupSubmit       string
	SignupLoginPrompt  string
	VerifyHeading      string
	VerifyBody         string
	VerifyResend       string
	VerifyRefresh      string
	DashboardTitle     string
	OnboardingNext     string
	OnboardingPrevious string
	OnboardingSubmit   string
	AwaitingHeading    string
	AwaitingBody       string
	ApprovedHeading    string
	ApprovedBody       string
	SignOut            string
}

// MatchTag resolves the best supported language for an Accept-Language header.
func MatchTag(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, index, _ := matcher.Match(tags...)
	return supported[index]
}

// For returns localized copy for the provided language tag.
func For(tag language.Tag) Copy {
	loc := message.NewPrinter(tag)

	return Copy{
		LoginTitle:         withProductSuffix(localize(loc, "title.login", "Sign In")),
		LoginHeading:       localize(loc, "login.heading", "Sign in to %s", appDisplayName),
		LoginEmail:         localize(loc, "login.email", "Email"),
		LoginPassword:      localize(loc, "login.password", "Password"),
		LoginSubmit:        localize(loc, "login.submit", "Sign in"),
		LoginWithGoogle:    localize(loc, "login.with_google", "Continue with Google"),
		LoginWithApple:     localize(loc, "login.with_apple", "Continue with Apple"),
		LoginSignupPrompt:  localize(loc, "login.signup_prompt", "No account yet? Create one"),
		SignupTitle:        withProductSuffix(localize(loc, "title.signup", "Create Account")),
		SignupHeading:      localize(loc, "signup.heading", "Create your %s account", appDisplayName),
		SignupName:         localize(loc, "signup.name", "Full name"),
		SignupSubmit:       localize(loc, "signup.submit", "Create account"),
		SignupLoginPrompt:  localize(loc, "signup.login_prompt", "Already registered? Sign in"),
		VerifyHeading:      localize(loc, "verify.heading", "Verify your email"),
		VerifyBody:         localize(loc, "verify.body", "We sent a verification link to your email address. Open it, then refresh below."),
		VerifyResend:       localize(loc, "verify.resend", "Resend email"),
		VerifyRefresh:      localize(loc, "verify.refresh", "I verified, refresh"),
		DashboardTitle:     withProductSuffix(localize(loc, "title.dashboard", "Dashboard")),
		OnboardingNext:     localize(loc, "onboarding.next", "Next"),
		OnboardingPrevious: localize(loc, "onboarding.previous", "Back"),
		OnboardingSubmit:   localize(loc, "onboarding.submit", "Submit registration"),
		AwaitingHeading:    localize(loc, "awaiting.heading", "Registration submitted"),
		AwaitingBody:       localize(loc, "awaiting.body", "Your registration is waiting for approval. You will be moved on automatically once it is reviewed."),
		ApprovedHeading:    localize(loc, "approved.heading", "Registration approved"),
		ApprovedBody:       localize(loc, "approved.body", "Your account has been approved. Welcome aboard."),
		SignOut:            localize(loc, "signout", "Sign out"),
	}
}

func withProductSuffix(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return appDisplayName
	}
	return fmt.Sprintf("%s | %s", trimmed, appDisplayName)
}

func localize(loc *message.Printer, key string, fallback string, args ...any) string {
	if loc != nil {
		value := strings.TrimSpace(loc.Sprintf(key, args...))
		if value != "" && value != key {
			return value
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(fallback, args...)
	}
	return fallback
}
