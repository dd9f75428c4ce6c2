package web

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kwanzahq/vendordesk/internal/docstore/memory"
	apperrors "github.com/kwanzahq/vendordesk/internal/errors"
	"github.com/kwanzahq/vendordesk/internal/onboarding"
	"github.com/kwanzahq/vendordesk/internal/session"
	"github.com/kwanzahq/vendordesk/internal/session/sessiontest"
	"github.com/kwanzahq/vendordesk/internal/web/platform/sessioncookie"
	"github.com/kwanzahq/vendordesk/internal/web/routepath"
)

type fixture struct {
	handler *Handler
	routes  http.Handler
	svc     *sessiontest.Service
	store   *memory.Store
	codec   *sessioncookie.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	svc := &sessiontest.Service{}
	store := memory.New()
	codec := sessioncookie.NewCodec(key)
	handler := NewHandler(HandlerConfig{Service: svc, Codec: codec, Store: store})
	t.Cleanup(handler.Close)
	return &fixture{
		handler: handler,
		routes:  handler.Routes(),
		svc:     svc,
		store:   store,
		codec:   codec,
	}
}

func (f *fixture) signedInCookie(t *testing.T, identity session.Identity) *http.Cookie {
	t.Helper()
	token, err := f.codec.Issue(identity)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &http.Cookie{Name: sessioncookie.Name, Value: token}
}

func (f *fixture) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("GET", path, nil)
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.routes.ServeHTTP(w, r)
	return w
}

func (f *fixture) post(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.routes.ServeHTTP(w, r)
	return w
}

func verifiedIdentity() session.Identity {
	return session.Identity{ID: "u1", Email: "a@b.com", DisplayName: "Ann Lee", EmailVerified: true}
}

func TestDashboardRequiresSession(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, routepath.Dashboard)
	if w.Code != http.StatusFound || w.Header().Get("Location") != routepath.Login {
		t.Fatalf("expected redirect to login, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestRootRedirectsBySessionState(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, routepath.Root)
	if w.Header().Get("Location") != routepath.Login {
		t.Fatalf("expected login redirect, got %q", w.Header().Get("Location"))
	}

	cookie := f.signedInCookie(t, verifiedIdentity())
	w = f.get(t, routepath.Root, cookie)
	if w.Header().Get("Location") != routepath.Dashboard {
		t.Fatalf("expected dashboard redirect, got %q", w.Header().Get("Location"))
	}
}

func TestLoginSubmitEstablishesSession(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, routepath.Login, url.Values{"email": {"a@b.com"}, "password": {"pw"}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != routepath.Dashboard {
		t.Fatalf("expected dashboard redirect, got %d %q", w.Code, w.Header().Get("Location"))
	}

	var sessionCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessioncookie.Name {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected a session cookie")
	}
	identity, ok := f.codec.Verify(sessionCookie.Value)
	if !ok || identity.Email != "a@b.com" {
		t.Fatalf("unexpected session identity: %+v ok=%v", identity, ok)
	}
}

func TestConcurrentLoginsForDifferentUsersDoNotContend(t *testing.T) {
	f := newFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	f.svc.SignInFn = func(ctx context.Context, email, password string) (session.Identity, error) {
		if email == "a@b.com" {
			close(started)
			<-release
		}
		return session.Identity{ID: email, Email: email, EmailVerified: true}, nil
	}

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- f.post(t, routepath.Login, url.Values{"email": {"a@b.com"}, "password": {"pw"}})
	}()
	<-started

	// While user A's provider round trip is outstanding, user B signs in.
	w := f.post(t, routepath.Login, url.Values{"email": {"b@c.com"}, "password": {"pw"}})
	if w.Code != http.StatusFound || w.Header().Get("Location") != routepath.Dashboard {
		t.Fatalf("expected user B's sign-in to proceed, got %d %q", w.Code, w.Body.String())
	}

	close(release)
	if w := <-first; w.Code != http.StatusFound {
		t.Fatalf("expected user A's sign-in to complete, got %d", w.Code)
	}
}

func TestLoginSubmitRendersCodedError(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, routepath.Login, url.Values{"email": {"a@b.com"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "password is required") {
		t.Fatal("expected the form error on the page")
	}
	if !strings.Contains(w.Body.String(), `value="a@b.com"`) {
		t.Fatal("expected the email refilled")
	}
}

func TestSignupSendsVerificationEmail(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"name": {"Ann Lee"}, "email": {"a@b.com"}, "password": {"pw"}}
	w := f.post(t, routepath.Signup, form)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if len(f.svc.VerificationEmails) != 1 {
		t.Fatalf("expected one verification email, got %v", f.svc.VerificationEmails)
	}
}

func TestProviderStartSignsIn(t *testing.T) {
	f := newFixture(t)

	w := f.post(t, routepath.ProviderStart("google"), nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != routepath.Dashboard {
		t.Fatalf("expected dashboard redirect, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if len(f.svc.ProviderCalls) != 1 || f.svc.ProviderCalls[0] != "google" {
		t.Fatalf("unexpected provider calls: %v", f.svc.ProviderCalls)
	}
}

func TestProviderStartRejectsUnknownProvider(t *testing.T) {
	f := newFixture(t)
	f.svc.SignInWithProviderFn = func(ctx context.Context, providerID string) (session.Identity, error) {
		return session.Identity{}, apperrors.New(apperrors.CodeAuthUnknownProvider, "unknown provider \""+providerID+"\"")
	}

	w := f.post(t, routepath.ProviderStart("bogus"), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request for unknown provider, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "unknown provider") {
		t.Fatalf("expected provider error on the page, got %q", w.Body.String())
	}
}

func TestDashboardShowsVerifyGateForUnverifiedIdentity(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedInCookie(t, session.Identity{ID: "u1", Email: "a@b.com", DisplayName: "Ann Lee"})

	w := f.get(t, routepath.Dashboard, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "verify-gate") {
		t.Fatal("expected the verification gate")
	}
	if strings.Contains(w.Body.String(), `name="companyName"`) {
		t.Fatal("stepper must not render for an unverified identity")
	}
}

func TestDashboardShowsStepperForVerifiedIdentity(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedInCookie(t, verifiedIdentity())

	w := f.get(t, routepath.Dashboard, cookie)
	body := w.Body.String()
	if !strings.Contains(body, `name="companyName"`) {
		t.Fatal("expected the company section")
	}
	// The form pre-fills from the identity once the user section shows.
	if !strings.Contains(body, "Ann Lee") {
		t.Fatal("expected the user name in the header")
	}
}

func TestOnboardingNextAdvancesAndKeepsFields(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedInCookie(t, verifiedIdentity())

	form := url.Values{
		"companyName":         {"Acme Ltd"},
		"tin":                 {"123"},
		"brelaName":           {"ACME"},
		"businessLicenceYear": {"2024"},
		"location":            {"Dar"},
		"contact":             {"+255"},
		"companyEmail":        {"info@acme.co.tz"},
	}
	w := f.post(t, routepath.OnboardingNext, form, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}

	w = f.get(t, routepath.Dashboard, cookie)
	body := w.Body.String()
	if !strings.Contains(body, `name="firstName"`) {
		t.Fatal("expected the user section after advancing")
	}
	if !strings.Contains(body, `value="Ann"`) {
		t.Fatal("expected the first name pre-filled from the identity")
	}
}

func TestOnboardingNextWithMissingFieldsStaysAndNotifies(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedInCookie(t, verifiedIdentity())

	w := f.post(t, routepath.OnboardingNext, url.Values{}, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	var flashCookie *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "vd_flash" {
			flashCookie = cookie
		}
	}
	if flashCookie == nil || flashCookie.Value == "" {
		t.Fatal("expected a flash notice for missing fields")
	}

	w = f.get(t, routepath.Dashboard, cookie, flashCookie)
	body := w.Body.String()
	if !strings.Contains(body, "company name") {
		t.Fatal("expected the missing-field notice rendered")
	}
	if !strings.Contains(body, `name="companyName"`) {
		t.Fatal("expected to stay on the company section")
	}
}

func TestOnboardingFullFlowSubmits(t *testing.T) {
	f := newFixture(t)
	identity := verifiedIdentity()
	cookie := f.signedInCookie(t, identity)

	company := url.Values{
		"companyName": {"Acme Ltd"}, "tin": {"123"}, "brelaName": {"ACME"},
		"businessLicenceYear": {"2024"}, "location": {"Dar"}, "contact": {"+255"},
		"companyEmail": {"info@acme.co.tz"},
	}
	user := url.Values{
		"firstName": {"Ann"}, "phone": {"+255 711"}, "email": {"a@b.com"}, "role": {"supplier"},
	}
	payment := url.Values{"paymentMethod": {"cash"}}

	f.post(t, routepath.OnboardingNext, company, cookie)
	f.post(t, routepath.OnboardingNext, user, cookie)
	f.post(t, routepath.OnboardingNext, payment, cookie)
	w := f.post(t, routepath.OnboardingSubmit, url.Values{}, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}

	ctx := context.Background()
	for _, collection := range []string{
		onboarding.CollectionUsers, onboarding.CollectionCompanies,
		onboarding.CollectionPayments, onboarding.CollectionDocuments,
	} {
		if _, err := f.store.Read(ctx, collection, "u1"); err != nil {
			t.Fatalf("read %s/u1: %v", collection, err)
		}
	}

	w = f.get(t, routepath.Dashboard, cookie)
	if !strings.Contains(w.Body.String(), "awaiting-approval") {
		t.Fatal("expected the approval overlay")
	}

	// An external reviewer flips the approval flag on the profile document.
	doc, err := f.store.Read(ctx, onboarding.CollectionUsers, "u1")
	if err != nil {
		t.Fatalf("read profile: %v", err)
	}
	doc.Fields["pending"] = false
	doc.Fields["approved"] = true
	if err := f.store.Write(ctx, onboarding.CollectionUsers, "u1", doc.Fields); err != nil {
		t.Fatalf("approve profile: %v", err)
	}

	w = f.get(t, routepath.Dashboard, cookie)
	if !strings.Contains(w.Body.String(), `class="approved"`) {
		t.Fatal("expected the approved panel after the flip")
	}
	if strings.Contains(w.Body.String(), "awaiting-approval") {
		t.Fatal("overlay must clear once approved")
	}
}

func TestOnboardingActionsBlockedBehindVerifyGate(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedInCookie(t, session.Identity{ID: "u1", Email: "a@b.com"})

	w := f.post(t, routepath.OnboardingSubmit, url.Values{}, cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != routepath.Dashboard {
		t.Fatalf("expected dashboard redirect, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if f.store.Len(onboarding.CollectionUsers) != 0 {
		t.Fatal("expected no writes behind the verification gate")
	}
}

func TestOnboardingJump(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedInCookie(t, verifiedIdentity())

	f.post(t, routepath.OnboardingJump, url.Values{"step": {"2"}}, cookie)
	w := f.get(t, routepath.Dashboard, cookie)
	if !strings.Contains(w.Body.String(), `name="paymentMethod"`) {
		t.Fatal("expected the payment section after the jump")
	}
}

func TestVerifyRefreshReissuesCookie(t *testing.T) {
	f := newFixture(t)
	f.svc.ReloadFn = func(ctx context.Context, identity session.Identity) (session.Identity, error) {
		identity.EmailVerified = true
		return identity, nil
	}
	cookie := f.signedInCookie(t, session.Identity{ID: "u1", Email: "a@b.com"})

	w := f.post(t, routepath.VerifyRefresh, nil, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}

	var refreshed *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessioncookie.Name {
			refreshed = c
		}
	}
	if refreshed == nil {
		t.Fatal("expected a reissued session cookie")
	}
	identity, ok := f.codec.Verify(refreshed.Value)
	if !ok || !identity.EmailVerified {
		t.Fatalf("expected a verified identity, got %+v", identity)
	}
}

func TestVerifyResendDispatchesEmail(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedInCookie(t, session.Identity{ID: "u1", Email: "a@b.com"})

	w := f.post(t, routepath.VerifyResend, nil, cookie)
	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", w.Code)
	}
	if len(f.svc.VerificationEmails) != 1 {
		t.Fatalf("expected one verification email, got %v", f.svc.VerificationEmails)
	}
}

func TestLogoutClearsSessionAndRevokes(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedInCookie(t, verifiedIdentity())

	w := f.post(t, routepath.Logout, nil, cookie)
	if w.Code != http.StatusFound || w.Header().Get("Location") != routepath.Login {
		t.Fatalf("expected login redirect, got %d %q", w.Code, w.Header().Get("Location"))
	}
	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessioncookie.Name {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge != -1 {
		t.Fatal("expected the session cookie expired")
	}
	if len(f.svc.SignOutCalls) != 1 || f.svc.SignOutCalls[0] != "u1" {
		t.Fatalf("unexpected revocations: %v", f.svc.SignOutCalls)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.get(t, routepath.Health)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", w.Code, w.Body.String())
	}
}
