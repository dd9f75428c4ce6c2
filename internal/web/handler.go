package web

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"github.com/kwanzahq/vendordesk/internal/authflow"
	"github.com/kwanzahq/vendordesk/internal/docstore"
	"github.com/kwanzahq/vendordesk/internal/onboarding"
	"github.com/kwanzahq/vendordesk/internal/session"
	"github.com/kwanzahq/vendordesk/internal/web/platform/flash"
	"github.com/kwanzahq/vendordesk/internal/web/platform/i18n"
	"github.com/kwanzahq/vendordesk/internal/web/platform/sessioncookie"
	"github.com/kwanzahq/vendordesk/internal/web/platform/weberror"
	"github.com/kwanzahq/vendordesk/internal/web/routepath"
	"github.com/kwanzahq/vendordesk/internal/web/templates"
)

// Handler serves the auth screens and the protected dashboard.
type Handler struct {
	svc      session.Service
	codec    *sessioncookie.Codec
	store    docstore.Store
	machines *machineHub
}

// HandlerConfig wires the Handler's collaborators.
type HandlerConfig struct {
	Service session.Service
	Codec   *sessioncookie.Codec
	Store   docstore.Store
	// Watch selects the approval-detection strategy for onboarding
	// machines. Defaults to live store observation; pass
	// onboarding.PollWatch when the store cannot see external writers.
	Watch onboarding.WatchFunc
}

// NewHandler builds the HTTP handler for the web server.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		svc:      cfg.Service,
		codec:    cfg.Codec,
		store:    cfg.Store,
		machines: newMachineHub(cfg.Store, cfg.Watch),
	}
}

// newFlow builds the auth orchestration for one form action. The flow's busy
// latch scopes double-submission prevention to that single action; unrelated
// users' requests never contend.
func (h *Handler) newFlow() *authflow.Flow {
	return authflow.New(authflow.Config{Service: h.svc})
}

// Routes returns the route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+routepath.Root, h.handleRoot)
	mux.HandleFunc("GET "+routepath.Login, h.handleLoginPage)
	mux.HandleFunc("POST "+routepath.Login, h.handleLoginSubmit)
	mux.HandleFunc("GET "+routepath.Signup, h.handleSignupPage)
	mux.HandleFunc("POST "+routepath.Signup, h.handleSignupSubmit)
	mux.HandleFunc("POST "+routepath.AuthProviderPattern, h.handleProviderStart)
	mux.HandleFunc("POST "+routepath.Logout, h.handleLogout)
	mux.HandleFunc("GET "+routepath.Dashboard, h.requireIdentity(h.handleDashboard))
	mux.HandleFunc("POST "+routepath.VerifyResend, h.requireIdentity(h.handleVerifyResend))
	mux.HandleFunc("POST "+routepath.VerifyRefresh, h.requireIdentity(h.handleVerifyRefresh))
	mux.HandleFunc("POST "+routepath.OnboardingNext, h.requireIdentity(h.handleOnboardingNext))
	mux.HandleFunc("POST "+routepath.OnboardingPrev, h.requireIdentity(h.handleOnboardingPrev))
	mux.HandleFunc("POST "+routepath.OnboardingJump, h.requireIdentity(h.handleOnboardingJump))
	mux.HandleFunc("POST "+routepath.OnboardingSubmit, h.requireIdentity(h.handleOnboardingSubmit))
	mux.HandleFunc("GET "+routepath.Health, h.handleHealth)
	return mux
}

// Close releases the onboarding machines.
func (h *Handler) Close() {
	h.machines.closeAll()
}

// identity resolves the signed-in identity from the session cookie.
func (h *Handler) identity(r *http.Request) (session.Identity, bool) {
	token, ok := sessioncookie.Read(r)
	if !ok {
		return session.Identity{}, false
	}
	return h.codec.Verify(token)
}

// requireIdentity is the route guard: unauthenticated requests are sent to
// the login screen, never shown protected content.
func (h *Handler) requireIdentity(next func(http.ResponseWriter, *http.Request, session.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := h.identity(r)
		if !ok {
			http.Redirect(w, r, routepath.Login, http.StatusFound)
			return
		}
		next(w, r, identity)
	}
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routepath.Root {
		http.NotFound(w, r)
		return
	}
	if _, ok := h.identity(r); ok {
		http.Redirect(w, r, routepath.Dashboard, http.StatusFound)
		return
	}
	http.Redirect(w, r, routepath.Login, http.StatusFound)
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}
	h.renderLogin(w, r, templates.AuthView{}, nil)
}

func (h *Handler) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	identity, err := h.newFlow().SignIn(r.Context(), email, password)
	if err != nil {
		h.renderLogin(w, r, templates.AuthView{Email: email}, err)
		return
	}
	h.establishSession(w, r, identity)
}

func (h *Handler) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if h.redirectAuthenticated(w, r) {
		return
	}
	h.renderSignup(w, r, templates.AuthView{}, nil)
}

func (h *Handler) handleSignupSubmit(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	identity, err := h.newFlow().SignUp(r.Context(), name, email, password)
	if err != nil {
		h.renderSignup(w, r, templates.AuthView{Name: name, Email: email}, err)
		return
	}
	flash.Write(w, r, flash.Success("Verification email sent"))
	h.establishSession(w, r, identity)
}

func (h *Handler) handleProviderStart(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("provider")

	identity, signedIn, err := h.newFlow().SignInWithProvider(r.Context(), providerID)
	if err != nil {
		h.renderLogin(w, r, templates.AuthView{}, err)
		return
	}
	if !signedIn {
		// The user dismissed the handshake; nothing to report.
		http.Redirect(w, r, routepath.Login, http.StatusFound)
		return
	}
	h.establishSession(w, r, identity)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(r)
	sessioncookie.Clear(w, r)
	if ok {
		h.machines.release(identity.ID)
		if err := h.newFlow().SignOut(r.Context(), identity.ID); err != nil {
			log.Printf("revoke session for %s: %v", identity.ID, err)
		}
	}
	http.Redirect(w, r, routepath.Login, http.StatusFound)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request, identity session.Identity) {
	copy := h.copyFor(r)
	view := templates.DashboardView{
		Copy:     copy,
		UserName: identity.DisplayName,
		Initials: identity.Initials(),
	}
	if notice, ok := flash.ReadAndClear(w, r); ok {
		view.Notice = &notice
	}

	// The verification gate blocks everything until the provider confirms
	// the address.
	if identity.EmailVerified {
		m, _ := h.machines.acquire(r.Context(), identity)
		view.Stepper = stepperView(m)
	}

	h.renderPage(w, r, view.Copy.DashboardTitle, templates.DashboardPage(view))
}

func (h *Handler) handleVerifyResend(w http.ResponseWriter, r *http.Request, identity session.Identity) {
	if err := h.svc.SendVerificationEmail(r.Context(), identity); err != nil {
		log.Printf("resend verification for %s: %v", identity.ID, err)
		flash.Write(w, r, flash.Error("Could not send the email. Try again."))
	} else {
		flash.Write(w, r, flash.Success("Verification email sent"))
	}
	http.Redirect(w, r, routepath.Dashboard, http.StatusFound)
}

// handleVerifyRefresh re-reads the identity from the provider and reissues
// the session cookie, picking up an externally flipped verified flag.
func (h *Handler) handleVerifyRefresh(w http.ResponseWriter, r *http.Request, identity session.Identity) {
	fresh, err := h.svc.Reload(r.Context(), identity)
	if err != nil {
		log.Printf("reload identity %s: %v", identity.ID, err)
		flash.Write(w, r, flash.Error("Could not refresh. Try again."))
		http.Redirect(w, r, routepath.Dashboard, http.StatusFound)
		return
	}
	if !h.writeSession(w, r, fresh) {
		return
	}
	if !fresh.EmailVerified {
		flash.Write(w, r, flash.Info("Still waiting for verification."))
	}
	http.Redirect(w, r, routepath.Dashboard, http.StatusFound)
}

func (h *Handler) handleOnboardingNext(w http.ResponseWriter, r *http.Request, identity session.Identity) {
	h.withMachine(w, r, identity, func(m *onboarding.Machine) {
		applyFormFields(m, r)
		m.Next()
	})
}

func (h *Handler) handleOnboardingPrev(w http.ResponseWriter, r *http.Request, identity session.Identity) {
	h.withMachine(w, r, identity, func(m *onboarding.Machine) {
		applyFormFields(m, r)
		m.Previous()
	})
}

func (h *Handler) handleOnboardingJump(w http.ResponseWriter, r *http.Request, identity session.Identity) {
	h.withMachine(w, r, identity, func(m *onboarding.Machine) {
		index, err := strconv.Atoi(strings.TrimSpace(r.FormValue("step")))
		if err != nil {
			return
		}
		m.Jump(index)
	})
}

func (h *Handler) handleOnboardingSubmit(w http.ResponseWriter, r *http.Request, identity session.Identity) {
	h.withMachine(w, r, identity, func(m *onboarding.Machine) {
		applyFormFields(m, r)
		m.Submit(r.Context())
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withMachine runs one stepper action, drains its notices into a flash
// cookie, and redirects back to the dashboard.
func (h *Handler) withMachine(w http.ResponseWriter, r *http.Request, identity session.Identity, action func(*onboarding.Machine)) {
	if !identity.EmailVerified {
		http.Redirect(w, r, routepath.Dashboard, http.StatusFound)
		return
	}
	m, buffer := h.machines.acquire(r.Context(), identity)
	action(m)
	if notices := buffer.drain(); len(notices) > 0 {
		flash.Write(w, r, flash.Info(strings.Join(notices, " ")))
	}
	http.Redirect(w, r, routepath.Dashboard, http.StatusFound)
}

// applyFormFields syncs posted section fields into the machine's form. Only
// fields present in the request are applied, so a section post never clears
// the other sections.
func applyFormFields(m *onboarding.Machine, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		return
	}
	m.UpdateForm(func(form *onboarding.FormState) {
		assign := func(key string, dst *string) {
			if values, ok := r.PostForm[key]; ok && len(values) > 0 {
				*dst = values[0]
			}
		}
		assign("companyName", &form.CompanyName)
		assign("tin", &form.TIN)
		assign("description", &form.Description)
		assign("brelaName", &form.BrelaName)
		assign("businessLicenceYear", &form.BusinessLicenceYear)
		assign("location", &form.Location)
		assign("contact", &form.Contact)
		assign("companyEmail", &form.CompanyEmail)
		assign("firstName", &form.FirstName)
		assign("phone", &form.Phone)
		assign("email", &form.Email)
		assign("role", &form.Role)
		assign("birthday", &form.Birthday)
		if values, ok := r.PostForm["paymentMethod"]; ok && len(values) > 0 {
			method := onboarding.PaymentMethod(values[0])
			if onboarding.ValidPaymentMethod(method) {
				form.PaymentMethod = method
			}
		}
		assign("cardNumber", &form.CardNumber)
		assign("expiry", &form.Expiry)
		assign("cvv", &form.CVV)
		assign("bankName", &form.BankName)
		assign("accountNumber", &form.AccountNumber)
	})
}

func stepperView(m *onboarding.Machine) *templates.StepperView {
	view := &templates.StepperView{
		Steps:        onboarding.Steps(),
		Form:         m.Form(),
		LicenceYears: onboarding.LicenceYears(nil),
	}
	step := m.Step()
	if step.AwaitingApproval() {
		if m.Approved() {
			view.Approved = true
		} else {
			view.Awaiting = true
		}
		return view
	}
	view.StepIndex, _ = step.Editing()
	return view
}

func (h *Handler) redirectAuthenticated(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := h.identity(r); ok {
		http.Redirect(w, r, routepath.Dashboard, http.StatusFound)
		return true
	}
	return false
}

func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, identity session.Identity) {
	if !h.writeSession(w, r, identity) {
		return
	}
	http.Redirect(w, r, routepath.Dashboard, http.StatusFound)
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request, identity session.Identity) bool {
	token, err := h.codec.Issue(identity)
	if err != nil {
		log.Printf("issue session token for %s: %v", identity.ID, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	sessioncookie.Write(w, r, token)
	return true
}

func (h *Handler) copyFor(r *http.Request) i18n.Copy {
	return i18n.For(h.langTag(r))
}

func (h *Handler) langTag(r *http.Request) language.Tag {
	return i18n.MatchTag(r.Header.Get("Accept-Language"))
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, view templates.AuthView, err error) {
	view.Copy = h.copyFor(r)
	view.ErrorMessage = weberror.Message(err)
	h.renderPageStatus(w, r, view.Copy.LoginTitle, weberror.HTTPStatus(err), templates.LoginPage(view))
}

func (h *Handler) renderSignup(w http.ResponseWriter, r *http.Request, view templates.AuthView, err error) {
	view.Copy = h.copyFor(r)
	view.ErrorMessage = weberror.Message(err)
	h.renderPageStatus(w, r, view.Copy.SignupTitle, weberror.HTTPStatus(err), templates.SignupPage(view))
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	h.renderPageStatus(w, r, title, http.StatusOK, body)
}

func (h *Handler) renderPageStatus(w http.ResponseWriter, r *http.Request, title string, status int, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := templates.Page(title, h.langTag(r).String(), body)
	if err := page.Render(r.Context(), w); err != nil {
		log.Printf("render %s: %v", r.URL.Path, err)
	}
}
