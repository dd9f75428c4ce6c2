package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/kwanzahq/vendordesk/internal/onboarding"
	"github.com/kwanzahq/vendordesk/internal/web/platform/flash"
	"github.com/kwanzahq/vendordesk/internal/web/platform/i18n"
	"github.com/kwanzahq/vendordesk/internal/web/routepath"
)

// DashboardView provides data for the protected dashboard page.
type DashboardView struct {
	Copy i18n.Copy
	// UserName and Initials feed the header avatar.
	UserName string
	Initials string
	// Notice is the pending one-time message, nil when none.
	Notice *flash.Notice
	// Stepper is nil while the verification gate is showing.
	Stepper *StepperView
}

// StepperView provides data for the onboarding stepper.
type StepperView struct {
	Steps []onboarding.StepDef
	// StepIndex is the active section; ignored when Awaiting or Approved is
	// set.
	StepIndex int
	Awaiting  bool
	Approved  bool
	Form      onboarding.FormState
	// LicenceYears populates the company licence year select.
	LicenceYears []string
}

// DashboardPage renders the dashboard: header, then either the verification
// gate, the approval overlay, or the active stepper section.
func DashboardPage(v DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		components := []templ.Component{header(v)}
		if v.Notice != nil {
			components = append(components, Toast(*v.Notice))
		}
		if v.Stepper == nil {
			components = append(components, VerifyGate(v.Copy))
		} else if v.Stepper.Approved {
			components = append(components, ApprovedPanel(v.Copy))
		} else if v.Stepper.Awaiting {
			components = append(components, AwaitingOverlay(v.Copy))
		} else {
			components = append(components, Stepper(v.Copy, *v.Stepper))
		}
		components = append(components, raw(`</main>`))
		return writeAll(ctx, w, components...)
	})
}

// VerifyGate renders the email verification blocker.
func VerifyGate(copy i18n.Copy) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeAll(ctx, w,
			raw(`<section class="verify-gate"><h2>%s</h2><p>%s</p>`,
				templ.EscapeString(copy.VerifyHeading), templ.EscapeString(copy.VerifyBody)),
			raw(`<form method="post" action="%s"><button type="submit">%s</button></form>`,
				routepath.VerifyResend, templ.EscapeString(copy.VerifyResend)),
			raw(`<form method="post" action="%s"><button type="submit">%s</button></form></section>`,
				routepath.VerifyRefresh, templ.EscapeString(copy.VerifyRefresh)),
		)
	})
}

// ApprovedPanel renders the dashboard once the reviewer approved the
// submission.
func ApprovedPanel(copy i18n.Copy) templ.Component {
	return raw(`<section class="approved"><h2>%s</h2><p>%s</p></section>`,
		templ.EscapeString(copy.ApprovedHeading), templ.EscapeString(copy.ApprovedBody))
}

// AwaitingOverlay renders the blocking post-submission state.
func AwaitingOverlay(copy i18n.Copy) templ.Component {
	return raw(`<section class="awaiting-approval"><h2>%s</h2><p>%s</p></section>`,
		templ.EscapeString(copy.AwaitingHeading), templ.EscapeString(copy.AwaitingBody))
}

// Stepper renders the step indicator plus the active section. The section
// fields and the navigation buttons share one form, with formaction steering
// each button, so field edits ride along on every navigation post.
func Stepper(copy i18n.Copy, v StepperView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		components := []templ.Component{
			stepTabs(v),
			raw(`<form method="post" action="%s" class="section">`, routepath.OnboardingNext),
		}
		switch v.StepIndex {
		case 0:
			components = append(components, companyFields(v))
		case 1:
			components = append(components, userFields(v))
		case 2:
			components = append(components, paymentFields(v))
		case 3:
			components = append(components, documentsFields())
		}
		components = append(components, stepperControls(copy, v), raw(`</form>`))
		return writeAll(ctx, w, components...)
	})
}

func header(v DashboardView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeAll(ctx, w,
			raw(`<main class="dashboard"><header class="dashboard-header">`),
			raw(`<span class="avatar">%s</span><span class="user-name">%s</span>`,
				templ.EscapeString(v.Initials), templ.EscapeString(v.UserName)),
			raw(`<form method="post" action="%s"><button type="submit">%s</button></form></header>`,
				routepath.Logout, templ.EscapeString(v.Copy.SignOut)),
		)
	})
}

// stepTabs renders one jump form per section so the indicator doubles as
// navigation.
func stepTabs(v StepperView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeAll(ctx, w, raw(`<nav class="steps">`)); err != nil {
			return err
		}
		for index, def := range v.Steps {
			class := "step"
			if index == v.StepIndex {
				class = "step step-active"
			}
			err := writeAll(ctx, w,
				raw(`<form method="post" action="%s"><input type="hidden" name="step" value="%d">`,
					routepath.OnboardingJump, index),
				raw(`<button type="submit" class="%s"><strong>%s</strong><small>%s</small></button></form>`,
					class, templ.EscapeString(def.Title), templ.EscapeString(def.Description)),
			)
			if err != nil {
				return err
			}
		}
		return writeAll(ctx, w, raw(`</nav>`))
	})
}

func companyFields(v StepperView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		form := v.Form
		if err := writeAll(ctx, w,
			textInput("companyName", "Company name", form.CompanyName),
			textInput("tin", "TIN", form.TIN),
			textInput("description", "Description", form.Description),
			textInput("brelaName", "BRELA name", form.BrelaName),
			raw(`<label>Licence year<select name="businessLicenceYear">`),
		); err != nil {
			return err
		}
		for _, year := range v.LicenceYears {
			selected := ""
			if year == form.BusinessLicenceYear {
				selected = " selected"
			}
			if err := writeAll(ctx, w, raw(`<option value="%s"%s>%s</option>`,
				templ.EscapeString(year), selected, templ.EscapeString(year))); err != nil {
				return err
			}
		}
		return writeAll(ctx, w,
			raw(`</select></label>`),
			textInput("location", "Location", form.Location),
			textInput("contact", "Contact", form.Contact),
			textInput("companyEmail", "Company email", form.CompanyEmail),
		)
	})
}

func userFields(v StepperView) templ.Component {
	form := v.Form
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeAll(ctx, w,
			textInput("firstName", "First name", form.FirstName),
			textInput("phone", "Phone", form.Phone),
			textInput("email", "Email", form.Email),
			textInput("role", "Role", form.Role),
			textInput("birthday", "Birthday", form.Birthday),
		)
	})
}

func paymentFields(v StepperView) templ.Component {
	form := v.Form
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := writeAll(ctx, w, raw(`<fieldset class="payment-methods">`)); err != nil {
			return err
		}
		for _, method := range []onboarding.PaymentMethod{onboarding.PaymentCard, onboarding.PaymentBank, onboarding.PaymentCash} {
			checked := ""
			if method == form.PaymentMethod {
				checked = " checked"
			}
			if err := writeAll(ctx, w, raw(`<label><input type="radio" name="paymentMethod" value="%s"%s>%s</label>`,
				string(method), checked, string(method))); err != nil {
				return err
			}
		}
		components := []templ.Component{raw(`</fieldset>`)}
		switch form.PaymentMethod {
		case onboarding.PaymentCard:
			components = append(components,
				textInput("cardNumber", "Card number", form.CardNumber),
				textInput("expiry", "Expiry", form.Expiry),
				textInput("cvv", "CVV", form.CVV),
			)
		case onboarding.PaymentBank:
			components = append(components,
				textInput("bankName", "Bank name", form.BankName),
				textInput("accountNumber", "Account number", form.AccountNumber),
			)
		}
		return writeAll(ctx, w, components...)
	})
}

func documentsFields() templ.Component {
	return raw(`<p class="documents-placeholder">Document upload is coming soon.</p>`)
}

func stepperControls(copy i18n.Copy, v StepperView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		components := []templ.Component{raw(`<div class="controls">`)}
		if v.StepIndex > 0 {
			components = append(components,
				raw(`<button type="submit" formaction="%s">%s</button>`,
					routepath.OnboardingPrev, templ.EscapeString(copy.OnboardingPrevious)))
		}
		if v.StepIndex < len(v.Steps)-1 {
			components = append(components,
				raw(`<button type="submit">%s</button>`, templ.EscapeString(copy.OnboardingNext)))
		} else {
			components = append(components,
				raw(`<button type="submit" formaction="%s">%s</button>`,
					routepath.OnboardingSubmit, templ.EscapeString(copy.OnboardingSubmit)))
		}
		components = append(components, raw(`</div>`))
		return writeAll(ctx, w, components...)
	})
}

func textInput(name, label, value string) templ.Component {
	return raw(`<label>%s<input type="text" name="%s" value="%s"></label>`,
		templ.EscapeString(label), templ.EscapeString(name), templ.EscapeString(value))
}
