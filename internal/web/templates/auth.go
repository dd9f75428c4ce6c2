package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/kwanzahq/vendordesk/internal/web/platform/i18n"
	"github.com/kwanzahq/vendordesk/internal/web/routepath"
)

// AuthView provides data for the login and signup pages.
type AuthView struct {
	Copy i18n.Copy
	// ErrorMessage is the visible form error, empty when none.
	ErrorMessage string
	// Email and Name re-fill the form after a failed submission.
	Email string
	Name  string
}

// LoginPage renders the email/password sign-in form with federated options.
func LoginPage(v AuthView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeAll(ctx, w,
			raw(`<main class="auth"><h1>%s</h1>`, templ.EscapeString(v.Copy.LoginHeading)),
			ErrorBanner(v.ErrorMessage),
			raw(`<form method="post" action="%s">`, routepath.Login),
			emailField(v.Copy.LoginEmail, v.Email),
			passwordField(v.Copy.LoginPassword),
			raw(`<button type="submit">%s</button></form>`, templ.EscapeString(v.Copy.LoginSubmit)),
			providerButtons(v.Copy),
			raw(`<a href="%s">%s</a></main>`, routepath.Signup, templ.EscapeString(v.Copy.LoginSignupPrompt)),
		)
	})
}

// SignupPage renders the account creation form.
func SignupPage(v AuthView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeAll(ctx, w,
			raw(`<main class="auth"><h1>%s</h1>`, templ.EscapeString(v.Copy.SignupHeading)),
			ErrorBanner(v.ErrorMessage),
			raw(`<form method="post" action="%s">`, routepath.Signup),
			raw(`<label>%s<input type="text" name="name" value="%s" required></label>`,
				templ.EscapeString(v.Copy.SignupName), templ.EscapeString(v.Name)),
			emailField(v.Copy.LoginEmail, v.Email),
			passwordField(v.Copy.LoginPassword),
			raw(`<button type="submit">%s</button></form>`, templ.EscapeString(v.Copy.SignupSubmit)),
			providerButtons(v.Copy),
			raw(`<a href="%s">%s</a></main>`, routepath.Login, templ.EscapeString(v.Copy.SignupLoginPrompt)),
		)
	})
}

func emailField(label, value string) templ.Component {
	return raw(`<label>%s<input type="email" name="email" value="%s" required></label>`,
		templ.EscapeString(label), templ.EscapeString(value))
}

func passwordField(label string) templ.Component {
	return raw(`<label>%s<input type="password" name="password" required></label>`,
		templ.EscapeString(label))
}

func providerButtons(copy i18n.Copy) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return writeAll(ctx, w,
			raw(`<div class="providers">`),
			raw(`<form method="post" action="%s"><button type="submit">%s</button></form>`,
				routepath.ProviderStart("google"), templ.EscapeString(copy.LoginWithGoogle)),
			raw(`<form method="post" action="%s"><button type="submit">%s</button></form>`,
				routepath.ProviderStart("apple"), templ.EscapeString(copy.LoginWithApple)),
			raw(`</div>`),
		)
	})
}
