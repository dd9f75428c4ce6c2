package onboarding

import (
	"strconv"
	"time"

	"github.com/kwanzahq/vendordesk/internal/session"
)

// PaymentMethod selects which payment sub-fields are active. Exactly one
// method is active at a time; the other methods' sub-fields are ignored at
// validation and submission regardless of stale values.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentBank PaymentMethod = "bank"
	PaymentCash PaymentMethod = "cash"
)

// ValidPaymentMethod reports whether method is one of the known methods.
func ValidPaymentMethod(method PaymentMethod) bool {
	switch method {
	case PaymentCard, PaymentBank, PaymentCash:
		return true
	}
	return false
}

// FormState is the single in-memory record backing all onboarding sections.
// Sections are views over slices of this one record, so moving between steps
// never loses data. It lives only for the duration of the flow; nothing is
// persisted until submission.
type FormState struct {
	// Company section.
	CompanyName         string
	TIN                 string
	Description         string
	BrelaName           string
	BusinessLicenceYear string
	Location            string
	Contact             string
	CompanyEmail        string

	// User section. Email and FirstName pre-fill from the identity and stay
	// user-editable.
	FirstName string
	Phone     string
	Email     string
	Role      string
	Birthday  string

	// Payment section.
	PaymentMethod PaymentMethod
	CardNumber    string
	Expiry        string
	CVV           string
	BankName      string
	AccountNumber string

	// Documents section placeholder.
	DocumentsUploaded bool
}

// NewFormState builds a fresh form pre-filled from the identity.
func NewFormState(identity session.Identity) FormState {
	return FormState{
		Email:         identity.Email,
		FirstName:     identity.FirstName(),
		PaymentMethod: PaymentCard,
	}
}

// LicenceYears lists the selectable business licence years, newest first.
func LicenceYears(now func() time.Time) []string {
	if now == nil {
		now = time.Now
	}
	current := now().Year()
	years := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		years = append(years, strconv.Itoa(current-i))
	}
	return years
}
