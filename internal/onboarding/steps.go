package onboarding

import "strings"

// StepDef describes one section of the stepper.
type StepDef struct {
	Value       string
	Title       string
	Description string
}

// Steps returns the ordered sections of the onboarding flow.
func Steps() []StepDef {
	return []StepDef{
		{Value: "company", Title: "Company Details", Description: "Business info"},
		{Value: "user", Title: "User Details", Description: "Personal info"},
		{Value: "payment", Title: "Payment Info", Description: "Payment setup"},
		{Value: "documents", Title: "Documents", Description: "Upload documents"},
	}
}

// StepCount is the number of sections.
func StepCount() int { return len(Steps()) }

// MissingFields returns the labels of required fields that are empty for the
// given step. Validation is local and synchronous; it never contacts the
// document store. Payment sub-fields are required only for the active method.
func MissingFields(step int, form FormState) []string {
	var missing []string
	require := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, label)
		}
	}

	switch step {
	case 0: // company
		require("company name", form.CompanyName)
		require("TIN", form.TIN)
		require("BRELA name", form.BrelaName)
		require("licence year", form.BusinessLicenceYear)
		require("location", form.Location)
		require("contact", form.Contact)
		require("company email", form.CompanyEmail)
	case 1: // user
		require("first name", form.FirstName)
		require("phone", form.Phone)
		require("email", form.Email)
		require("role", form.Role)
	case 2: // payment
		if !ValidPaymentMethod(form.PaymentMethod) {
			missing = append(missing, "payment method")
			break
		}
		switch form.PaymentMethod {
		case PaymentCard:
			require("card number", form.CardNumber)
			require("expiry", form.Expiry)
			require("CVV", form.CVV)
		case PaymentBank:
			require("bank name", form.BankName)
			require("account number", form.AccountNumber)
		case PaymentCash:
			// Cash needs no sub-fields.
		}
	case 3: // documents
		// Upload is a placeholder; nothing is required yet.
	}
	return missing
}

// StepValid reports whether the step's required fields are all populated.
func StepValid(step int, form FormState) bool {
	return len(MissingFields(step, form)) == 0
}
