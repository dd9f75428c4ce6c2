package onboarding

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kwanzahq/vendordesk/internal/docstore"
)

// Collections written at submission time, each holding one document per
// identity keyed by the identity id.
const (
	CollectionUsers     = "users"
	CollectionCompanies = "companies"
	CollectionPayments  = "payments"
	CollectionDocuments = "documents"
)

// Payloads projects the form into one document per target collection. The
// projection is pure and deterministic: equal forms produce equal payloads,
// which together with overwrite writes makes resubmission idempotent.
func Payloads(uid string, form FormState) map[string]map[string]any {
	return map[string]map[string]any{
		CollectionUsers:     userPayload(uid, form),
		CollectionCompanies: companyPayload(uid, form),
		CollectionPayments:  paymentPayload(uid, form),
		CollectionDocuments: documentsPayload(uid),
	}
}

// userPayload carries the personal fields plus the approval flags, which
// default to pending and are flipped later by an external reviewer.
func userPayload(uid string, form FormState) map[string]any {
	return map[string]any{
		"uid":       uid,
		"firstName": form.FirstName,
		"phone":     form.Phone,
		"email":     form.Email,
		"role":      form.Role,
		"birthday":  form.Birthday,
		"pending":   true,
		"approved":  false,
	}
}

func companyPayload(uid string, form FormState) map[string]any {
	return map[string]any{
		"uid":                 uid,
		"companyName":         form.CompanyName,
		"tin":                 form.TIN,
		"description":         form.Description,
		"brelaName":           form.BrelaName,
		"businessLicenceYear": form.BusinessLicenceYear,
		"location":            form.Location,
		"contact":             form.Contact,
		"companyEmail":        form.CompanyEmail,
	}
}

// paymentPayload includes only the active method's projection. Stale
// sub-fields of inactive methods never reach the store, and card numbers are
// reduced to their last four digits.
func paymentPayload(uid string, form FormState) map[string]any {
	payload := map[string]any{
		"uid":           uid,
		"paymentMethod": string(form.PaymentMethod),
	}
	switch form.PaymentMethod {
	case PaymentCard:
		payload["cardLast4"] = cardLast4(form.CardNumber)
	case PaymentBank:
		payload["bankName"] = form.BankName
		payload["accountNumber"] = form.AccountNumber
	case PaymentCash:
		// No sub-fields.
	}
	return payload
}

func documentsPayload(uid string) map[string]any {
	return map[string]any{
		"uid":      uid,
		"uploaded": false,
	}
}

func cardLast4(number string) string {
	digits := strings.TrimSpace(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// submitAll writes every collection payload concurrently and succeeds only
// when all writes succeed. The writes target disjoint collections, so no
// relative order is required, and each is an idempotent overwrite keyed by
// the identity id — a partial failure needs no rollback, only a retry.
func submitAll(ctx context.Context, store docstore.Store, uid string, form FormState) error {
	payloads := Payloads(uid, form)

	var wg sync.WaitGroup
	errs := make(chan error, len(payloads))
	for collection, fields := range payloads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Write(ctx, collection, uid, fields); err != nil {
				errs <- fmt.Errorf("write %s/%s: %w", collection, uid, err)
			}
		}()
	}
	wg.Wait()
	close(errs)

	return <-errs
}
