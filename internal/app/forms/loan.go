package forms

import (
	"encoding/json"
	"strings"

	"github.com/clearpathlending/intake/internal/app/domain/deal"
	"github.com/clearpathlending/intake/internal/app/domain/flow"
	"github.com/clearpathlending/intake/internal/backend"
)

// LoanDetails is the loan step. Purchase and refinance collect different
// figures; the purpose decides which half is validated and sent. Before an
// application exists the values live in a session-scoped draft and are folded
// into the create call.
type LoanDetails struct {
	Purpose deal.LoanPurpose

	// Purchase fields.
	PurchasePrice         float64
	DownPayment           float64
	LoanAmount            float64
	ApplyingForOtherLoans bool
	DownPaymentPartlyGift bool

	// Refinance fields.
	PropertyAddress    string
	OutstandingBalance float64
}

func (f *LoanDetails) Step() flow.Step { return flow.Loan }
func (f *LoanDetails) Section() string { return "" }

func (f *LoanDetails) Populate(app *backend.Application) {
	if app == nil {
		return
	}
	if app.LoanPurpose != "" {
		f.Purpose = deal.LoanPurpose(app.LoanPurpose)
	}
	if app.LoanAmount > 0 {
		f.LoanAmount = app.LoanAmount
	}
}

func (f *LoanDetails) Validate() map[string]string {
	errs := make(map[string]string)
	if !f.Purpose.Valid() {
		errs["loanPurpose"] = "Select a loan purpose"
		return errs
	}
	switch f.Purpose {
	case deal.PurposePurchase:
		if f.PurchasePrice <= 0 {
			errs["purchasePrice"] = "Purchase price must be greater than zero"
		}
		if f.DownPayment <= 0 {
			errs["downPayment"] = "Down payment must be greater than zero"
		}
		if f.LoanAmount <= 0 {
			errs["loanAmount"] = "Loan amount must be greater than zero"
		}
		if f.PurchasePrice > 0 && f.DownPayment >= f.PurchasePrice {
			errs["downPayment"] = "Down payment must be less than the purchase price"
		}
	case deal.PurposeRefinance:
		requireText(errs, "propertyAddress", f.PropertyAddress, "Property address is required")
		if f.OutstandingBalance <= 0 {
			errs["outstandingBalance"] = "Outstanding balance must be greater than zero"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *LoanDetails) Patch() backend.SavePatch {
	p := &backend.LoanPayload{}
	switch f.Purpose {
	case deal.PurposePurchase:
		p.PurchasePrice = ptr(f.PurchasePrice)
		p.DownPayment = ptr(f.DownPayment)
		p.LoanAmount = ptr(f.LoanAmount)
		p.ApplyingForOtherLoans = ptr(f.ApplyingForOtherLoans)
		p.DownPaymentPartlyGift = ptr(f.DownPaymentPartlyGift)
	case deal.PurposeRefinance:
		p.PropertyAddress = ptr(strings.TrimSpace(f.PropertyAddress))
		p.OutstandingBalance = ptr(f.OutstandingBalance)
	}
	return backend.SavePatch{Loan: p}
}

// FoldIntoCreate copies the drafted loan figures onto the create request.
func (f *LoanDetails) FoldIntoCreate(req *backend.CreateRequest) {
	req.LoanPurpose = string(f.Purpose)
	switch f.Purpose {
	case deal.PurposePurchase:
		req.PurchasePrice = ptr(f.PurchasePrice)
		req.DownPayment = ptr(f.DownPayment)
		req.LoanAmount = ptr(f.LoanAmount)
	case deal.PurposeRefinance:
		req.PropertyAddress = strings.TrimSpace(f.PropertyAddress)
		req.OutstandingBalance = ptr(f.OutstandingBalance)
	}
}

// DraftKey names the session-scoped draft slot for the loan step.
const DraftKey = "loan-details"

// EncodeDraft serializes the form for the draft store.
func (f *LoanDetails) EncodeDraft() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeDraft restores a form from a stored draft blob.
func DecodeDraft(blob []byte) (*LoanDetails, error) {
	var f LoanDetails
	if err := json.Unmarshal(blob, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
