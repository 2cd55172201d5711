package forms

import (
	"testing"

	"github.com/clearpathlending/intake/internal/app/domain/borrower"
	"github.com/clearpathlending/intake/internal/app/domain/deal"
	"github.com/clearpathlending/intake/internal/backend"
)

func TestParsePhone(t *testing.T) {
	cases := map[string]string{
		"(555) 123-4567": "5551234567",
		"555.123.4567":   "5551234567",
		"+1 555 123 456": "1555123456",
		"":               "",
	}
	for in, want := range cases {
		if got := ParsePhone(in); got != want {
			t.Fatalf("ParsePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	if got := FormatPhone("5551234567"); got != "(555) 123-4567" {
		t.Fatalf("FormatPhone = %q", got)
	}
	// Not ten digits: returned digits-only, never guessed.
	if got := FormatPhone("123"); got != "123" {
		t.Fatalf("FormatPhone short = %q", got)
	}
}

func validContact() *BorrowerContact {
	return &BorrowerContact{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Phone:     "(555) 123-4567",
		PhoneType: borrower.PhoneMobile,
	}
}

func TestBorrowerContact_Validate(t *testing.T) {
	if errs := validContact().Validate(); errs != nil {
		t.Fatalf("valid form rejected: %v", errs)
	}

	f := validContact()
	f.Email = "not-an-email"
	if errs := f.Validate(); errs["email"] == "" {
		t.Fatalf("bad email accepted: %v", errs)
	}

	f = validContact()
	f.Phone = "555"
	if errs := f.Validate(); errs["phone"] == "" {
		t.Fatalf("short phone accepted: %v", errs)
	}

	f = validContact()
	f.RequireCredentials = true
	f.Password = "short"
	if errs := f.Validate(); errs["password"] == "" {
		t.Fatalf("weak password accepted: %v", errs)
	}

	f = validContact()
	f.RequireCredentials = true
	f.Password = "longenough"
	f.ConfirmPassword = "different"
	if errs := f.Validate(); errs["confirmPassword"] == "" {
		t.Fatalf("mismatched passwords accepted: %v", errs)
	}
}

func TestBorrowerContact_PatchCarriesOnlyBorrower(t *testing.T) {
	patch := validContact().Patch()
	if patch.Borrower == nil || patch.CoBorrower != nil || patch.Loan != nil {
		t.Fatalf("patch shape wrong: %#v", patch)
	}
	if *patch.Borrower.Phone != "5551234567" {
		t.Fatalf("phone not normalized: %q", *patch.Borrower.Phone)
	}
	if patch.Borrower.MiddleName != nil {
		t.Fatal("empty optional field sent")
	}
}

func TestBorrowerProfile_Validate(t *testing.T) {
	f := &BorrowerProfile{
		MaritalStatus:    borrower.Married,
		AddressText:      "123 Main St, Springfield, IL 62704",
		AcceptTerms:      true,
		ConsentToContact: true,
	}
	if errs := f.Validate(); errs != nil {
		t.Fatalf("valid profile rejected: %v", errs)
	}

	f.AcceptTerms = false
	if errs := f.Validate(); errs["acceptTerms"] == "" {
		t.Fatalf("missing terms consent accepted: %v", errs)
	}

	f.AcceptTerms = true
	f.MaritalStatus = "ENGAGED"
	if errs := f.Validate(); errs["maritalStatus"] == "" {
		t.Fatalf("unknown marital status accepted: %v", errs)
	}

	f.MaritalStatus = borrower.Married
	f.AddressText = "somewhere"
	if errs := f.Validate(); errs["address"] == "" {
		t.Fatalf("incomplete address accepted: %v", errs)
	}
}

func TestBorrowerProfile_PatchNormalizesAddress(t *testing.T) {
	f := &BorrowerProfile{
		MaritalStatus:    borrower.Unmarried,
		AddressText:      "123 Main St, Springfield, IL 62704",
		AcceptTerms:      true,
		ConsentToContact: true,
	}
	patch := f.Patch()
	b := patch.Borrower
	if b == nil {
		t.Fatal("no borrower payload")
	}
	if *b.Address != "123 Main St" || *b.City != "Springfield" || *b.State != "IL" || *b.ZipCode != "62704" {
		t.Fatalf("address not normalized: %#v", b)
	}
	// The combined string rides along with the components.
	if b.CurrentAddress == nil || *b.CurrentAddress != "123 Main St, Springfield, IL 62704" {
		t.Fatalf("combined address missing from patch: %#v", b.CurrentAddress)
	}
}

func TestCoBorrowerProfile_LiveTogetherOmitsAddress(t *testing.T) {
	f := &CoBorrowerProfile{
		MaritalStatus: borrower.Married,
		LiveTogether:  true,
	}
	if errs := f.Validate(); errs != nil {
		t.Fatalf("live-together profile rejected: %v", errs)
	}
	patch := f.Patch()
	if patch.CoBorrower.Address != nil || patch.CoBorrower.City != nil || patch.CoBorrower.CurrentAddress != nil {
		t.Fatalf("address components sent despite live-together: %#v", patch.CoBorrower)
	}
	if patch.CoBorrower.LiveTogether == nil || !*patch.CoBorrower.LiveTogether {
		t.Fatal("live-together flag missing from patch")
	}
}

func TestLoanDetails_ValidatePerPurpose(t *testing.T) {
	purchase := &LoanDetails{
		Purpose:       deal.PurposePurchase,
		PurchasePrice: 400000,
		DownPayment:   80000,
		LoanAmount:    320000,
	}
	if errs := purchase.Validate(); errs != nil {
		t.Fatalf("valid purchase rejected: %v", errs)
	}

	purchase.DownPayment = 500000
	if errs := purchase.Validate(); errs["downPayment"] == "" {
		t.Fatalf("down payment above price accepted: %v", errs)
	}

	refi := &LoanDetails{Purpose: deal.PurposeRefinance, OutstandingBalance: 250000}
	if errs := refi.Validate(); errs["propertyAddress"] == "" {
		t.Fatalf("refinance without property accepted: %v", errs)
	}
	refi.PropertyAddress = "9 Oak Ave, Denver, CO 80202"
	if errs := refi.Validate(); errs != nil {
		t.Fatalf("valid refinance rejected: %v", errs)
	}
}

func TestLoanDetails_PatchMatchesPurpose(t *testing.T) {
	refi := &LoanDetails{
		Purpose:            deal.PurposeRefinance,
		PropertyAddress:    "9 Oak Ave, Denver, CO 80202",
		OutstandingBalance: 250000,
	}
	patch := refi.Patch()
	if patch.Loan.PurchasePrice != nil {
		t.Fatal("purchase fields leaked into refinance patch")
	}
	if patch.Loan.OutstandingBalance == nil || *patch.Loan.OutstandingBalance != 250000 {
		t.Fatalf("refinance fields missing: %#v", patch.Loan)
	}
}

func TestLoanDetails_DraftRoundTrip(t *testing.T) {
	in := &LoanDetails{Purpose: deal.PurposePurchase, PurchasePrice: 400000, DownPayment: 80000, LoanAmount: 320000}
	blob, err := in.EncodeDraft()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeDraft(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("draft round trip: got %#v want %#v", out, in)
	}
}

func TestLoanDetails_FoldIntoCreate(t *testing.T) {
	f := &LoanDetails{Purpose: deal.PurposePurchase, PurchasePrice: 400000, DownPayment: 80000, LoanAmount: 320000}
	req := backend.CreateRequest{Email: "jane@example.com"}
	f.FoldIntoCreate(&req)
	if req.LoanPurpose != "Purchase" || req.LoanAmount == nil || *req.LoanAmount != 320000 {
		t.Fatalf("fold failed: %#v", req)
	}
	if req.Email != "jane@example.com" {
		t.Fatal("existing fields clobbered")
	}
}

func TestBorrowerContact_PopulateFromServer(t *testing.T) {
	app := &backend.Application{
		Borrower: &backend.BorrowerPayload{
			FirstName: ptr("Jane"),
			LastName:  ptr("Doe"),
			Email:     ptr("jane@example.com"),
			Phone:     ptr("5551234567"),
		},
	}
	var f BorrowerContact
	f.Populate(app)
	if f.FirstName != "Jane" || f.Phone != "(555) 123-4567" {
		t.Fatalf("populate: %#v", f)
	}
	// No co-borrower on the record: the sub-flow form stays zero.
	var co CoBorrowerContact
	co.Populate(app)
	if co.FirstName != "" {
		t.Fatalf("co-borrower populated from nothing: %#v", co)
	}
}
