package backend

// Wire types for the loan-origination API. Shapes are backend-owned; these
// mirror the contract the intake core depends on.

// BorrowerPayload carries one applicant's fields. Pointer fields distinguish
// "absent from the patch" from zero values, which is what makes
// SaveApplication a sparse patch.
type BorrowerPayload struct {
	ID         string  `json:"id,omitempty"`
	FirstName  *string `json:"firstName,omitempty"`
	MiddleName *string `json:"middleName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Suffix     *string `json:"suffix,omitempty"`

	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	PhoneType *string `json:"phoneType,omitempty"`

	MaritalStatus *string `json:"maritalStatus,omitempty"`
	Citizenship   *string `json:"citizenship,omitempty"`
	IsVeteran     *bool   `json:"isVeteran,omitempty"`
	LiveTogether  *bool   `json:"liveTogether,omitempty"`

	CurrentAddress *string `json:"currentAddress,omitempty"`
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	State          *string `json:"state,omitempty"`
	ZipCode        *string `json:"zipCode,omitempty"`

	YearsAtAddress  *int `json:"yearsAtAddress,omitempty"`
	MonthsAtAddress *int `json:"monthsAtAddress,omitempty"`

	AcceptTerms      *bool `json:"acceptTerms,omitempty"`
	ConsentToContact *bool `json:"consentToContact,omitempty"`
}

// LoanPayload carries the loan figures for the loan step.
type LoanPayload struct {
	LoanAmount            *float64 `json:"loanAmount,omitempty"`
	PurchasePrice         *float64 `json:"purchasePrice,omitempty"`
	DownPayment           *float64 `json:"downPayment,omitempty"`
	PropertyAddress       *string  `json:"propertyAddress,omitempty"`
	OutstandingBalance    *float64 `json:"outstandingBalance,omitempty"`
	ApplyingForOtherLoans *bool    `json:"isApplyingForOtherLoans,omitempty"`
	DownPaymentPartlyGift *bool    `json:"isDownPaymentPartGift,omitempty"`
}

// SavePatch is the sparse body of a save call: only the keys present are
// intended to change. NextFormStep is the position hint mirrored to the
// server so a resumed session lands on the right screen.
type SavePatch struct {
	Borrower     *BorrowerPayload `json:"borrower,omitempty"`
	CoBorrower   *BorrowerPayload `json:"coBorrower,omitempty"`
	Loan         *LoanPayload     `json:"loan,omitempty"`
	NextFormStep string           `json:"nextFormStep,omitempty"`
}

// IsEmpty reports whether the patch carries nothing at all.
func (p SavePatch) IsEmpty() bool {
	return p.Borrower == nil && p.CoBorrower == nil && p.Loan == nil && p.NextFormStep == ""
}

// Application is the server record as returned by get/save calls.
type Application struct {
	ID              string           `json:"id"`
	LoanPurpose     string           `json:"loanPurpose"`
	LoanAmount      float64          `json:"loanAmount"`
	Status          string           `json:"status"`
	CurrentFormStep string           `json:"currentFormStep,omitempty"`
	Borrower        *BorrowerPayload `json:"borrower,omitempty"`
	CoBorrower      *BorrowerPayload `json:"coBorrower,omitempty"`
	BorrowerID      string           `json:"borrowerId,omitempty"`
	CoBorrowerID    string           `json:"coBorrowerId,omitempty"`
	CreatedDate     string           `json:"createdDate,omitempty"`
	LastUpdatedDate string           `json:"lastUpdatedDate,omitempty"`
}

// CreateRequest is the combined create-borrower-and-application call, the
// one unconditional write in the flow.
type CreateRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`

	MiddleName    string `json:"middleName,omitempty"`
	Suffix        string `json:"suffix,omitempty"`
	PhoneType     string `json:"phoneType,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`

	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`

	LoanPurpose string `json:"loanPurpose"`

	PurchasePrice *float64 `json:"purchasePrice,omitempty"`
	DownPayment   *float64 `json:"downPayment,omitempty"`
	LoanAmount    *float64 `json:"loanAmount,omitempty"`

	PropertyAddress    string   `json:"propertyAddress,omitempty"`
	OutstandingBalance *float64 `json:"outstandingBalance,omitempty"`
}

// User identifies the account created alongside the application.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserType  string `json:"userType"`
}

// CreateResponse carries the new application plus the issued token pair.
type CreateResponse struct {
	Application  Application `json:"application"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         User        `json:"user"`
}

// Progress summarizes server-known completion, used for display only.
type Progress struct {
	ProgressPercentage    int             `json:"progressPercentage"`
	NextIncompleteSection string          `json:"nextIncompleteSection,omitempty"`
	Sections              map[string]bool `json:"sections,omitempty"`
}
