package forms

import (
	"strings"

	"github.com/clearpathlending/intake/internal/app/domain/borrower"
	"github.com/clearpathlending/intake/internal/app/domain/flow"
	"github.com/clearpathlending/intake/internal/backend"
)

// BorrowerContact is the first screen: who the borrower is and how to reach
// them. Credentials are collected here only when no account exists yet.
type BorrowerContact struct {
	FirstName  string
	MiddleName string
	LastName   string
	Suffix     string

	Email        string
	ConfirmEmail string
	Phone        string
	PhoneType    borrower.PhoneType

	// RequireCredentials is set when the session is unauthenticated: the
	// submit will create an account, so a password must be collected.
	RequireCredentials bool
	Password           string
	ConfirmPassword    string
}

func (f *BorrowerContact) Step() flow.Step { return flow.BorrowerInfo1 }
func (f *BorrowerContact) Section() string { return "" }

func (f *BorrowerContact) Populate(app *backend.Application) {
	b := borrowerOf(app, false)
	if b == nil {
		return
	}
	f.FirstName = deref(b.FirstName)
	f.MiddleName = deref(b.MiddleName)
	f.LastName = deref(b.LastName)
	f.Suffix = deref(b.Suffix)
	f.Email = deref(b.Email)
	f.ConfirmEmail = f.Email
	f.Phone = FormatPhone(deref(b.Phone))
	if b.PhoneType != nil {
		f.PhoneType = borrower.PhoneType(*b.PhoneType)
	}
}

func (f *BorrowerContact) Validate() map[string]string {
	errs := make(map[string]string)
	requireText(errs, "firstName", f.FirstName, "First name is required")
	requireText(errs, "lastName", f.LastName, "Last name is required")

	switch {
	case strings.TrimSpace(f.Email) == "":
		errs["email"] = "Email is required"
	case !validEmail(f.Email):
		errs["email"] = "Enter a valid email address"
	case f.ConfirmEmail != "" && !strings.EqualFold(strings.TrimSpace(f.Email), strings.TrimSpace(f.ConfirmEmail)):
		errs["confirmEmail"] = "Email addresses do not match"
	}

	if len(ParsePhone(f.Phone)) != 10 {
		errs["phone"] = "Enter a 10-digit phone number"
	}

	if f.RequireCredentials {
		if len(f.Password) < minPasswordLength {
			errs["password"] = "Password must be at least 8 characters"
		} else if f.Password != f.ConfirmPassword {
			errs["confirmPassword"] = "Passwords do not match"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *BorrowerContact) Patch() backend.SavePatch {
	return backend.SavePatch{Borrower: f.payload()}
}

func (f *BorrowerContact) payload() *backend.BorrowerPayload {
	p := &backend.BorrowerPayload{
		FirstName: ptr(strings.TrimSpace(f.FirstName)),
		LastName:  ptr(strings.TrimSpace(f.LastName)),
		Email:     ptr(strings.TrimSpace(f.Email)),
		Phone:     ptr(ParsePhone(f.Phone)),
	}
	if f.MiddleName != "" {
		p.MiddleName = ptr(strings.TrimSpace(f.MiddleName))
	}
	if f.Suffix != "" {
		p.Suffix = ptr(strings.TrimSpace(f.Suffix))
	}
	if f.PhoneType != "" {
		p.PhoneType = ptr(string(f.PhoneType))
	}
	return p
}

// CreateRequest folds the contact fields into the combined account-and-
// application create call.
func (f *BorrowerContact) CreateRequest() backend.CreateRequest {
	return backend.CreateRequest{
		FirstName:  strings.TrimSpace(f.FirstName),
		MiddleName: strings.TrimSpace(f.MiddleName),
		LastName:   strings.TrimSpace(f.LastName),
		Suffix:     strings.TrimSpace(f.Suffix),
		Email:      strings.TrimSpace(f.Email),
		Phone:      ParsePhone(f.Phone),
		PhoneType:  string(f.PhoneType),
		Password:   f.Password,
	}
}

// CoBorrowerContact mirrors BorrowerContact for the sub-flow. No credentials:
// the co-borrower does not get an account of their own at intake time.
type CoBorrowerContact struct {
	FirstName  string
	MiddleName string
	LastName   string
	Suffix     string

	Email     string
	Phone     string
	PhoneType borrower.PhoneType
}

func (f *CoBorrowerContact) Step() flow.Step { return flow.CoBorrowerInfo1 }
func (f *CoBorrowerContact) Section() string { return "" }

func (f *CoBorrowerContact) Populate(app *backend.Application) {
	b := borrowerOf(app, true)
	if b == nil {
		return
	}
	f.FirstName = deref(b.FirstName)
	f.MiddleName = deref(b.MiddleName)
	f.LastName = deref(b.LastName)
	f.Suffix = deref(b.Suffix)
	f.Email = deref(b.Email)
	f.Phone = FormatPhone(deref(b.Phone))
	if b.PhoneType != nil {
		f.PhoneType = borrower.PhoneType(*b.PhoneType)
	}
}

func (f *CoBorrowerContact) Validate() map[string]string {
	errs := make(map[string]string)
	requireText(errs, "firstName", f.FirstName, "First name is required")
	requireText(errs, "lastName", f.LastName, "Last name is required")
	switch {
	case strings.TrimSpace(f.Email) == "":
		errs["email"] = "Email is required"
	case !validEmail(f.Email):
		errs["email"] = "Enter a valid email address"
	}
	if len(ParsePhone(f.Phone)) != 10 {
		errs["phone"] = "Enter a 10-digit phone number"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *CoBorrowerContact) Patch() backend.SavePatch {
	p := &backend.BorrowerPayload{
		FirstName: ptr(strings.TrimSpace(f.FirstName)),
		LastName:  ptr(strings.TrimSpace(f.LastName)),
		Email:     ptr(strings.TrimSpace(f.Email)),
		Phone:     ptr(ParsePhone(f.Phone)),
	}
	if f.MiddleName != "" {
		p.MiddleName = ptr(strings.TrimSpace(f.MiddleName))
	}
	if f.Suffix != "" {
		p.Suffix = ptr(strings.TrimSpace(f.Suffix))
	}
	if f.PhoneType != "" {
		p.PhoneType = ptr(string(f.PhoneType))
	}
	return backend.SavePatch{CoBorrower: p}
}
