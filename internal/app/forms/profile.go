package forms

import (
	"strings"

	"github.com/clearpathlending/intake/internal/app/domain/address"
	"github.com/clearpathlending/intake/internal/app/domain/borrower"
	"github.com/clearpathlending/intake/internal/app/domain/flow"
	"github.com/clearpathlending/intake/internal/app/services/progress"
	"github.com/clearpathlending/intake/internal/backend"
)

// BorrowerProfile is the second screen: marital status, veteran flag, the
// current address as free text, and the consents. Completing it marks the
// personal-info section.
type BorrowerProfile struct {
	MaritalStatus borrower.MaritalStatus
	IsVeteran     bool

	// AddressText is the address as typed; it is normalized into components
	// at patch time.
	AddressText string

	AcceptTerms      bool
	ConsentToContact bool
}

func (f *BorrowerProfile) Step() flow.Step { return flow.BorrowerInfo2 }
func (f *BorrowerProfile) Section() string { return progress.SectionPersonalInfo }

func (f *BorrowerProfile) Populate(app *backend.Application) {
	b := borrowerOf(app, false)
	if b == nil {
		return
	}
	if b.MaritalStatus != nil {
		f.MaritalStatus = borrower.MaritalStatus(*b.MaritalStatus)
	}
	f.IsVeteran = deref(b.IsVeteran)
	f.AcceptTerms = deref(b.AcceptTerms)
	f.ConsentToContact = deref(b.ConsentToContact)
	f.AddressText = storedAddress(b)
}

func (f *BorrowerProfile) Validate() map[string]string {
	errs := make(map[string]string)
	if !f.MaritalStatus.Valid() {
		errs["maritalStatus"] = "Select a marital status"
	}
	requireText(errs, "address", f.AddressText, "Current address is required")
	if strings.TrimSpace(f.AddressText) != "" && !address.Parse(f.AddressText).IsComplete() {
		errs["address"] = "Enter a full address: street, city, state and ZIP"
	}
	if !f.AcceptTerms {
		errs["acceptTerms"] = "You must accept the terms to continue"
	}
	if !f.ConsentToContact {
		errs["consentToContact"] = "Contact consent is required to continue"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *BorrowerProfile) Patch() backend.SavePatch {
	rec := address.Parse(f.AddressText)
	p := &backend.BorrowerPayload{
		MaritalStatus:    ptr(string(f.MaritalStatus)),
		IsVeteran:        ptr(f.IsVeteran),
		AcceptTerms:      ptr(f.AcceptTerms),
		ConsentToContact: ptr(f.ConsentToContact),
		// The server stores both shapes: the combined display string and
		// the split components.
		CurrentAddress: ptr(address.Format(rec)),
		Address:        ptr(rec.Street),
		City:           ptr(rec.City),
		State:          ptr(rec.State),
		ZipCode:        ptr(rec.ZipCode),
	}
	return backend.SavePatch{Borrower: p}
}

// CoBorrowerProfile mirrors BorrowerProfile for the sub-flow. When the
// co-borrower lives with the borrower no address components are sent at all;
// the server keeps them joined to the borrower's record.
type CoBorrowerProfile struct {
	MaritalStatus borrower.MaritalStatus
	IsVeteran     bool
	LiveTogether  bool
	AddressText   string
}

func (f *CoBorrowerProfile) Step() flow.Step { return flow.CoBorrowerInfo2 }
func (f *CoBorrowerProfile) Section() string { return "" }

func (f *CoBorrowerProfile) Populate(app *backend.Application) {
	b := borrowerOf(app, true)
	if b == nil {
		return
	}
	if b.MaritalStatus != nil {
		f.MaritalStatus = borrower.MaritalStatus(*b.MaritalStatus)
	}
	f.IsVeteran = deref(b.IsVeteran)
	f.LiveTogether = deref(b.LiveTogether)
	f.AddressText = storedAddress(b)
}

func (f *CoBorrowerProfile) Validate() map[string]string {
	errs := make(map[string]string)
	if !f.MaritalStatus.Valid() {
		errs["maritalStatus"] = "Select a marital status"
	}
	if !f.LiveTogether {
		requireText(errs, "address", f.AddressText, "Current address is required")
		if strings.TrimSpace(f.AddressText) != "" && !address.Parse(f.AddressText).IsComplete() {
			errs["address"] = "Enter a full address: street, city, state and ZIP"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f *CoBorrowerProfile) Patch() backend.SavePatch {
	p := &backend.BorrowerPayload{
		MaritalStatus: ptr(string(f.MaritalStatus)),
		IsVeteran:     ptr(f.IsVeteran),
		LiveTogether:  ptr(f.LiveTogether),
	}
	if !f.LiveTogether {
		rec := address.Parse(f.AddressText)
		p.CurrentAddress = ptr(address.Format(rec))
		p.Address = ptr(rec.Street)
		p.City = ptr(rec.City)
		p.State = ptr(rec.State)
		p.ZipCode = ptr(rec.ZipCode)
	}
	return backend.SavePatch{CoBorrower: p}
}

// storedAddress rebuilds the display string from whichever address shape the
// server sent: the combined field or the components.
func storedAddress(b *backend.BorrowerPayload) string {
	if b.CurrentAddress != nil && *b.CurrentAddress != "" {
		return *b.CurrentAddress
	}
	rec := address.Record{
		Street:  deref(b.Address),
		City:    deref(b.City),
		State:   deref(b.State),
		ZipCode: deref(b.ZipCode),
	}
	if rec.IsEmpty() {
		return ""
	}
	return address.Format(rec)
}
