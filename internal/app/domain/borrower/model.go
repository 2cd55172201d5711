// Package borrower defines the borrower vocabulary shared by the step forms
// and the wire payloads. Borrower data itself travels in backend payloads and
// is mutated only through the save reconciler.
package borrower

// MaritalStatus enumerates the 1003 marital status values.
type MaritalStatus string

const (
	Married   MaritalStatus = "MARRIED"
	Separated MaritalStatus = "SEPARATED"
	Unmarried MaritalStatus = "UNMARRIED"
)

// Valid reports whether the status is one of the known values.
func (m MaritalStatus) Valid() bool {
	return m == Married || m == Separated || m == Unmarried
}

// PhoneType enumerates contact phone categories.
type PhoneType string

const (
	PhoneHome   PhoneType = "HOME"
	PhoneMobile PhoneType = "MOBILE"
	PhoneWork   PhoneType = "WORK"
	PhoneOther  PhoneType = "OTHER"
)
