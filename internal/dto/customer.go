package dto

// CustomerForm carries the customer create/update payload. Field names match
// the backend's PascalCase write schema; responses are normalized separately
// on the way back in.
type CustomerForm struct {
	FirstName     string `json:"FirstName" validate:"required,min=1,max=100"`
	LastName      string `json:"LastName" validate:"required,min=1,max=100"`
	Address1      string `json:"Address1,omitempty" validate:"omitempty,max=255"`
	Address2      string `json:"Address2,omitempty" validate:"omitempty,max=255"`
	EmailID       string `json:"EmailID" validate:"required,email"`
	Phone         string `json:"Phone,omitempty" validate:"omitempty,max=15"`
	Mobile        string `json:"Mobile,omitempty" validate:"omitempty,max=15"`
	DOB           string `json:"DOB,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MaritalStatus string `json:"MaritalStatus,omitempty"`
	ZIPCode       string `json:"ZIPCode,omitempty" validate:"omitempty,max=10"`
	CityName      string `json:"CityName,omitempty" validate:"omitempty,max=100"`
	StateName     string `json:"StateName,omitempty" validate:"omitempty,max=100"`
	CountryName   string `json:"CountryName,omitempty" validate:"omitempty,max=100"`
}

// AdvancedSearchRequest is the filter set for POST /customers/advSearch.
// At least one filter must be non-empty; that is enforced before any
// request is issued, not by the server.
type AdvancedSearchRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Mobile    string `json:"mobile,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

// IsEmpty reports whether every filter field is blank.
func (r AdvancedSearchRequest) IsEmpty() bool {
	return r.FirstName == "" && r.LastName == "" && r.Mobile == "" && r.Email == ""
}
