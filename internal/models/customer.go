package models

import (
	"encoding/json"
	"strings"
)

// Customer is the canonical in-memory customer record, including the nested
// postal hierarchy (ZIP -> city -> state -> country) flattened by the API
// and the customer's account collection.
type Customer struct {
	CustID        string    `json:"custId"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Address1      string    `json:"address1,omitempty"`
	Address2      string    `json:"address2,omitempty"`
	EmailID       string    `json:"emailId"`
	Phone         string    `json:"phone,omitempty"`
	Mobile        string    `json:"mobile,omitempty"`
	DOB           string    `json:"dob,omitempty"`
	MaritalStatus string    `json:"maritalStatus,omitempty"`
	ZIPCode       string    `json:"zipCode,omitempty"`
	CityName      string    `json:"cityName,omitempty"`
	StateName     string    `json:"stateName,omitempty"`
	CountryName   string    `json:"countryName,omitempty"`
	Accounts      []Account `json:"accounts"`
}

// UnmarshalJSON normalizes the server's divergent field casings into the
// canonical record via the alias table in normalize.go.
func (c *Customer) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	c.CustID = pickString(obj, "custID")
	c.FirstName = pickString(obj, "firstName")
	c.LastName = pickString(obj, "lastName")
	c.Address1 = pickString(obj, "address1")
	c.Address2 = pickString(obj, "address2")
	c.EmailID = pickString(obj, "emailID")
	c.Phone = pickString(obj, "phone")
	c.Mobile = pickString(obj, "mobile")
	c.DOB = pickString(obj, "dob")
	c.MaritalStatus = pickString(obj, "maritalStatus")
	c.ZIPCode = pickString(obj, "zipCode")
	c.CityName = pickString(obj, "cityName")
	c.StateName = pickString(obj, "stateName")
	c.CountryName = pickString(obj, "countryName")

	c.Accounts = nil
	if raw, ok := pickRaw(obj, "accounts"); ok {
		if err := json.Unmarshal(raw, &c.Accounts); err != nil {
			return err
		}
	}

	return nil
}

// DisplayName joins the customer's first and last names, skipping blanks.
func (c *Customer) DisplayName() string {
	parts := make([]string, 0, 2)
	if c.FirstName != "" {
		parts = append(parts, c.FirstName)
	}
	if c.LastName != "" {
		parts = append(parts, c.LastName)
	}
	return strings.Join(parts, " ")
}

// AccountByNumber returns the account with the given number, or nil.
func (c *Customer) AccountByNumber(acctNum int64) *Account {
	for i := range c.Accounts {
		if c.Accounts[i].AcctNum == acctNum {
			return &c.Accounts[i]
		}
	}
	return nil
}

// MergeAccount layers a just-created account onto the customer without a
// refetch. An existing account with the same number is replaced.
func (c *Customer) MergeAccount(account Account) {
	for i := range c.Accounts {
		if c.Accounts[i].AcctNum == account.AcctNum {
			c.Accounts[i] = account
			return
		}
	}
	c.Accounts = append(c.Accounts, account)
}
