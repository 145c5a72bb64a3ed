package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

const (
	AccountTypeSavings = "savings"
	AccountTypeLoan    = "loan"
)

// Account is the canonical account record. Savings and loan accounts share
// one shape; the loan fields stay zero for savings accounts and vice versa.
type Account struct {
	AcctNum     int64  `json:"acctNum"`
	CustID      string `json:"custId,omitempty"`
	AccountType string `json:"accountType"`
	AccSubType  string `json:"accSubType,omitempty"`
	BranchCode  string `json:"branchCode,omitempty"`

	// Savings detail
	Balance       decimal.Decimal `json:"balance"`
	TransferLimit decimal.Decimal `json:"transferLimit"`

	// Loan detail
	TotalLoanAmount decimal.Decimal `json:"totalLoanAmount"`
	RateOfInterest  decimal.Decimal `json:"rateOfInterest"`
	LoanDuration    int             `json:"loanDuration"`

	Transactions []Transaction `json:"transactions,omitempty"`
}

// UnmarshalJSON normalizes the server's divergent field casings.
func (a *Account) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	a.AcctNum = pickInt64(obj, "acctNum")
	a.CustID = pickString(obj, "custID")
	a.AccountType = pickString(obj, "accountType")
	a.AccSubType = pickString(obj, "accSubType")
	a.BranchCode = pickString(obj, "branchCode")
	a.Balance = pickDecimal(obj, "balance")
	a.TransferLimit = pickDecimal(obj, "transferLimit")
	a.TotalLoanAmount = pickDecimal(obj, "totalLoanAmount")
	a.RateOfInterest = pickDecimal(obj, "rateOfInterest")
	a.LoanDuration = int(pickInt64(obj, "loanDuration"))

	a.Transactions = nil
	if raw, ok := pickRaw(obj, "transactions"); ok {
		if err := json.Unmarshal(raw, &a.Transactions); err != nil {
			return err
		}
	}

	return nil
}

// IsSavings reports whether the account is a savings account.
func (a *Account) IsSavings() bool {
	return a.AccountType == AccountTypeSavings
}
