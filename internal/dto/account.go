package dto

import "github.com/shopspring/decimal"

// SavingsAccountForm is the payload for POST /customers/{id}/savings.
type SavingsAccountForm struct {
	AccSubType    string          `json:"accSubType" validate:"required,min=1"`
	Balance       decimal.Decimal `json:"balance"`
	TransferLimit decimal.Decimal `json:"transferLimit"`
	BranchCode    string          `json:"branchCode" validate:"required,min=1,max=20"`
}

// LoanAccountForm is the payload for POST /customers/{id}/loan.
type LoanAccountForm struct {
	AccSubType      string          `json:"accSubType" validate:"required,min=1"`
	TotalLoanAmount decimal.Decimal `json:"totalLoanAmount"`
	RateOfInterest  decimal.Decimal `json:"rateOfInterest"`
	LoanDuration    int             `json:"loanDuration" validate:"omitempty,min=0,max=600"`
	BranchCode      string          `json:"branchCode" validate:"required,min=1,max=20"`
}

// TransactionRequest is the payload for the savings deposit and withdraw
// endpoints. Field names follow the backend's schema exactly.
type TransactionRequest struct {
	AcctNum   int64           `json:"AcctNum" validate:"required"`
	Amount    decimal.Decimal `json:"Amount"`
	TxnDate   string          `json:"TxnDate" validate:"required"`
	TxnDetail string          `json:"TxnDetail,omitempty" validate:"omitempty,max=255"`
}
