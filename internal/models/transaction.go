package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Transaction is one row of an account's savings transaction history.
// Balance is the running balance after the transaction, as computed by the
// server; it is never recomputed client-side.
type Transaction struct {
	TxnID          int64           `json:"txnId"`
	TxnDate        string          `json:"txnDate"`
	AcctNum        int64           `json:"acctNum"`
	TxnDetail      string          `json:"txnDetail,omitempty"`
	WithdrawAmount decimal.Decimal `json:"withdrawAmount"`
	DepositAmount  decimal.Decimal `json:"depositAmount"`
	Balance        decimal.Decimal `json:"balance"`
}

// UnmarshalJSON normalizes the server's divergent field casings.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	t.TxnID = pickInt64(obj, "txnID")
	t.TxnDate = pickString(obj, "txnDate")
	t.AcctNum = pickInt64(obj, "acctNum")
	t.TxnDetail = pickString(obj, "txnDetail")
	t.WithdrawAmount = pickDecimal(obj, "withdrawAmount")
	t.DepositAmount = pickDecimal(obj, "depositAmount")
	t.Balance = pickDecimal(obj, "balance")

	return nil
}

// IsDeposit reports whether the transaction credited the account.
func (t *Transaction) IsDeposit() bool {
	return t.DepositAmount.IsPositive()
}
