package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The banking API has grown several field-naming conventions over time
// (PascalCase from the database schema, camelCase from newer endpoints).
// All tolerated spellings live in this one table; nothing outside this
// file is allowed to second-guess a field name.
var fieldAliases = map[string][]string{
	"custID":          {"CustID", "custId", "custID", "id", "ID"},
	"firstName":       {"FirstName", "firstName"},
	"lastName":        {"LastName", "lastName"},
	"address1":        {"Address1", "address1"},
	"address2":        {"Address2", "address2"},
	"emailID":         {"EmailID", "emailId", "email"},
	"phone":           {"Phone", "phone"},
	"mobile":          {"Mobile", "mobile"},
	"dob":             {"DOB", "dob", "dateOfBirth"},
	"maritalStatus":   {"MaritalStatus", "maritalStatus"},
	"zipCode":         {"ZIPCode", "zipCode", "zipcode"},
	"cityName":        {"CityName", "cityName", "city"},
	"stateName":       {"StateName", "stateName", "state"},
	"countryName":     {"CountryName", "countryName", "country"},
	"accounts":        {"accounts", "Accounts", "accountList"},
	"acctNum":         {"AcctNum", "acctNum", "accountNumber"},
	"accountType":     {"AccountType", "accountType", "type"},
	"accSubType":      {"AccSubType", "accSubType"},
	"balance":         {"Balance", "balance", "NewBalance"},
	"transferLimit":   {"TransferLimit", "transferLimit"},
	"branchCode":      {"BranchCode", "branchCode"},
	"totalLoanAmount": {"TotalLoanAmount", "totalLoanAmount"},
	"rateOfInterest":  {"RateOfInterest", "rateOfInterest"},
	"loanDuration":    {"LoanDuration", "loanDuration"},
	"transactions":    {"transactions", "Transactions", "txnHistory"},
	"txnID":           {"TxnID", "txnId"},
	"txnDate":         {"TxnDate", "txnDate"},
	"txnDetail":       {"TxnDetail", "txnDetail"},
	"withdrawAmount":  {"WithdrawAmount", "withdrawAmount", "Withdrawn"},
	"depositAmount":   {"DepositAmount", "depositAmount", "Deposited"},
}

// pickRaw returns the first alias of the canonical key present in the object.
func pickRaw(obj map[string]json.RawMessage, canonical string) (json.RawMessage, bool) {
	for _, alias := range fieldAliases[canonical] {
		if raw, ok := obj[alias]; ok && string(raw) != "null" {
			return raw, true
		}
	}
	return nil, false
}

// pickString decodes the field as a string, stringifying bare numbers so
// identifiers survive the server's int/string ambivalence.
func pickString(obj map[string]json.RawMessage, canonical string) string {
	raw, ok := pickRaw(obj, canonical)
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return ""
}

// pickInt64 decodes the field as an int64, accepting quoted digits.
func pickInt64(obj map[string]json.RawMessage, canonical string) int64 {
	raw, ok := pickRaw(obj, canonical)
	if !ok {
		return 0
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return v
		}
	}

	return 0
}

// pickDecimal decodes the field as a decimal amount. Absent, null, blank
// and malformed values all coerce to zero, never to NaN.
func pickDecimal(obj map[string]json.RawMessage, canonical string) decimal.Decimal {
	raw, ok := pickRaw(obj, canonical)
	if !ok {
		return decimal.Zero
	}
	return CoerceDecimal(string(raw))
}

// CoerceDecimal converts a raw numeric form value (possibly quoted, blank or
// absent) into a decimal. Blank coerces to zero.
func CoerceDecimal(value string) decimal.Decimal {
	trimmed := strings.TrimSpace(strings.Trim(strings.TrimSpace(value), `"`))
	if trimmed == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CoerceInt converts a raw numeric form value into an int, blank coercing to zero.
func CoerceInt(value string) int {
	trimmed := strings.TrimSpace(strings.Trim(strings.TrimSpace(value), `"`))
	if trimmed == "" {
		return 0
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}
