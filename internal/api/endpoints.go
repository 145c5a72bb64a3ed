package api

import (
	"context"
	"net/http"
	"net/url"

	"bankdesk/internal/dto"
	"bankdesk/internal/models"
)

// Login exchanges credentials for a bearer token. Unauthenticated.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	var resp dto.TokenResponse
	if err := c.request(ctx, "login", http.MethodPost, "/admin/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new administrator account. Unauthenticated.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var resp dto.RegisterResponse
	if err := c.request(ctx, "register", http.MethodPost, "/admin/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCustomer fetches the full customer record including accounts.
func (c *Client) GetCustomer(ctx context.Context, custID string) (*models.Customer, error) {
	var customer models.Customer
	if err := c.request(ctx, "customer_get", http.MethodGet, "/customers/"+url.PathEscape(custID), nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomer creates a customer. The response carries server-computed
// fields (generated id, normalized address) but callers refetch anyway.
func (c *Client) CreateCustomer(ctx context.Context, form dto.CustomerForm) (*models.Customer, error) {
	var customer models.Customer
	if err := c.request(ctx, "customer_create", http.MethodPost, "/customers", form, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer replaces a customer record.
func (c *Client) UpdateCustomer(ctx context.Context, custID string, form dto.CustomerForm) (*models.Customer, error) {
	var customer models.Customer
	if err := c.request(ctx, "customer_update", http.MethodPut, "/customers/"+url.PathEscape(custID), form, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// DeleteCustomer deletes a customer.
func (c *Client) DeleteCustomer(ctx context.Context, custID string) error {
	return c.request(ctx, "customer_delete", http.MethodDelete, "/customers/"+url.PathEscape(custID), nil, nil)
}

// SearchCustomers runs the advanced search. Filter validation happens at
// the controller boundary, before this is ever called.
func (c *Client) SearchCustomers(ctx context.Context, req dto.AdvancedSearchRequest) ([]models.Customer, error) {
	var results []models.Customer
	if err := c.request(ctx, "customer_search", http.MethodPost, "/customers/advSearch", req, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CreateSavingsAccount opens a savings account for the customer.
func (c *Client) CreateSavingsAccount(ctx context.Context, custID string, form dto.SavingsAccountForm) (*models.Account, error) {
	var account models.Account
	if err := c.request(ctx, "account_create_savings", http.MethodPost, "/customers/"+url.PathEscape(custID)+"/savings", form, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateLoanAccount opens a loan account for the customer.
func (c *Client) CreateLoanAccount(ctx context.Context, custID string, form dto.LoanAccountForm) (*models.Account, error) {
	var account models.Account
	if err := c.request(ctx, "account_create_loan", http.MethodPost, "/customers/"+url.PathEscape(custID)+"/loan", form, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Deposit credits a savings account. The returned transaction is informative
// only; balances shown to the operator always come from a refetch.
func (c *Client) Deposit(ctx context.Context, custID string, req dto.TransactionRequest) (*models.Transaction, error) {
	var txn models.Transaction
	if err := c.request(ctx, "deposit", http.MethodPost, "/customers/"+url.PathEscape(custID)+"/savings/deposit", req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// Withdraw debits a savings account.
func (c *Client) Withdraw(ctx context.Context, custID string, req dto.TransactionRequest) (*models.Transaction, error) {
	var txn models.Transaction
	if err := c.request(ctx, "withdraw", http.MethodPost, "/customers/"+url.PathEscape(custID)+"/savings/withdraw", req, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}
