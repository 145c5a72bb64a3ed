package gateway

import (
	"net/http"
	"time"

	"bankdesk/internal/customer"
	"bankdesk/internal/dto"
	"bankdesk/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// stateView is the JSON shape of a workspace snapshot. Err does not
// serialize as an error; it is flattened to its message.
type stateView struct {
	Phase    customer.Phase   `json:"phase"`
	Customer *models.Customer `json:"customer,omitempty"`
	Error    string           `json:"error,omitempty"`
}

func viewOf(snap customer.Snapshot) stateView {
	view := stateView{Phase: snap.Phase, Customer: snap.Customer}
	if snap.Err != nil {
		view.Error = snap.Err.Error()
	}
	return view
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.sessions.Login(c.Request().Context(), req.Identifier, req.Password); err != nil {
		return err
	}

	profile, _ := s.sessions.CurrentUser()
	return c.JSON(http.StatusOK, SuccessResponse{Data: profile, Message: "signed in"})
}

func (s *Server) logout(c echo.Context) error {
	s.sessions.Logout()
	if err := s.workspace.ClearSelection(); err != nil {
		s.logger.Warn("failed to clear workspace on logout", "error", err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "signed out"})
}

func (s *Server) whoami(c echo.Context) error {
	profile, ok := s.sessions.CurrentUser()
	if !ok {
		return c.JSON(http.StatusOK, SuccessResponse{Message: "not signed in"})
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: profile})
}

func (s *Server) register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := s.sessions.Register(c.Request().Context(), req.UserName, req.Password, req.UserEmail)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Data: resp, Message: "administrator registered"})
}

func (s *Server) state(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{Data: viewOf(s.workspace.Snapshot())})
}

func (s *Server) events(c echo.Context) error {
	events, err := s.store.RecentEvents(50)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: events})
}

type selectRequest struct {
	CustID string `json:"custId"`
}

func (s *Server) selectCustomer(c echo.Context) error {
	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.workspace.Select(c.Request().Context(), req.CustID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: viewOf(s.workspace.Snapshot())})
}

func (s *Server) searchCustomers(c echo.Context) error {
	var req dto.AdvancedSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	results, err := s.workspace.Search(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: results})
}

func (s *Server) createCustomer(c echo.Context) error {
	var form dto.CustomerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	created, err := s.workspace.Create(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Data: created, Message: "customer created"})
}

func (s *Server) updateCustomer(c echo.Context) error {
	var form dto.CustomerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := s.workspace.Update(c.Request().Context(), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: updated, Message: "customer updated"})
}

func (s *Server) deleteCustomer(c echo.Context) error {
	if err := s.workspace.Delete(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "customer deleted"})
}

type accountRequest struct {
	Type string `json:"type"`

	// Savings detail
	Balance       decimal.Decimal `json:"balance"`
	TransferLimit decimal.Decimal `json:"transferLimit"`

	// Loan detail
	TotalLoanAmount decimal.Decimal `json:"totalLoanAmount"`
	RateOfInterest  decimal.Decimal `json:"rateOfInterest"`
	LoanDuration    int             `json:"loanDuration"`

	AccSubType string `json:"accSubType"`
	BranchCode string `json:"branchCode"`
}

func (s *Server) createAccount(c echo.Context) error {
	var req accountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var account *models.Account
	var err error

	switch req.Type {
	case models.AccountTypeSavings:
		form := dto.SavingsAccountForm{
			AccSubType:    req.AccSubType,
			Balance:       req.Balance,
			TransferLimit: req.TransferLimit,
			BranchCode:    req.BranchCode,
		}
		account, err = s.workspace.CreateSavingsAccount(c.Request().Context(), form)
	case models.AccountTypeLoan:
		form := dto.LoanAccountForm{
			AccSubType:      req.AccSubType,
			TotalLoanAmount: req.TotalLoanAmount,
			RateOfInterest:  req.RateOfInterest,
			LoanDuration:    req.LoanDuration,
			BranchCode:      req.BranchCode,
		}
		account, err = s.workspace.CreateLoanAccount(c.Request().Context(), form)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "account type must be savings or loan")
	}

	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, SuccessResponse{Data: account, Message: "account created"})
}

type transactionRequest struct {
	AcctNum   int64           `json:"acctNum"`
	Amount    decimal.Decimal `json:"amount"`
	TxnDetail string          `json:"txnDetail"`
}

func (s *Server) deposit(c echo.Context) error {
	var req transactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	txn, err := s.workspace.Deposit(c.Request().Context(), req.AcctNum, req.Amount, req.TxnDetail)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: txn, Message: "deposit applied"})
}

func (s *Server) withdraw(c echo.Context) error {
	var req transactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	txn, err := s.workspace.Withdraw(c.Request().Context(), req.AcctNum, req.Amount, req.TxnDetail)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: txn, Message: "withdrawal applied"})
}
