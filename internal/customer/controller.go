package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bankdesk/internal/api"
	"bankdesk/internal/dto"
	"bankdesk/internal/models"
	"bankdesk/internal/store"
	"bankdesk/internal/validation"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCustomerID = errors.New("customer id must not be empty")
	ErrNoSelection       = errors.New("no customer is selected")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrEmptyFilter       = errors.New("at least one search filter is required")
	ErrInvalidForm       = errors.New("form validation failed")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Phase is the lifecycle state of the customer workspace.
type Phase string

const (
	PhaseEmpty   Phase = "empty"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseStale   Phase = "stale"
	PhaseErrored Phase = "errored"
)

// Snapshot is a point-in-time copy of the workspace. Customer is a copy; the
// caller may hold it across further controller calls.
type Snapshot struct {
	Phase    Phase
	Customer *models.Customer
	Err      error
}

// Listener receives a snapshot after every workspace transition. Listeners
// run synchronously on the goroutine that caused the transition and must not
// call back into the controller.
type Listener func(Snapshot)

// BankingAPIInterface is the slice of the banking API the workspace needs.
type BankingAPIInterface interface {
	GetCustomer(ctx context.Context, custID string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, form dto.CustomerForm) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, custID string, form dto.CustomerForm) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, custID string) error
	SearchCustomers(ctx context.Context, req dto.AdvancedSearchRequest) ([]models.Customer, error)
	CreateSavingsAccount(ctx context.Context, custID string, form dto.SavingsAccountForm) (*models.Account, error)
	CreateLoanAccount(ctx context.Context, custID string, form dto.LoanAccountForm) (*models.Account, error)
	Deposit(ctx context.Context, custID string, req dto.TransactionRequest) (*models.Transaction, error)
	Withdraw(ctx context.Context, custID string, req dto.TransactionRequest) (*models.Transaction, error)
}

// SessionInterface is the hook through which backend 401s force a logout.
type SessionInterface interface {
	ObserveError(err error) error
}

// Controller keeps one customer's record synchronized with the backend.
//
// Every read of the workspace goes through Snapshot; every change to it goes
// through one of the operations below. A generation counter makes Select
// last-write-wins: a fetch that resolves after a newer Select (or a
// ClearSelection) is discarded without touching the snapshot.
type Controller struct {
	mu        sync.Mutex
	api       BankingAPIInterface
	store     store.StateStore
	session   SessionInterface
	metrics   *Metrics
	logger    *slog.Logger
	gen       uint64
	phase     Phase
	customer  *models.Customer
	lastErr   error
	listeners []Listener
}

// NewController creates a workspace in the Empty phase. metrics may be nil.
func NewController(bankAPI BankingAPIInterface, stateStore store.StateStore, sess SessionInterface, metrics *Metrics, logger *slog.Logger) *Controller {
	return &Controller{
		api:     bankAPI,
		store:   stateStore,
		session: sess,
		metrics: metrics,
		logger:  logger,
		phase:   PhaseEmpty,
	}
}

// OnChange registers a transition listener.
func (c *Controller) OnChange(fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns a copy of the current workspace state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{Phase: c.phase, Err: c.lastErr}
	if c.customer != nil {
		clone := *c.customer
		clone.Accounts = append([]models.Account(nil), c.customer.Accounts...)
		snap.Customer = &clone
	}
	return snap
}

// notify delivers the current snapshot to all listeners. Called with the
// lock released.
func (c *Controller) notify() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// Select makes the given customer the active one. The id is persisted before
// the fetch is issued, so a restart mid-fetch lands on the same customer.
//
// A 404 leaves the persisted id in place: the operator asked for that
// customer and gets told it does not exist, rather than being silently moved
// elsewhere.
func (c *Controller) Select(ctx context.Context, custID string) error {
	err := c.doSelect(ctx, custID)
	c.metrics.observe("select", err)
	return err
}

func (c *Controller) doSelect(ctx context.Context, custID string) error {
	custID = strings.TrimSpace(custID)
	if custID == "" {
		return ErrInvalidCustomerID
	}

	c.mu.Lock()
	c.gen++
	myGen := c.gen
	c.phase = PhaseLoading
	c.lastErr = nil
	c.mu.Unlock()
	c.notify()

	if err := c.store.SetSelectedCustomerID(custID); err != nil {
		c.logger.Warn("failed to persist customer selection", "custId", custID, "error", err)
	}

	fetched, err := c.api.GetCustomer(ctx, custID)

	c.mu.Lock()

	if myGen != c.gen {
		// A newer Select or ClearSelection owns the workspace now.
		c.mu.Unlock()
		c.logger.Debug("discarding superseded fetch", "custId", custID)
		return nil
	}

	if err != nil {
		mapped := c.mapSelectError(custID, err)
		c.phase = PhaseErrored
		c.lastErr = mapped
		c.mu.Unlock()

		c.session.ObserveError(err)
		c.notify()
		return mapped
	}

	c.phase = PhaseLoaded
	c.customer = fetched
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info("customer loaded", "custId", fetched.CustID, "accounts", len(fetched.Accounts))
	c.notify()
	return nil
}

// RestoreSelection re-selects the customer persisted by a previous run.
// A no-op when nothing was persisted.
func (c *Controller) RestoreSelection(ctx context.Context) error {
	custID, ok, err := c.store.SelectedCustomerID()
	if err != nil {
		return fmt.Errorf("failed to read persisted selection: %w", err)
	}
	if !ok {
		return nil
	}
	return c.Select(ctx, custID)
}

// ClearSelection empties the workspace and forgets the persisted id.
// Any in-flight fetch is invalidated.
func (c *Controller) ClearSelection() error {
	c.mu.Lock()
	c.gen++
	c.phase = PhaseEmpty
	c.customer = nil
	c.lastErr = nil
	c.mu.Unlock()
	c.notify()

	if err := c.store.ClearSelectedCustomerID(); err != nil {
		return fmt.Errorf("failed to clear persisted selection: %w", err)
	}
	return nil
}

// Search runs the advanced customer search. It never changes the selection;
// callers Select a result explicitly. An all-blank filter is rejected before
// any request is issued.
func (c *Controller) Search(ctx context.Context, req dto.AdvancedSearchRequest) ([]models.Customer, error) {
	results, err := c.doSearch(ctx, req)
	c.metrics.observe("search", err)
	return results, err
}

func (c *Controller) doSearch(ctx context.Context, req dto.AdvancedSearchRequest) ([]models.Customer, error) {
	if req.IsEmpty() {
		return nil, ErrEmptyFilter
	}
	if fieldErrors := validation.GetValidator().ValidateStruct(req); fieldErrors != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForm, fieldErrors)
	}

	results, err := c.api.SearchCustomers(ctx, req)
	if err != nil {
		c.session.ObserveError(err)
		return nil, fmt.Errorf("customer search failed: %w", err)
	}
	return results, nil
}

// Create creates a customer and selects it, so the workspace lands on the
// authoritative server copy rather than the creation echo.
func (c *Controller) Create(ctx context.Context, form dto.CustomerForm) (*models.Customer, error) {
	created, err := c.doCreate(ctx, form)
	c.metrics.observe("create", err)
	return created, err
}

func (c *Controller) doCreate(ctx context.Context, form dto.CustomerForm) (*models.Customer, error) {
	if fieldErrors := validation.GetValidator().ValidateStruct(form); fieldErrors != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForm, fieldErrors)
	}

	created, err := c.api.CreateCustomer(ctx, form)
	if err != nil {
		c.session.ObserveError(err)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	c.recordEvent("customer.create", created.CustID, created.DisplayName())

	if created.CustID != "" {
		if err := c.doSelect(ctx, created.CustID); err != nil {
			c.logger.Warn("created customer but could not load it", "custId", created.CustID, "error", err)
		}
	}
	return created, nil
}

// Update replaces the selected customer's record and refetches it.
func (c *Controller) Update(ctx context.Context, form dto.CustomerForm) (*models.Customer, error) {
	updated, err := c.doUpdate(ctx, form)
	c.metrics.observe("update", err)
	return updated, err
}

func (c *Controller) doUpdate(ctx context.Context, form dto.CustomerForm) (*models.Customer, error) {
	custID, err := c.selectedID()
	if err != nil {
		return nil, err
	}
	if fieldErrors := validation.GetValidator().ValidateStruct(form); fieldErrors != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidForm, fieldErrors)
	}

	updated, err := c.api.UpdateCustomer(ctx, custID, form)
	if err != nil {
		c.session.ObserveError(err)
		if api.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, custID)
		}
		return nil, fmt.Errorf("failed to update customer %s: %w", custID, err)
	}

	c.recordEvent("customer.update", custID, updated.DisplayName())

	if err := c.doSelect(ctx, custID); err != nil {
		c.logger.Warn("updated customer but refetch failed", "custId", custID, "error", err)
	}
	return updated, nil
}

// Delete removes the selected customer and empties the workspace.
func (c *Controller) Delete(ctx context.Context) error {
	err := c.doDelete(ctx)
	c.metrics.observe("delete", err)
	return err
}

func (c *Controller) doDelete(ctx context.Context) error {
	custID, err := c.selectedID()
	if err != nil {
		return err
	}

	if err := c.api.DeleteCustomer(ctx, custID); err != nil {
		c.session.ObserveError(err)
		if api.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrCustomerNotFound, custID)
		}
		return fmt.Errorf("failed to delete customer %s: %w", custID, err)
	}

	c.recordEvent("customer.delete", custID, "")
	return c.ClearSelection()
}

// CreateSavingsAccount opens a savings account on the selected customer.
// The creation echo is merged into the snapshot optimistically, leaving the
// workspace Stale until the next Select. The persisted selection ends here;
// the in-memory snapshot survives until the operator moves on.
func (c *Controller) CreateSavingsAccount(ctx context.Context, form dto.SavingsAccountForm) (*models.Account, error) {
	custID, err := c.selectedID()
	if err != nil {
		c.metrics.observe("account_create", err)
		return nil, err
	}
	if fieldErrors := validation.GetValidator().ValidateStruct(form); fieldErrors != nil {
		err := fmt.Errorf("%w: %v", ErrInvalidForm, fieldErrors)
		c.metrics.observe("account_create", err)
		return nil, err
	}

	account, err := c.api.CreateSavingsAccount(ctx, custID, form)
	if err != nil {
		err = c.mapAccountError(custID, err)
		c.metrics.observe("account_create", err)
		return nil, err
	}

	c.mergeAccountOptimistic(custID, *account)
	c.recordEvent("account.create_savings", custID, fmt.Sprintf("acct %d", account.AcctNum))
	c.metrics.observe("account_create", nil)
	return account, nil
}

// CreateLoanAccount opens a loan account on the selected customer. Same
// snapshot semantics as CreateSavingsAccount.
func (c *Controller) CreateLoanAccount(ctx context.Context, form dto.LoanAccountForm) (*models.Account, error) {
	custID, err := c.selectedID()
	if err != nil {
		c.metrics.observe("account_create", err)
		return nil, err
	}
	if fieldErrors := validation.GetValidator().ValidateStruct(form); fieldErrors != nil {
		err := fmt.Errorf("%w: %v", ErrInvalidForm, fieldErrors)
		c.metrics.observe("account_create", err)
		return nil, err
	}

	account, err := c.api.CreateLoanAccount(ctx, custID, form)
	if err != nil {
		err = c.mapAccountError(custID, err)
		c.metrics.observe("account_create", err)
		return nil, err
	}

	c.mergeAccountOptimistic(custID, *account)
	c.recordEvent("account.create_loan", custID, fmt.Sprintf("acct %d", account.AcctNum))
	c.metrics.observe("account_create", nil)
	return account, nil
}

// Deposit credits a savings account of the selected customer, then refetches
// the customer so the workspace shows the server's balance, not the echo's.
func (c *Controller) Deposit(ctx context.Context, acctNum int64, amount decimal.Decimal, detail string) (*models.Transaction, error) {
	txn, err := c.transact(ctx, "deposit", acctNum, amount, detail, c.api.Deposit)
	c.metrics.observe("deposit", err)
	return txn, err
}

// Withdraw debits a savings account of the selected customer. A 409 from the
// backend means the balance would go negative.
func (c *Controller) Withdraw(ctx context.Context, acctNum int64, amount decimal.Decimal, detail string) (*models.Transaction, error) {
	txn, err := c.transact(ctx, "withdraw", acctNum, amount, detail, c.api.Withdraw)
	c.metrics.observe("withdraw", err)
	return txn, err
}

type transactFunc func(ctx context.Context, custID string, req dto.TransactionRequest) (*models.Transaction, error)

func (c *Controller) transact(ctx context.Context, action string, acctNum int64, amount decimal.Decimal, detail string, call transactFunc) (*models.Transaction, error) {
	custID, err := c.selectedID()
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	req := dto.TransactionRequest{
		AcctNum:   acctNum,
		Amount:    amount,
		TxnDate:   time.Now().UTC().Format("2006-01-02"),
		TxnDetail: detail,
	}

	txn, err := call(ctx, custID, req)
	if err != nil {
		c.session.ObserveError(err)
		switch {
		case api.IsConflict(err):
			return nil, fmt.Errorf("%w: %s", ErrInsufficientFunds, api.AsHTTPError(err).Detail)
		case api.IsNotFound(err):
			return nil, fmt.Errorf("%w: %s", ErrCustomerNotFound, custID)
		default:
			return nil, fmt.Errorf("%s failed: %w", action, err)
		}
	}

	c.recordEvent("account."+action, custID, fmt.Sprintf("acct %d amount %s", acctNum, amount))

	if err := c.doSelect(ctx, custID); err != nil {
		c.logger.Warn("transaction applied but refetch failed", "custId", custID, "error", err)
	}
	return txn, nil
}

// selectedID resolves the active customer id: the loaded snapshot first,
// the persisted slot second.
func (c *Controller) selectedID() (string, error) {
	c.mu.Lock()
	if c.customer != nil && c.customer.CustID != "" {
		id := c.customer.CustID
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	id, ok, err := c.store.SelectedCustomerID()
	if err != nil {
		return "", fmt.Errorf("failed to read persisted selection: %w", err)
	}
	if !ok {
		return "", ErrNoSelection
	}
	return id, nil
}

// mergeAccountOptimistic layers a creation echo onto the snapshot and marks
// it Stale. Skipped when the workspace has moved to a different customer in
// the meantime. The persisted selection is dropped either way.
func (c *Controller) mergeAccountOptimistic(custID string, account models.Account) {
	c.mu.Lock()
	merged := c.customer != nil && c.customer.CustID == custID
	if merged {
		c.customer.MergeAccount(account)
		c.phase = PhaseStale
	}
	c.mu.Unlock()
	if merged {
		c.notify()
	}

	if err := c.store.ClearSelectedCustomerID(); err != nil {
		c.logger.Warn("failed to clear persisted selection", "custId", custID, "error", err)
	}
}

func (c *Controller) mapSelectError(custID string, err error) error {
	if api.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrCustomerNotFound, custID)
	}
	return fmt.Errorf("failed to load customer %s: %w", custID, err)
}

func (c *Controller) mapAccountError(custID string, err error) error {
	c.session.ObserveError(err)
	switch {
	case api.IsNotFound(err):
		return fmt.Errorf("%w: %s", ErrCustomerNotFound, custID)
	case api.IsConflict(err):
		return fmt.Errorf("account creation rejected: %s", api.AsHTTPError(err).Detail)
	default:
		return fmt.Errorf("failed to create account for customer %s: %w", custID, err)
	}
}

func (c *Controller) recordEvent(action, resourceID, detail string) {
	if err := c.store.RecordEvent(action, "customer", resourceID, detail); err != nil {
		c.logger.Warn("failed to record event", "action", action, "error", err)
	}
}
