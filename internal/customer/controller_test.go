package customer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"bankdesk/internal/api"
	"bankdesk/internal/dto"
	"bankdesk/internal/models"
	"bankdesk/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBankingAPI struct {
	mu        sync.Mutex
	customers map[string]*models.Customer

	getErr      error
	getBlock    map[string]chan struct{}
	getCalls    int
	onGet       func(custID string)
	searchErr   error
	searchCalls int
	createErr   error
	updateErr   error
	deleteErr   error
	accountErr  error
	txnErr      error
	txnCalls    int
	nextAcctNum int64
}

func newFakeBankingAPI() *fakeBankingAPI {
	return &fakeBankingAPI{
		customers:   map[string]*models.Customer{},
		getBlock:    map[string]chan struct{}{},
		nextAcctNum: 100000001,
	}
}

func (f *fakeBankingAPI) put(c models.Customer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clone := c
	f.customers[c.CustID] = &clone
}

func (f *fakeBankingAPI) GetCustomer(ctx context.Context, custID string) (*models.Customer, error) {
	f.mu.Lock()
	f.getCalls++
	block := f.getBlock[custID]
	onGet := f.onGet
	f.mu.Unlock()

	if onGet != nil {
		onGet(custID)
	}
	if block != nil {
		<-block
	}
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[custID]
	if !ok {
		return nil, &api.HTTPError{Status: 404, Detail: "Customer not found"}
	}
	clone := *c
	clone.Accounts = append([]models.Account(nil), c.Accounts...)
	return &clone, nil
}

func (f *fakeBankingAPI) CreateCustomer(ctx context.Context, form dto.CustomerForm) (*models.Customer, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := models.Customer{
		CustID:    fmt.Sprintf("%d", len(f.customers)+1),
		FirstName: form.FirstName,
		LastName:  form.LastName,
		EmailID:   form.EmailID,
	}
	f.put(created)
	return &created, nil
}

func (f *fakeBankingAPI) UpdateCustomer(ctx context.Context, custID string, form dto.CustomerForm) (*models.Customer, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[custID]
	if !ok {
		return nil, &api.HTTPError{Status: 404, Detail: "Customer not found"}
	}
	c.FirstName = form.FirstName
	c.LastName = form.LastName
	c.EmailID = form.EmailID
	clone := *c
	return &clone, nil
}

func (f *fakeBankingAPI) DeleteCustomer(ctx context.Context, custID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.customers, custID)
	return nil
}

func (f *fakeBankingAPI) SearchCustomers(ctx context.Context, req dto.AdvancedSearchRequest) ([]models.Customer, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []models.Customer
	for _, c := range f.customers {
		if req.FirstName != "" && c.FirstName != req.FirstName {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeBankingAPI) CreateSavingsAccount(ctx context.Context, custID string, form dto.SavingsAccountForm) (*models.Account, error) {
	return f.createAccount(custID, models.AccountTypeSavings, form.Balance)
}

func (f *fakeBankingAPI) CreateLoanAccount(ctx context.Context, custID string, form dto.LoanAccountForm) (*models.Account, error) {
	return f.createAccount(custID, models.AccountTypeLoan, form.TotalLoanAmount)
}

func (f *fakeBankingAPI) createAccount(custID string, accType string, balance decimal.Decimal) (*models.Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[custID]
	if !ok {
		return nil, &api.HTTPError{Status: 404, Detail: "Customer not found"}
	}
	account := models.Account{AcctNum: f.nextAcctNum, AccountType: accType, Balance: balance}
	f.nextAcctNum++
	c.Accounts = append(c.Accounts, account)
	return &account, nil
}

func (f *fakeBankingAPI) Deposit(ctx context.Context, custID string, req dto.TransactionRequest) (*models.Transaction, error) {
	return f.transact(custID, req, false)
}

func (f *fakeBankingAPI) Withdraw(ctx context.Context, custID string, req dto.TransactionRequest) (*models.Transaction, error) {
	return f.transact(custID, req, true)
}

func (f *fakeBankingAPI) transact(custID string, req dto.TransactionRequest, withdraw bool) (*models.Transaction, error) {
	f.mu.Lock()
	f.txnCalls++
	f.mu.Unlock()
	if f.txnErr != nil {
		return nil, f.txnErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[custID]
	if !ok {
		return nil, &api.HTTPError{Status: 404, Detail: "Customer not found"}
	}
	acct := c.AccountByNumber(req.AcctNum)
	if acct == nil {
		return nil, &api.HTTPError{Status: 404, Detail: "Account not found"}
	}
	if withdraw {
		if acct.Balance.LessThan(req.Amount) {
			return nil, &api.HTTPError{Status: 409, Detail: "Insufficient funds"}
		}
		acct.Balance = acct.Balance.Sub(req.Amount)
	} else {
		acct.Balance = acct.Balance.Add(req.Amount)
	}
	return &models.Transaction{AcctNum: req.AcctNum, Balance: acct.Balance}, nil
}

type fakeSession struct {
	mu           sync.Mutex
	unauthorized int
}

func (f *fakeSession) ObserveError(err error) error {
	if api.IsUnauthorized(err) {
		f.mu.Lock()
		f.unauthorized++
		f.mu.Unlock()
	}
	return err
}

func (f *fakeSession) unauthorizedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unauthorized
}

func newTestController(t *testing.T) (*Controller, *fakeBankingAPI, *fakeSession, *store.Store) {
	t.Helper()
	bankAPI := newFakeBankingAPI()
	sess := &fakeSession{}
	st := store.SetupTestStore(t)
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewController(bankAPI, st, sess, metrics, slog.Default()), bankAPI, sess, st
}

func adaCustomer() models.Customer {
	return models.Customer{
		CustID:    "1",
		FirstName: "Ada",
		LastName:  "Lovelace",
		EmailID:   "ada@example.com",
		Accounts: []models.Account{
			{AcctNum: 100000001, AccountType: models.AccountTypeSavings, Balance: decimal.NewFromInt(500)},
		},
	}
}

func validForm() dto.CustomerForm {
	return dto.CustomerForm{FirstName: "Ada", LastName: "Lovelace", EmailID: "ada@example.com"}
}

func TestSelect_LoadsCustomer(t *testing.T) {
	ctrl, bankAPI, _, st := newTestController(t)
	bankAPI.put(adaCustomer())

	require.NoError(t, ctrl.Select(context.Background(), "1"))

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseLoaded, snap.Phase)
	require.NotNil(t, snap.Customer)
	assert.Equal(t, "Ada", snap.Customer.FirstName)
	assert.Len(t, snap.Customer.Accounts, 1)

	id, ok, err := st.SelectedCustomerID()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", id)
}

func TestSelect_EmptyIDRejected(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)

	require.ErrorIs(t, ctrl.Select(context.Background(), "  "), ErrInvalidCustomerID)
	assert.Zero(t, bankAPI.getCalls)
	assert.Equal(t, PhaseEmpty, ctrl.Snapshot().Phase)
}

func TestSelect_PersistsIDBeforeFetchResolves(t *testing.T) {
	ctrl, bankAPI, _, st := newTestController(t)
	bankAPI.put(adaCustomer())

	var persistedDuringFetch string
	bankAPI.onGet = func(custID string) {
		id, ok, err := st.SelectedCustomerID()
		require.NoError(t, err)
		require.True(t, ok)
		persistedDuringFetch = id
	}

	require.NoError(t, ctrl.Select(context.Background(), "1"))
	assert.Equal(t, "1", persistedDuringFetch)
}

func TestSelect_NotFoundKeepsPersistedID(t *testing.T) {
	ctrl, _, _, st := newTestController(t)

	err := ctrl.Select(context.Background(), "999")
	require.ErrorIs(t, err, ErrCustomerNotFound)

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseErrored, snap.Phase)
	assert.ErrorIs(t, snap.Err, ErrCustomerNotFound)

	id, ok, err := st.SelectedCustomerID()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "999", id)
}

func TestSelect_UnavailableErrorsWorkspace(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.getErr = api.ErrUnavailable

	err := ctrl.Select(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, api.IsUnavailable(err))
	assert.Equal(t, PhaseErrored, ctrl.Snapshot().Phase)
}

func TestSelect_UnauthorizedNotifiesSession(t *testing.T) {
	ctrl, bankAPI, sess, _ := newTestController(t)
	bankAPI.getErr = &api.HTTPError{Status: 401, Detail: "Could not validate credentials"}

	require.Error(t, ctrl.Select(context.Background(), "1"))
	assert.Equal(t, 1, sess.unauthorizedCount())
}

func TestSelect_LastSelectWins(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())
	bankAPI.put(models.Customer{CustID: "2", FirstName: "Grace", LastName: "Hopper", EmailID: "grace@example.com"})

	release := make(chan struct{})
	started := make(chan struct{})
	bankAPI.getBlock["1"] = release
	bankAPI.onGet = func(custID string) {
		if custID == "1" {
			close(started)
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Select(context.Background(), "1")
	}()
	<-started
	bankAPI.mu.Lock()
	bankAPI.onGet = nil
	bankAPI.mu.Unlock()

	// The second select completes while the first is still in flight.
	require.NoError(t, ctrl.Select(context.Background(), "2"))
	assert.Equal(t, "Grace", ctrl.Snapshot().Customer.FirstName)

	close(release)
	require.NoError(t, <-done)

	// The stale result for customer 1 was discarded.
	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseLoaded, snap.Phase)
	assert.Equal(t, "Grace", snap.Customer.FirstName)
}

func TestClearSelection_InvalidatesInFlightFetch(t *testing.T) {
	ctrl, bankAPI, _, st := newTestController(t)
	bankAPI.put(adaCustomer())

	release := make(chan struct{})
	started := make(chan struct{})
	bankAPI.getBlock["1"] = release
	bankAPI.onGet = func(string) { close(started) }

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Select(context.Background(), "1")
	}()

	// Clear only once the fetch is in flight.
	<-started
	require.NoError(t, ctrl.ClearSelection())
	close(release)
	require.NoError(t, <-done)

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseEmpty, snap.Phase)
	assert.Nil(t, snap.Customer)

	_, ok, err := st.SelectedCustomerID()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestoreSelection(t *testing.T) {
	ctrl, bankAPI, _, st := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, st.SetSelectedCustomerID("1"))

	require.NoError(t, ctrl.RestoreSelection(context.Background()))
	assert.Equal(t, PhaseLoaded, ctrl.Snapshot().Phase)
}

func TestRestoreSelection_NothingPersisted(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)

	require.NoError(t, ctrl.RestoreSelection(context.Background()))
	assert.Equal(t, PhaseEmpty, ctrl.Snapshot().Phase)
}

func TestSearch_EmptyFilterRejectedBeforeNetwork(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)

	_, err := ctrl.Search(context.Background(), dto.AdvancedSearchRequest{})
	require.ErrorIs(t, err, ErrEmptyFilter)
	assert.Zero(t, bankAPI.searchCalls)
}

func TestSearch_DoesNotChangeSelection(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, ctrl.Select(context.Background(), "1"))

	results, err := ctrl.Search(context.Background(), dto.AdvancedSearchRequest{FirstName: "Ada"})
	require.NoError(t, err)
	require.Len(t, results, 1)

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseLoaded, snap.Phase)
	assert.Equal(t, "1", snap.Customer.CustID)
}

func TestCreate_SelectsNewCustomer(t *testing.T) {
	ctrl, _, _, st := newTestController(t)

	created, err := ctrl.Create(context.Background(), validForm())
	require.NoError(t, err)
	require.NotEmpty(t, created.CustID)

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseLoaded, snap.Phase)
	assert.Equal(t, created.CustID, snap.Customer.CustID)

	id, ok, err := st.SelectedCustomerID()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created.CustID, id)
}

func TestCreate_InvalidFormRejectedBeforeNetwork(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)

	_, err := ctrl.Create(context.Background(), dto.CustomerForm{FirstName: "Ada"})
	require.ErrorIs(t, err, ErrInvalidForm)
}

func TestUpdate_RefetchesAuthoritativeCopy(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, ctrl.Select(context.Background(), "1"))

	form := validForm()
	form.FirstName = "Augusta"
	_, err := ctrl.Update(context.Background(), form)
	require.NoError(t, err)

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseLoaded, snap.Phase)
	assert.Equal(t, "Augusta", snap.Customer.FirstName)
}

func TestUpdate_RequiresSelection(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)

	_, err := ctrl.Update(context.Background(), validForm())
	require.ErrorIs(t, err, ErrNoSelection)
}

func TestDelete_EmptiesWorkspace(t *testing.T) {
	ctrl, _, _, st := newTestController(t)
	created, err := ctrl.Create(context.Background(), validForm())
	require.NoError(t, err)

	require.NoError(t, ctrl.Delete(context.Background()))

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseEmpty, snap.Phase)
	assert.Nil(t, snap.Customer)

	_, ok, err := st.SelectedCustomerID()
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleted for real, not just locally.
	require.ErrorIs(t, ctrl.Select(context.Background(), created.CustID), ErrCustomerNotFound)
}

func TestCreateSavingsAccount_OptimisticMergeMarksStale(t *testing.T) {
	ctrl, bankAPI, _, st := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, ctrl.Select(context.Background(), "1"))

	form := dto.SavingsAccountForm{AccSubType: "regular", Balance: decimal.NewFromInt(100), BranchCode: "BR-01"}
	account, err := ctrl.CreateSavingsAccount(context.Background(), form)
	require.NoError(t, err)

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseStale, snap.Phase)
	require.Len(t, snap.Customer.Accounts, 2)
	assert.NotNil(t, snap.Customer.AccountByNumber(account.AcctNum))

	// Account creation ends the persisted selection; the snapshot survives
	// until the operator selects again.
	_, ok, err := st.SelectedCustomerID()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateLoanAccount_RequiresSelection(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)

	form := dto.LoanAccountForm{AccSubType: "personal", TotalLoanAmount: decimal.NewFromInt(5000), BranchCode: "BR-01"}
	_, err := ctrl.CreateLoanAccount(context.Background(), form)
	require.ErrorIs(t, err, ErrNoSelection)
}

func TestDeposit_RefetchesBalance(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, ctrl.Select(context.Background(), "1"))

	txn, err := ctrl.Deposit(context.Background(), 100000001, decimal.NewFromInt(250), "cash deposit")
	require.NoError(t, err)
	require.NotNil(t, txn)

	snap := ctrl.Snapshot()
	assert.Equal(t, PhaseLoaded, snap.Phase)
	acct := snap.Customer.AccountByNumber(100000001)
	require.NotNil(t, acct)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(750)), "balance %s", acct.Balance)
}

func TestDeposit_RejectsNonPositiveAmount(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, ctrl.Select(context.Background(), "1"))

	_, err := ctrl.Deposit(context.Background(), 100000001, decimal.Zero, "")
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.Zero(t, bankAPI.txnCalls)
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, ctrl.Select(context.Background(), "1"))

	_, err := ctrl.Withdraw(context.Background(), 100000001, decimal.NewFromInt(10000), "")
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "Insufficient funds")

	// The workspace still shows the untouched balance.
	acct := ctrl.Snapshot().Customer.AccountByNumber(100000001)
	require.NotNil(t, acct)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(500)))
}

func TestWithdraw_Success(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, ctrl.Select(context.Background(), "1"))

	_, err := ctrl.Withdraw(context.Background(), 100000001, decimal.NewFromInt(200), "atm")
	require.NoError(t, err)

	acct := ctrl.Snapshot().Customer.AccountByNumber(100000001)
	require.NotNil(t, acct)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(300)))
}

func TestTransact_RequiresSelection(t *testing.T) {
	ctrl, _, _, _ := newTestController(t)

	_, err := ctrl.Deposit(context.Background(), 100000001, decimal.NewFromInt(10), "")
	require.ErrorIs(t, err, ErrNoSelection)
}

func TestOnChange_NotifiesTransitions(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())

	var phases []Phase
	ctrl.OnChange(func(snap Snapshot) {
		phases = append(phases, snap.Phase)
	})

	require.NoError(t, ctrl.Select(context.Background(), "1"))
	require.NoError(t, ctrl.ClearSelection())

	assert.Equal(t, []Phase{PhaseLoading, PhaseLoaded, PhaseEmpty}, phases)
}

func TestSnapshot_IsACopy(t *testing.T) {
	ctrl, bankAPI, _, _ := newTestController(t)
	bankAPI.put(adaCustomer())
	require.NoError(t, ctrl.Select(context.Background(), "1"))

	snap := ctrl.Snapshot()
	snap.Customer.FirstName = "Mutated"
	snap.Customer.Accounts[0].Balance = decimal.NewFromInt(-1)

	fresh := ctrl.Snapshot()
	assert.Equal(t, "Ada", fresh.Customer.FirstName)
	assert.True(t, fresh.Customer.Accounts[0].Balance.Equal(decimal.NewFromInt(500)))
}
