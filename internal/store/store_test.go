package store

import (
	"testing"

	"bankdesk/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeProfile() models.Profile {
	return models.Profile{
		UserID:    gofakeit.UUID(),
		UserName:  gofakeit.Username(),
		UserEmail: gofakeit.Email(),
	}
}

func TestSetSession_RoundTrip(t *testing.T) {
	s := SetupTestStore(t)
	profile := fakeProfile()

	require.NoError(t, s.SetSession("token-abc", profile))

	token, ok, err := s.Token()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "token-abc", token)

	stored, ok, err := s.Profile()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, profile, stored)
}

func TestSetSession_OverwritesPreviousSession(t *testing.T) {
	s := SetupTestStore(t)

	require.NoError(t, s.SetSession("first", fakeProfile()))

	second := fakeProfile()
	require.NoError(t, s.SetSession("second", second))

	token, ok, err := s.Token()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", token)

	stored, _, err := s.Profile()
	require.NoError(t, err)
	assert.Equal(t, second, stored)
}

func TestSetSession_AbsentTokenClearsPair(t *testing.T) {
	s := SetupTestStore(t)
	require.NoError(t, s.SetSession("token-abc", fakeProfile()))

	// Either half missing tears down the whole pair.
	require.NoError(t, s.SetSession("", fakeProfile()))

	_, ok, err := s.Token()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Profile()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetSession_ZeroProfileClearsPair(t *testing.T) {
	s := SetupTestStore(t)
	require.NoError(t, s.SetSession("token-abc", fakeProfile()))

	require.NoError(t, s.SetSession("token-new", models.Profile{}))

	_, ok, err := s.Token()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear_Idempotent(t *testing.T) {
	s := SetupTestStore(t)
	require.NoError(t, s.SetSession("token-abc", fakeProfile()))
	require.NoError(t, s.SetSelectedCustomerID("C100"))

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())

	_, ok, err := s.Token()
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.SelectedCustomerID()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectedCustomerID_Slot(t *testing.T) {
	s := SetupTestStore(t)

	_, ok, err := s.SelectedCustomerID()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetSelectedCustomerID("C100"))

	id, ok, err := s.SelectedCustomerID()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "C100", id)

	// Overwritten, never merged.
	require.NoError(t, s.SetSelectedCustomerID("C200"))
	id, _, err = s.SelectedCustomerID()
	require.NoError(t, err)
	assert.Equal(t, "C200", id)

	require.NoError(t, s.ClearSelectedCustomerID())
	_, ok, err = s.SelectedCustomerID()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSealedStore_TokenRoundTrip(t *testing.T) {
	s := SetupSealedTestStore(t, "correct horse battery staple")
	require.NoError(t, s.SetSession("token-sealed", fakeProfile()))

	token, ok, err := s.Token()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "token-sealed", token)

	// The raw record must not contain the plaintext token.
	raw, ok, err := s.get(KeyAuthToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(raw), "token-sealed")
}

func TestSealedStore_WrongPassphraseFailsClosed(t *testing.T) {
	s := SetupSealedTestStore(t, "right")
	require.NoError(t, s.SetSession("token-sealed", fakeProfile()))

	s.sealer = NewSealer("wrong")

	_, ok, err := s.Token()
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRecordEvent_AppendsToActivityLog(t *testing.T) {
	s := SetupTestStore(t)

	require.NoError(t, s.RecordEvent("customer.select", "customer", "C100", ""))
	require.NoError(t, s.RecordEvent("transaction.deposit", "account", "9000000001", "150.00"))

	events, err := s.RecentEvents(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEmpty(t, events[0].ID)
}
