package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoan_BeforeCreate(t *testing.T) {
	loan := &Loan{}
	require.NoError(t, loan.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, loan.ID)
	assert.False(t, loan.BorrowedAt.IsZero())
	assert.Equal(t, loan.BorrowedAt.Add(DefaultLoanPeriod), loan.DueAt)
}

func TestAccount_BeforeCreateKeepsID(t *testing.T) {
	id := uuid.New()
	account := &Account{ID: id, Role: RoleLibrarian}
	require.NoError(t, account.BeforeCreate(nil))

	assert.Equal(t, id, account.ID)
	assert.True(t, account.IsLibrarian())
}

func TestAccount_SetPassword(t *testing.T) {
	account := &Account{}
	require.NoError(t, account.SetPassword("admin123"))

	assert.NotEmpty(t, account.PasswordHash)
	assert.True(t, account.CheckPassword("admin123"))
	assert.False(t, account.CheckPassword("wrong"))
}
