package services

import (
	"testing"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestCreateUserNormalizesEmail(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)

	user := &models.User{FirstName: "Ada", LastName: "L", Email: " Ada@Pizza.TEST ", PasswordHash: "x"}
	require.NoError(t, users.CreateUser(user))
	assert.Equal(t, "ada@pizza.test", user.Email)
	assert.Equal(t, models.AccountTypeUser, user.AccountType)

	err := users.CreateUser(&models.User{FirstName: "A", LastName: "B", Email: "ADA@pizza.test", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	found, err := users.GetUserByEmail("ADA@PIZZA.test")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = users.GetUserByID(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddressDefaultIsUnique(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	owner := createTestUser(t, db, "home@pizza.test", models.AccountTypeUser, true)
	neighbour := createTestUser(t, db, "next@pizza.test", models.AccountTypeUser, true)

	home, err := users.AddAddress(owner.ID, AddressInput{Label: "Home", Street: "1 Main", City: "Rome", IsDefault: boolPtr(true)})
	require.NoError(t, err)
	theirs, err := users.AddAddress(neighbour.ID, AddressInput{Street: "2 Main", City: "Rome", IsDefault: boolPtr(true)})
	require.NoError(t, err)
	work, err := users.AddAddress(owner.ID, AddressInput{Label: "Work", Street: "9 Office", City: "Rome", IsDefault: boolPtr(true)})
	require.NoError(t, err)

	defaults := func(userID uint) []uint {
		list, err := users.ListAddresses(userID)
		require.NoError(t, err)
		var ids []uint
		for _, a := range list {
			if a.IsDefault {
				ids = append(ids, a.ID)
			}
		}
		return ids
	}
	assert.Equal(t, []uint{work.ID}, defaults(owner.ID))
	assert.Equal(t, []uint{theirs.ID}, defaults(neighbour.ID), "other users are untouched")

	_, err = users.UpdateAddress(owner.ID, home.ID, AddressInput{IsDefault: boolPtr(true), City: "Milan"})
	require.NoError(t, err)
	assert.Equal(t, []uint{home.ID}, defaults(owner.ID))

	_, err = users.UpdateAddress(neighbour.ID, home.ID, AddressInput{City: "Turin"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.AddAddress(owner.ID, AddressInput{Label: "Nowhere"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, users.DeleteAddress(owner.ID, work.ID))
	assert.ErrorIs(t, users.DeleteAddress(owner.ID, work.ID), ErrNotFound)
}

func TestPaymentMethods(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	owner := createTestUser(t, db, "card@pizza.test", models.AccountTypeUser, true)

	visa, err := users.AddPaymentMethod(owner.ID, models.PaymentMethod{CardType: "visa", LastFour: "4242", ExpiryMonth: 12, ExpiryYear: 2030, IsDefault: true})
	require.NoError(t, err)
	amex, err := users.AddPaymentMethod(owner.ID, models.PaymentMethod{CardType: "amex", LastFour: "0005", ExpiryMonth: 1, ExpiryYear: 2031, IsDefault: true})
	require.NoError(t, err)

	methods, err := users.ListPaymentMethods(owner.ID)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.False(t, methods[0].IsDefault)
	assert.True(t, methods[1].IsDefault)
	assert.Equal(t, amex.ID, methods[1].ID)

	_, err = users.AddPaymentMethod(owner.ID, models.PaymentMethod{CardType: "visa", LastFour: "42", ExpiryMonth: 1, ExpiryYear: 2030})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = users.AddPaymentMethod(owner.ID, models.PaymentMethod{CardType: "visa", LastFour: "4242", ExpiryMonth: 13, ExpiryYear: 2030})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, users.DeletePaymentMethod(owner.ID, visa.ID))
	assert.ErrorIs(t, users.DeletePaymentMethod(owner.ID, visa.ID), ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	user := createTestUser(t, db, "profile@pizza.test", models.AccountTypeUser, true)
	createTestUser(t, db, "taken@pizza.test", models.AccountTypeUser, true)

	updated, changed, err := users.UpdateProfile(user.ID, ProfileUpdate{FirstName: "Grace", ContactNumber: "555-0100"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, updated.IsVerified)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "User", updated.LastName)

	_, _, err = users.UpdateProfile(user.ID, ProfileUpdate{Email: "TAKEN@pizza.test"})
	assert.ErrorIs(t, err, ErrConflict)

	_, _, err = users.UpdateProfile(user.ID, ProfileUpdate{Email: "broken"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBulkUserUtilities(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	a := createTestUser(t, db, "a@pizza.test", models.AccountTypeUser, false)
	createTestUser(t, db, "b@pizza.test", models.AccountTypeUser, false)
	createTestUser(t, db, "c@pizza.test", models.AccountTypeUser, true)
	_, err := users.AddAddress(a.ID, AddressInput{Street: "1", City: "X"})
	require.NoError(t, err)

	verified, err := users.VerifyAll()
	require.NoError(t, err)
	assert.Equal(t, int64(2), verified)

	deleted, err := users.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	var addresses int64
	db.Model(&models.Address{}).Count(&addresses)
	assert.Zero(t, addresses)
}
