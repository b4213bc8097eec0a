package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}

func TestGormOTPStore(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := NewGormOTPStore(db)

	_, err := store.Latest(ctx, "a@pizza.test")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	require.NoError(t, store.Replace(ctx, "a@pizza.test", "111111", time.Minute))
	require.NoError(t, store.Replace(ctx, "a@pizza.test", "222222", time.Minute))

	code, err := store.Latest(ctx, "a@pizza.test")
	require.NoError(t, err)
	assert.Equal(t, "222222", code)

	var count int64
	db.Model(&models.OTP{}).Where("email = ?", "a@pizza.test").Count(&count)
	assert.Equal(t, int64(1), count, "earlier codes are replaced")

	require.NoError(t, store.DeleteAll(ctx, "a@pizza.test"))
	_, err = store.Latest(ctx, "a@pizza.test")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestGormOTPStoreIgnoresExpired(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	store := NewGormOTPStore(db)

	require.NoError(t, db.Create(&models.OTP{
		Email: "old@pizza.test", Code: "123456", ExpiresAt: time.Now().Add(-time.Second),
	}).Error)

	_, err := store.Latest(ctx, "old@pizza.test")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestRedisOTPStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisOTPStore(client)

	require.NoError(t, store.Replace(ctx, "r@pizza.test", "333333", 10*time.Minute))
	assert.True(t, mr.Exists("otp:r@pizza.test"))

	code, err := store.Latest(ctx, "r@pizza.test")
	require.NoError(t, err)
	assert.Equal(t, "333333", code)

	mr.FastForward(11 * time.Minute)
	_, err = store.Latest(ctx, "r@pizza.test")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	require.NoError(t, store.Replace(ctx, "r@pizza.test", "444444", time.Minute))
	require.NoError(t, store.DeleteAll(ctx, "r@pizza.test"))
	assert.False(t, mr.Exists("otp:r@pizza.test"))
}

func newOTPService(t *testing.T, sender notify.Sender) (OTPService, UserService, OTPStore) {
	db := setupTestDB(t)
	users := NewUserService(db)
	store := NewGormOTPStore(db)
	return NewOTPService(store, users, sender, 10*time.Minute, nullLogger()), users, store
}

func TestRequestCode(t *testing.T) {
	ctx := context.Background()
	sender := &recordingSender{}
	svc, _, store := newOTPService(t, sender)

	code, err := svc.RequestCode(ctx, "  New@Pizza.test ")
	require.NoError(t, err)

	stored, err := store.Latest(ctx, "new@pizza.test")
	require.NoError(t, err)
	assert.Equal(t, code, stored)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, notify.KindOTP, sender.sent[0].Kind)
	assert.Equal(t, "new@pizza.test", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, code)
}

func TestRequestCodeRejections(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newOTPService(t, &recordingSender{})

	_, err := svc.RequestCode(ctx, "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, users.CreateUser(&models.User{FirstName: "A", LastName: "B", Email: "taken@pizza.test", PasswordHash: "x"}))
	_, err = svc.RequestCode(ctx, "TAKEN@pizza.test")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRequestCodeDeliveryFailureKeepsCode(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newOTPService(t, &recordingSender{err: errors.New("smtp down")})

	_, err := svc.RequestCode(ctx, "x@pizza.test")
	assert.ErrorIs(t, err, ErrDelivery)

	_, err = store.Latest(ctx, "x@pizza.test")
	assert.NoError(t, err)
}

func TestVerifyAndConsume(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newOTPService(t, &recordingSender{})

	assert.ErrorIs(t, svc.VerifyAndConsume(ctx, "v@pizza.test", "123456"), ErrOTPNotFound)

	require.NoError(t, store.Replace(ctx, "v@pizza.test", "654321", time.Minute))
	assert.ErrorIs(t, svc.VerifyAndConsume(ctx, "v@pizza.test", "654320"), ErrOTPMismatch)
	assert.NoError(t, svc.VerifyAndConsume(ctx, "V@pizza.test", "654321"))

	require.NoError(t, svc.Consume(ctx, "v@pizza.test"))
	assert.ErrorIs(t, svc.VerifyAndConsume(ctx, "v@pizza.test", "654321"), ErrOTPNotFound)
}
