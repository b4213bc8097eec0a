package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// OTPStore persists signup codes. Only the latest unexpired code per email
// is ever returned.
type OTPStore interface {
	// Replace drops every earlier code for the email and stores the new one
	Replace(ctx context.Context, email, code string, ttl time.Duration) error
	// Latest returns the newest unexpired code or ErrOTPNotFound
	Latest(ctx context.Context, email string) (string, error)
	// DeleteAll removes every code for the email
	DeleteAll(ctx context.Context, email string) error
}

type gormOTPStore struct {
	db *gorm.DB
}

// NewGormOTPStore keeps codes in the otps table
func NewGormOTPStore(db *gorm.DB) OTPStore {
	return &gormOTPStore{db: db}
}

func (s *gormOTPStore) Replace(ctx context.Context, email, code string, ttl time.Duration) error {
	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ? OR expires_at <= ?", email, now).Delete(&models.OTP{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.OTP{Email: email, Code: code, ExpiresAt: now.Add(ttl)}).Error
	})
}

func (s *gormOTPStore) Latest(ctx context.Context, email string) (string, error) {
	var otp models.OTP
	err := s.db.WithContext(ctx).
		Where("email = ? AND expires_at > ?", email, time.Now()).
		Order("created_at DESC, id DESC").
		First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return otp.Code, nil
}

func (s *gormOTPStore) DeleteAll(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.OTP{}).Error
}

type redisOTPStore struct {
	client *redis.Client
}

// NewRedisOTPStore keeps one code per email under otp:<email> with a TTL
func NewRedisOTPStore(client *redis.Client) OTPStore {
	return &redisOTPStore{client: client}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", email)
}

func (s *redisOTPStore) Replace(ctx context.Context, email, code string, ttl time.Duration) error {
	return s.client.Set(ctx, otpKey(email), code, ttl).Err()
}

func (s *redisOTPStore) Latest(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *redisOTPStore) DeleteAll(ctx context.Context, email string) error {
	return s.client.Del(ctx, otpKey(email)).Err()
}
