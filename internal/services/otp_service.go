package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/sirupsen/logrus"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// OTPService issues and checks the one-time codes that gate signup
type OTPService interface {
	// RequestCode sends a fresh code to an email that has no account yet
	RequestCode(ctx context.Context, email string) (string, error)
	// VerifyAndConsume checks the code without deleting it
	VerifyAndConsume(ctx context.Context, email, code string) error
	// Consume deletes every code for the email once signup completed
	Consume(ctx context.Context, email string) error
}

type otpService struct {
	store  OTPStore
	users  UserService
	sender notify.Sender
	ttl    time.Duration
	log    logrus.FieldLogger
}

func NewOTPService(store OTPStore, users UserService, sender notify.Sender, ttl time.Duration, logger logrus.FieldLogger) OTPService {
	return &otpService{store: store, users: users, sender: sender, ttl: ttl, log: logger}
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail rejects anything that is not a bare address
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return nil
}

func (s *otpService) RequestCode(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return "", err
	}

	exists, err := s.users.ExistsByEmail(email)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: user already registered", ErrInvalidInput)
	}

	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	if err := s.store.Replace(ctx, email, code, s.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	// The code stays stored when delivery fails; the user can request another.
	if err := s.sender.Send(ctx, notify.OTPCode(email, code, s.ttl)); err != nil {
		s.log.WithField("email", email).WithError(err).Error("failed to deliver otp")
		return "", fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	s.log.WithField("email", email).Info("otp issued")
	return code, nil
}

func (s *otpService) VerifyAndConsume(ctx context.Context, email, code string) error {
	stored, err := s.store.Latest(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(strings.TrimSpace(code))) != 1 {
		return ErrOTPMismatch
	}
	return nil
}

func (s *otpService) Consume(ctx context.Context, email string) error {
	return s.store.DeleteAll(ctx, NormalizeEmail(email))
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
