package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/auth"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/sirupsen/logrus"
)

const verifyTokenTTL = 24 * time.Hour

// ErrInvalidCredentials is the single failure reported by Login
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

// SignupInput is the signup form
type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	ContactNumber   string
	OTP             string
}

// Session is a freshly issued session token
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AuthOptions holds the links and lifetimes used by the auth flows
type AuthOptions struct {
	FrontendURL string
	PublicURL   string
	ResetTTL    time.Duration
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*models.User, *Session, error)
	Login(ctx context.Context, email, password string) (*models.User, *Session, error)
	Logout(userID uint) error
	ChangePassword(userID uint, currentPassword, newPassword string) error
	ForgotPassword(email string) error
	ResetPassword(token, newPassword string) error
	// VerifyEmail marks the token's user verified and returns the page to redirect to
	VerifyEmail(token string) (string, error)
	// StartEmailVerification stores a verification token and mails its link
	StartEmailVerification(user *models.User) error
}

type authService struct {
	users    UserService
	otp      OTPService
	issuer   *auth.SessionIssuer
	notifier notify.Notifier
	opts     AuthOptions
	log      logrus.FieldLogger
}

func NewAuthService(users UserService, otp OTPService, issuer *auth.SessionIssuer, notifier notify.Notifier, opts AuthOptions, logger logrus.FieldLogger) AuthService {
	if opts.ResetTTL <= 0 {
		opts.ResetTTL = time.Hour
	}
	return &authService{
		users:    users,
		otp:      otp,
		issuer:   issuer,
		notifier: notifier,
		opts:     opts,
		log:      logger,
	}
}

func validatePassword(password string) error {
	if len(password) < auth.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, auth.MinPasswordLength)
	}
	return nil
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*models.User, *Session, error) {
	email := NormalizeEmail(input.Email)
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" ||
		email == "" || input.Password == "" || input.ConfirmPassword == "" || input.OTP == "" {
		return nil, nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if err := ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	if input.Password != input.ConfirmPassword {
		return nil, nil, fmt.Errorf("%w: passwords do not match", ErrInvalidInput)
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	exists, err := s.users.ExistsByEmail(email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, fmt.Errorf("%w: user already registered", ErrInvalidInput)
	}

	if err := s.otp.VerifyAndConsume(ctx, email, input.OTP); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, nil, err
	}
	user := &models.User{
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         email,
		PasswordHash:  hash,
		ContactNumber: strings.TrimSpace(input.ContactNumber),
		AccountType:   models.AccountTypeUser,
		// OTP already proved control of the address
		IsVerified: true,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, nil, err
	}

	if err := s.otp.Consume(ctx, email); err != nil {
		s.log.WithField("email", email).WithError(err).Warn("failed to delete consumed otp")
	}

	session, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}
	s.log.WithField("user_id", user.ID).Info("user signed up")
	return user, session, nil
}

func (s *authService) Login(_ context.Context, email, password string) (*models.User, *Session, error) {
	user, err := s.users.GetUserByEmail(email)
	if errors.Is(err, ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if !user.IsVerified || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *authService) startSession(user *models.User) (*Session, error) {
	token, expiresAt, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	user.Token = token
	if err := s.users.SaveUser(user); err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) Logout(userID uint) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	user.Token = ""
	return s.users.SaveUser(user)
}

func (s *authService) ChangePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.SaveUser(user)
}

func (s *authService) ForgotPassword(email string) error {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return err
	}

	token, expiresAt, err := s.issuer.IssueFor(user.ID, user.Email, user.AccountType, auth.PurposeReset, s.opts.ResetTTL)
	if err != nil {
		return err
	}
	user.ResetPasswordToken = token
	user.ResetPasswordExpires = &expiresAt
	if err := s.users.SaveUser(user); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(s.opts.FrontendURL, "/"), token)
	s.notifier.Enqueue(notify.PasswordReset(user.Email, link))
	return nil
}

func (s *authService) ResetPassword(token, newPassword string) error {
	claims, err := s.issuer.ParsePurpose(token, auth.PurposeReset)
	if err != nil {
		return fmt.Errorf("%w: reset link is invalid or has expired", ErrInvalidInput)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil {
		return err
	}
	if user.ResetPasswordExpires == nil || time.Now().After(*user.ResetPasswordExpires) ||
		subtle.ConstantTimeCompare([]byte(user.ResetPasswordToken), []byte(token)) != 1 {
		return fmt.Errorf("%w: reset link is invalid or has expired", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetPasswordToken = ""
	user.ResetPasswordExpires = nil
	user.Token = ""
	return s.users.SaveUser(user)
}

func (s *authService) StartEmailVerification(user *models.User) error {
	token, _, err := s.issuer.IssueFor(user.ID, user.Email, user.AccountType, auth.PurposeVerify, verifyTokenTTL)
	if err != nil {
		return err
	}
	user.VerificationToken = token
	if err := s.users.SaveUser(user); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/api/auth/verify-email/%s", strings.TrimRight(s.opts.PublicURL, "/"), token)
	s.notifier.Enqueue(notify.EmailVerification(user.Email, link))
	return nil
}

func (s *authService) VerifyEmail(token string) (string, error) {
	claims, err := s.issuer.ParsePurpose(token, auth.PurposeVerify)
	if err != nil {
		return "", fmt.Errorf("%w: verification link is invalid or has expired", ErrInvalidInput)
	}
	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil {
		return "", err
	}
	if user.VerificationToken == "" ||
		subtle.ConstantTimeCompare([]byte(user.VerificationToken), []byte(token)) != 1 {
		return "", fmt.Errorf("%w: verification link is invalid or has expired", ErrInvalidInput)
	}

	user.IsVerified = true
	user.VerificationToken = ""
	if err := s.users.SaveUser(user); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/login?verified=true", strings.TrimRight(s.opts.FrontendURL, "/")), nil
}
