package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"gorm.io/gorm"
)

// ProfileUpdate carries the editable profile fields; empty fields are left unchanged
type ProfileUpdate struct {
	FirstName     string
	LastName      string
	Email         string
	ContactNumber string
}

// AddressInput carries address fields; nil IsDefault leaves the flag unchanged on update
type AddressInput struct {
	Label      string
	Street     string
	City       string
	State      string
	PostalCode string
	IsDefault  *bool
}

type UserService interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
	SaveUser(user *models.User) error

	// UpdateProfile applies the update and reports whether the email changed.
	// A changed email clears the verification flag.
	UpdateProfile(userID uint, update ProfileUpdate) (*models.User, bool, error)

	ListAddresses(userID uint) ([]models.Address, error)
	AddAddress(userID uint, input AddressInput) (*models.Address, error)
	UpdateAddress(userID, addressID uint, input AddressInput) (*models.Address, error)
	DeleteAddress(userID, addressID uint) error

	ListPaymentMethods(userID uint) ([]models.PaymentMethod, error)
	AddPaymentMethod(userID uint, method models.PaymentMethod) (*models.PaymentMethod, error)
	DeletePaymentMethod(userID, methodID uint) error

	// VerifyAll and DeleteAll back the operator CLI
	VerifyAll() (int64, error)
	DeleteAll() (int64, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func (s *userService) CreateUser(user *models.User) error {
	user.Email = NormalizeEmail(user.Email)
	exists, err := s.ExistsByEmail(user.Email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: user with email %s", ErrAlreadyExists, user.Email)
	}
	if user.AccountType == "" {
		user.AccountType = models.AccountTypeUser
	}
	return s.db.Create(user).Error
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("LOWER(email) = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Addresses").Preload("PaymentMethods").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("LOWER(email) = ?", NormalizeEmail(email)).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *userService) SaveUser(user *models.User) error {
	return s.db.Omit("Addresses", "PaymentMethods").Save(user).Error
}

func (s *userService) UpdateProfile(userID uint, update ProfileUpdate) (*models.User, bool, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, false, err
	}

	emailChanged := false
	if update.Email != "" {
		email := NormalizeEmail(update.Email)
		if err := ValidateEmail(email); err != nil {
			return nil, false, err
		}
		if email != user.Email {
			exists, err := s.ExistsByEmail(email)
			if err != nil {
				return nil, false, err
			}
			if exists {
				return nil, false, fmt.Errorf("%w: email already in use", ErrConflict)
			}
			user.Email = email
			user.IsVerified = false
			emailChanged = true
		}
	}
	if update.FirstName != "" {
		user.FirstName = strings.TrimSpace(update.FirstName)
	}
	if update.LastName != "" {
		user.LastName = strings.TrimSpace(update.LastName)
	}
	if update.ContactNumber != "" {
		user.ContactNumber = strings.TrimSpace(update.ContactNumber)
	}

	if err := s.SaveUser(user); err != nil {
		return nil, false, err
	}
	return user, emailChanged, nil
}

func (s *userService) ListAddresses(userID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *userService) AddAddress(userID uint, input AddressInput) (*models.Address, error) {
	if strings.TrimSpace(input.Street) == "" || strings.TrimSpace(input.City) == "" {
		return nil, fmt.Errorf("%w: street and city are required", ErrInvalidInput)
	}
	address := &models.Address{
		UserID:     userID,
		Label:      input.Label,
		Street:     input.Street,
		City:       input.City,
		State:      input.State,
		PostalCode: input.PostalCode,
		IsDefault:  input.IsDefault != nil && *input.IsDefault,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := clearDefault(tx, &models.Address{}, userID); err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (s *userService) UpdateAddress(userID, addressID uint, input AddressInput) (*models.Address, error) {
	var address models.Address
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := findOwned(tx, &address, addressID, userID); err != nil {
			return err
		}
		if input.Label != "" {
			address.Label = input.Label
		}
		if input.Street != "" {
			address.Street = input.Street
		}
		if input.City != "" {
			address.City = input.City
		}
		if input.State != "" {
			address.State = input.State
		}
		if input.PostalCode != "" {
			address.PostalCode = input.PostalCode
		}
		if input.IsDefault != nil {
			if *input.IsDefault && !address.IsDefault {
				if err := clearDefault(tx, &models.Address{}, userID); err != nil {
					return err
				}
			}
			address.IsDefault = *input.IsDefault
		}
		return tx.Save(&address).Error
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *userService) DeleteAddress(userID, addressID uint) error {
	return deleteOwned(s.db, &models.Address{}, addressID, userID)
}

func (s *userService) ListPaymentMethods(userID uint) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := s.db.Where("user_id = ?", userID).Order("id").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

func (s *userService) AddPaymentMethod(userID uint, method models.PaymentMethod) (*models.PaymentMethod, error) {
	if err := validatePaymentMethod(method); err != nil {
		return nil, err
	}
	method.ID = 0
	method.UserID = userID

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if method.IsDefault {
			if err := clearDefault(tx, &models.PaymentMethod{}, userID); err != nil {
				return err
			}
		}
		return tx.Create(&method).Error
	})
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (s *userService) DeletePaymentMethod(userID, methodID uint) error {
	return deleteOwned(s.db, &models.PaymentMethod{}, methodID, userID)
}

func (s *userService) VerifyAll() (int64, error) {
	result := s.db.Model(&models.User{}).Where("is_verified = ?", false).Update("is_verified", true)
	return result.RowsAffected, result.Error
}

func (s *userService) DeleteAll() (int64, error) {
	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Address{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.PaymentMethod{}).Error; err != nil {
			return err
		}
		result := tx.Where("1 = 1").Delete(&models.User{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

func validatePaymentMethod(m models.PaymentMethod) error {
	if strings.TrimSpace(m.CardType) == "" {
		return fmt.Errorf("%w: cardType is required", ErrInvalidInput)
	}
	if len(m.LastFour) != 4 || strings.Trim(m.LastFour, "0123456789") != "" {
		return fmt.Errorf("%w: lastFour must be four digits", ErrInvalidInput)
	}
	if m.ExpiryMonth < 1 || m.ExpiryMonth > 12 {
		return fmt.Errorf("%w: expiryMonth must be between 1 and 12", ErrInvalidInput)
	}
	if m.ExpiryYear < 2000 {
		return fmt.Errorf("%w: expiryYear is invalid", ErrInvalidInput)
	}
	return nil
}

// clearDefault unsets is_default on every row of model owned by userID
func clearDefault(tx *gorm.DB, model any, userID uint) error {
	return tx.Model(model).Where("user_id = ? AND is_default = ?", userID, true).Update("is_default", false).Error
}

func findOwned(tx *gorm.DB, dest any, id, userID uint) error {
	err := tx.Where("id = ? AND user_id = ?", id, userID).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func deleteOwned(db *gorm.DB, model any, id, userID uint) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
