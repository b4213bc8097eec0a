package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewClient describes a partner integration to register
type NewClient struct {
	Name   string
	Domain string
	Scopes string
}

type ClientService interface {
	// CreateClient registers a client owned by ownerID and returns the plain
	// secret, which is never stored and cannot be retrieved again.
	CreateClient(ownerID uint, input NewClient) (*models.OAuthClient, string, error)
	GetClientsByUserID(userID uint) ([]models.OAuthClient, error)
	GetClientByID(id string) (*models.OAuthClient, error)
	DeleteClient(clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ownerID uint, input NewClient) (*models.OAuthClient, string, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, "", fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("client owner: %w", ErrNotFound)
		}
		return nil, "", err
	}
	if !owner.IsAdmin() {
		return nil, "", fmt.Errorf("%w: only admins can own partner clients", ErrForbidden)
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:     uuid.New().String(),
		Secret: string(hashedSecret),
		Name:   strings.TrimSpace(input.Name),
		Domain: input.Domain,
		Scopes: input.Scopes,
		UserID: ownerID,
	}
	if err := s.db.Create(client).Error; err != nil {
		return nil, "", err
	}
	return client, secret, nil
}

func (s *clientService) GetClientsByUserID(userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(clientID string, userID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	return nil
}
