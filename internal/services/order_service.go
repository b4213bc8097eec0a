package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/statemachine"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	baseDeliveryTime    = 30 * time.Minute
	perItemDeliveryTime = 5 * time.Minute
)

// CreateOrderInput is a checkout request. TotalAmount is stored as supplied.
type CreateOrderInput struct {
	Items           []models.OrderItem
	TotalAmount     float64
	DeliveryAddress *models.DeliveryAddress
	PaymentMethod   models.PaymentMethodTag
	PaymentDetails  map[string]any
	CustomerDetails map[string]any
	Notes           string
	IdempotencyKey  string
}

type OrderService interface {
	// Create places an order. The bool is false when an earlier order with the
	// same idempotency key was returned instead of creating a new one.
	Create(ctx context.Context, userID uint, input CreateOrderInput) (*models.Order, bool, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	GetByID(ctx context.Context, orderID, requesterID uint, role models.AccountType) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus, expectedVersion *int, changedBy uint) (*models.Order, error)
	Cancel(ctx context.Context, orderID, requesterID uint, expectedVersion *int) (*models.Order, error)
}

type orderService struct {
	db       *gorm.DB
	users    UserService
	notifier notify.Notifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, users UserService, notifier notify.Notifier, logger logrus.FieldLogger) OrderService {
	return &orderService{db: db, users: users, notifier: notifier, log: logger, now: time.Now}
}

func validateOrderInput(input *CreateOrderInput) error {
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidInput)
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrInvalidInput, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %q quantity must be at least 1", ErrInvalidInput, item.Name)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %q price cannot be negative", ErrInvalidInput, item.Name)
		}
	}
	if input.DeliveryAddress == nil || input.DeliveryAddress.IsZero() {
		return fmt.Errorf("%w: delivery address is required", ErrInvalidInput)
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = models.PaymentCash
	}
	if !input.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, input.PaymentMethod)
	}
	return nil
}

func (s *orderService) Create(ctx context.Context, userID uint, input CreateOrderInput) (*models.Order, bool, error) {
	if err := validateOrderInput(&input); err != nil {
		return nil, false, err
	}

	db := s.db.WithContext(ctx)
	var key *string
	if k := strings.TrimSpace(input.IdempotencyKey); k != "" {
		key = &k
		if existing, err := s.findByIdempotencyKey(db, userID, k); err == nil {
			return existing, false, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	now := s.now()
	eta := now.Add(baseDeliveryTime + time.Duration(len(input.Items))*perItemDeliveryTime)
	order := &models.Order{
		UserID:                userID,
		Items:                 input.Items,
		DeliveryAddress:       *input.DeliveryAddress,
		PaymentMethod:         input.PaymentMethod,
		PaymentDetails:        input.PaymentDetails,
		CustomerDetails:       input.CustomerDetails,
		Notes:                 input.Notes,
		TotalAmount:           input.TotalAmount,
		Status:                models.StatusProcessing,
		EstimatedDeliveryTime: &eta,
		IdempotencyKey:        key,
		Version:               1,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusProcessing,
			ChangedBy: userID,
			Actor:     string(statemachine.ActorCustomer),
		}).Error
	})
	if err != nil {
		// A concurrent request with the same key won the insert
		if key != nil {
			if existing, findErr := s.findByIdempotencyKey(db, userID, *key); findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create order: %w", err)
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": userID}).Info("order created")
	s.notifyOwner(order, func(email string) notify.Notification {
		return notify.OrderConfirmation(email, order)
	})
	return order, true, nil
}

func (s *orderService) findByIdempotencyKey(db *gorm.DB, userID uint, key string) (*models.Order, error) {
	var order models.Order
	if err := db.Where("user_id = ? AND idempotency_key = ?", userID, key).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
		}
		query = query.Where("status = ?", status)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) load(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	err := db.Preload("StatusHistory", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id")
	}).First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *orderService) GetByID(ctx context.Context, orderID, requesterID uint, role models.AccountType) (*models.Order, error) {
	order, err := s.load(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && role != models.AccountTypeAdmin {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrForbidden)
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus, expectedVersion *int, changedBy uint) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	order, err := s.load(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, status, expectedVersion, changedBy, statemachine.ActorAdmin)
}

func (s *orderService) Cancel(ctx context.Context, orderID, requesterID uint, expectedVersion *int) (*models.Order, error) {
	order, err := s.load(s.db.WithContext(ctx), orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrForbidden)
	}
	return s.transition(ctx, order, models.StatusCancelled, expectedVersion, requesterID, statemachine.ActorCustomer)
}

// transition applies one state-machine step as a conditional update on version
func (s *orderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus, expectedVersion *int, changedBy uint, actor statemachine.Actor) (*models.Order, error) {
	if expectedVersion != nil && *expectedVersion != order.Version {
		return nil, fmt.Errorf("order %d at version %d: %w", order.ID, order.Version, ErrStaleVersion)
	}
	from := order.Status
	if err := statemachine.CanTransition(from, to, actor); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]any{
				"status":     to,
				"version":    gorm.Expr("version + 1"),
				"updated_at": s.now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("order %d: %w", order.ID, ErrStaleVersion)
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  changedBy,
			Actor:      string(actor),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.load(s.db.WithContext(ctx), order.ID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"from":     from,
		"to":       to,
		"actor":    actor,
	}).Info("order status changed")
	s.notifyOwner(updated, func(email string) notify.Notification {
		return notify.OrderStatusChanged(email, updated, from)
	})
	return updated, nil
}

// notifyOwner enqueues a message for the order's owner; lookup failures are only logged
func (s *orderService) notifyOwner(order *models.Order, build func(email string) notify.Notification) {
	owner, err := s.users.GetUserByID(order.UserID)
	if err != nil {
		s.log.WithField("order_id", order.ID).WithError(err).Warn("cannot notify order owner")
		return
	}
	s.notifier.Enqueue(build(owner.Email))
}
