package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PaymentIntent is what the client needs to open the gateway checkout
type PaymentIntent struct {
	Order *GatewayOrder
	KeyID string
}

type PaymentService interface {
	// CreatePaymentIntent registers amount (major units) with the gateway
	CreatePaymentIntent(ctx context.Context, amount float64) (*PaymentIntent, error)
	// VerifyCallback checks the gateway signature and records the payment once.
	// The bool is true when the payment had already been recorded.
	VerifyCallback(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.PaymentRecord, bool, error)
}

type paymentService struct {
	db        *gorm.DB
	gateway   PaymentGateway
	keyID     string
	keySecret string
	currency  string
	log       logrus.FieldLogger
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, keyID, keySecret, currency string, logger logrus.FieldLogger) PaymentService {
	return &paymentService{
		db:        db,
		gateway:   gateway,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  currency,
		log:       logger,
	}
}

// ToMinorUnits converts a major-unit amount to the smallest currency unit
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// SignPayment returns the hex HMAC-SHA256 of "orderID|paymentID"
func SignPayment(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *paymentService) CreatePaymentIntent(ctx context.Context, amount float64) (*PaymentIntent, error) {
	if amount < 1 {
		return nil, fmt.Errorf("%w: amount must be at least 1", ErrInvalidInput)
	}

	receipt := "receipt_" + uuid.New().String()
	order, err := s.gateway.CreateOrder(ctx, ToMinorUnits(amount), s.currency, receipt)
	if err != nil {
		s.log.WithField("receipt", receipt).WithError(err).Error("gateway order creation failed")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"gateway_order_id": order.ID, "amount": order.Amount}).Info("payment intent created")
	return &PaymentIntent{Order: order, KeyID: s.keyID}, nil
}

func (s *paymentService) VerifyCallback(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*models.PaymentRecord, bool, error) {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return nil, false, fmt.Errorf("%w: order id, payment id and signature are required", ErrInvalidInput)
	}

	expected := SignPayment(s.keySecret, gatewayOrderID, gatewayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		s.log.WithField("gateway_order_id", gatewayOrderID).Warn("payment signature mismatch")
		return nil, false, ErrInvalidSignature
	}

	db := s.db.WithContext(ctx)
	if existing, err := s.findRecord(db, gatewayPaymentID); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	record := &models.PaymentRecord{
		GatewayOrderID:   gatewayOrderID,
		GatewayPaymentID: gatewayPaymentID,
		Signature:        signature,
		VerifiedAt:       time.Now(),
	}
	if err := db.Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.findRecord(db, gatewayPaymentID)
			if findErr == nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}

	s.log.WithFields(logrus.Fields{
		"gateway_order_id":   gatewayOrderID,
		"gateway_payment_id": gatewayPaymentID,
	}).Info("payment verified")
	return record, false, nil
}

func (s *paymentService) findRecord(db *gorm.DB, gatewayPaymentID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := db.Where("gateway_payment_id = ?", gatewayPaymentID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}
