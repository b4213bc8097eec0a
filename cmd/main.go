package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/pizza-delivery-api/docs" // Import generated docs
	"github.com/franciscosanchezn/pizza-delivery-api/internal/auth"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/config"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/controllers"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/database"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/server"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const (
	shutdownTimeout   = 15 * time.Second
	tokenPurgeEvery   = time.Hour
	readHeaderTimeout = 10 * time.Second
)

// @title Pizza Delivery API
// @version 1.0
// @description Ordering, payments and kitchen inventory for a pizza delivery service
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	// Initialize database connection
	db := setupDatabase(configuration)

	// Notifications leave the request cycle through the dispatcher
	sender := setupSender(configuration)
	dispatcher := notify.NewDispatcher(sender, configuration.NotificationWorkers, configuration.NotificationQueueLen, log.StandardLogger())

	issuer := auth.NewSessionIssuer(configuration.JWTSecret, configuration.JWTExpiresIn)
	oauthService := auth.NewOAuthService(db, issuer)
	svc := setupServices(configuration, db, issuer, sender, dispatcher)

	if configuration.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	controllers.SetExposeErrorDetail(!configuration.IsProduction())

	router := server.NewRouter(db, issuer, oauthService, svc, server.Options{
		CORSOrigins:  configuration.CORSOrigins,
		EchoOTP:      configuration.DebugEchoOTP,
		SecureCookie: configuration.IsProduction(),
		Logger:       log.StandardLogger(),
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go purgeExpiredTokens(ctx, oauthService)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Pending notifications were not delivered")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger uses a JSON formatter with the level derived from the environment.
// An explicit LOG_LEVEL overrides it.
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(config.LevelForEnvironment(conf.Environment))
	if os.Getenv("LOG_LEVEL") == "" {
		return
	}
	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		log.WithField("log_level", conf.LogLevel).Warn("Unknown LOG_LEVEL, keeping environment default")
		return
	}
	log.SetLevel(level)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	log.Info("Loading configuration from environment variables")
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase connects, migrates the schema and seeds the menu when it is empty
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(context.Background(), database.FromAppConfig(conf))
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))

	seeded, err := services.NewMenuService(db).SeedIfEmpty(context.Background(), services.DefaultMenu())
	checkPanicErr(err)
	if seeded > 0 {
		log.WithField("items", seeded).Info("Menu was empty, seeded default items")
	}
	return db
}

// setupSender picks SMTP when configured, logging otherwise, and adds Telegram admin alerts
func setupSender(conf *config.Config) notify.Sender {
	var senders notify.MultiSender
	if conf.SMTPHost != "" {
		senders = append(senders, notify.NewEmailSender(conf.SMTPHost, conf.SMTPPort, conf.SMTPUsername, conf.SMTPPassword, conf.MailFrom))
	} else {
		log.Warn("SMTP_HOST not set, notifications will only be logged")
		senders = append(senders, notify.NewLogSender(log.StandardLogger()))
	}
	if conf.TelegramBotToken != "" && conf.TelegramAdminChatID != "" {
		senders = append(senders, notify.NewTelegramSender(conf.TelegramBotToken, conf.TelegramAdminChatID,
			notify.KindLowStock, notify.KindOrderConfirmation))
	}
	if len(senders) == 1 {
		return senders[0]
	}
	return senders
}

func setupOTPStore(conf *config.Config, db *gorm.DB) services.OTPStore {
	if conf.OTPStore != "redis" {
		return services.NewGormOTPStore(db)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.RedisAddr,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	checkPanicErr(client.Ping(ctx).Err())
	log.WithField("redis_addr", conf.RedisAddr).Info("OTP codes stored in Redis")
	return services.NewRedisOTPStore(client)
}

func setupServices(conf *config.Config, db *gorm.DB, issuer *auth.SessionIssuer, sender notify.Sender, notifier notify.Notifier) server.Services {
	logger := log.StandardLogger()
	users := services.NewUserService(db)
	otp := services.NewOTPService(setupOTPStore(conf, db), users, sender, conf.OTPTTL, logger)
	gateway := services.NewRazorpayClient(conf.RazorpayBaseURL, conf.RazorpayKeyID, conf.RazorpayKeySecret)

	return server.Services{
		Users: users,
		Auth: services.NewAuthService(users, otp, issuer, notifier, services.AuthOptions{
			FrontendURL: conf.FrontendURL,
			PublicURL:   conf.PublicURL,
			ResetTTL:    conf.ResetTokenTTL,
		}, logger),
		OTP:       otp,
		Orders:    services.NewOrderService(db, users, notifier, logger),
		Inventory: services.NewInventoryService(db, notifier, conf.AdminEmail, logger),
		Payments:  services.NewPaymentService(db, gateway, conf.RazorpayKeyID, conf.RazorpayKeySecret, conf.PaymentCurrency, logger),
		Menu:      services.NewMenuService(db),
		Clients:   services.NewClientService(db),
	}
}

// purgeExpiredTokens removes stale partner tokens until ctx is cancelled
func purgeExpiredTokens(ctx context.Context, oauthService *auth.OAuthService) {
	ticker := time.NewTicker(tokenPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := oauthService.PurgeExpiredTokens(ctx)
			if err != nil {
				log.WithError(err).Warn("Failed to purge expired partner tokens")
				continue
			}
			if n > 0 {
				log.WithField("purged", n).Debug("Purged expired partner tokens")
			}
		}
	}
}
