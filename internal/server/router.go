package server

import (
	"github.com/franciscosanchezn/pizza-delivery-api/internal/auth"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/controllers"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/middleware"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services groups the domain services the HTTP layer depends on
type Services struct {
	Users     services.UserService
	Auth      services.AuthService
	OTP       services.OTPService
	Orders    services.OrderService
	Inventory services.InventoryService
	Payments  services.PaymentService
	Menu      services.MenuService
	Clients   services.ClientService
}

// Options holds the HTTP-level settings taken from configuration
type Options struct {
	CORSOrigins  []string
	EchoOTP      bool
	SecureCookie bool
	Logger       logrus.FieldLogger
}

// NewRouter builds the gin engine with the middleware chain and every route
func NewRouter(db *gorm.DB, issuer *auth.SessionIssuer, oauth *auth.OAuthService, svc Services, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(opts.Logger),
		middleware.RequestLogger(opts.Logger),
		middleware.CORS(opts.CORSOrigins),
	)

	authController := controllers.NewAuthController(svc.Auth, svc.OTP, opts.EchoOTP, opts.SecureCookie)
	userController := controllers.NewUserController(svc.Users, svc.Auth, opts.Logger)
	menuController := controllers.NewMenuController(svc.Menu)
	orderController := controllers.NewOrderController(svc.Orders)
	inventoryController := controllers.NewInventoryController(svc.Inventory)
	paymentController := controllers.NewPaymentController(svc.Payments)
	clientController := controllers.NewClientController(svc.Clients)

	session := middleware.SessionAuth(issuer, svc.Users)
	adminOnly := middleware.RequireRole(models.AccountTypeAdmin)

	// Partner token endpoint
	router.POST("/oauth/token", oauth.HandleToken)

	api := router.Group("/api")
	api.GET("/health", controllers.Health(db))

	authApi := api.Group("/auth")
	{
		authApi.POST("/sendotp", authController.SendOTP)
		authApi.POST("/signup", authController.Signup)
		authApi.POST("/login", authController.Login)
		authApi.POST("/forgot-password", authController.ForgotPassword)
		authApi.POST("/reset-password/:token", authController.ResetPassword)
		authApi.GET("/verify-email/:token", authController.VerifyEmail)
		authApi.POST("/logout", session, authController.Logout)
		authApi.POST("/change-password", session, authController.ChangePassword)
	}

	usersApi := api.Group("/users", session)
	{
		usersApi.GET("/profile", userController.GetProfile)
		usersApi.PUT("/profile", userController.UpdateProfile)
		usersApi.GET("/addresses", userController.ListAddresses)
		usersApi.POST("/addresses", userController.AddAddress)
		usersApi.PUT("/addresses/:id", userController.UpdateAddress)
		usersApi.DELETE("/addresses/:id", userController.DeleteAddress)
		usersApi.GET("/payment-methods", userController.ListPaymentMethods)
		usersApi.POST("/payment-methods", userController.AddPaymentMethod)
		usersApi.DELETE("/payment-methods/:id", userController.DeletePaymentMethod)
	}

	menuApi := api.Group("/menu")
	{
		menuApi.GET("", menuController.GetAll)
		menuApi.GET("/category/:categoryName", menuController.GetByCategory)
		menuApi.GET("/:id", menuController.GetByID)
		menuApi.POST("", session, adminOnly, menuController.Create)
		menuApi.PUT("/:id", session, adminOnly, menuController.Update)
		menuApi.DELETE("/:id", session, adminOnly, menuController.Delete)
	}

	ordersApi := api.Group("/orders", session)
	{
		ordersApi.POST("/create", orderController.Create)
		ordersApi.GET("/history", orderController.History)
		ordersApi.GET("/:id", orderController.GetByID)
		ordersApi.PATCH("/:id/status", adminOnly, orderController.UpdateStatus)
		ordersApi.POST("/:id/cancel", orderController.Cancel)
	}

	adminApi := api.Group("/admin", session, adminOnly)
	{
		adminApi.GET("/orders", orderController.ListAll)

		inventoryApi := adminApi.Group("/inventory")
		inventoryApi.GET("", inventoryController.List)
		inventoryApi.GET("/low-stock", inventoryController.LowStock)
		inventoryApi.GET("/category/:category", inventoryController.ByCategory)
		inventoryApi.GET("/:id", inventoryController.GetByID)
		inventoryApi.POST("", inventoryController.Add)
		inventoryApi.PUT("/:id", inventoryController.Update)
		inventoryApi.PATCH("/:id/threshold", inventoryController.SetThreshold)
		inventoryApi.DELETE("/:id", inventoryController.Delete)
	}

	paymentApi := api.Group("/payment")
	{
		paymentApi.POST("/create-order", paymentController.CreateOrder)
		paymentApi.POST("/verify-payment", paymentController.VerifyPayment)
	}

	clientsApi := api.Group("/clients", session, adminOnly)
	{
		clientsApi.POST("", clientController.CreateClient)
		clientsApi.GET("", clientController.ListClients)
		clientsApi.DELETE("/:id", clientController.DeleteClient)
	}

	return router
}
