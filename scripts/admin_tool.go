package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/auth"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/config"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/database"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/notify"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/seed"
	"github.com/franciscosanchezn/pizza-delivery-api/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	seedFile := flag.String("seed", "", "Load inventory and menu items from a YAML file")
	adminEmail := flag.String("create-admin", "", "Create an admin account with this email")
	password := flag.String("password", "", "Password for -create-admin")
	verifyUsers := flag.Bool("verify-users", false, "Mark every existing user as verified")
	deleteUsers := flag.Bool("delete-users", false, "Delete every user with their addresses and saved cards")
	clientName := flag.String("create-client", "", "Register a partner OAuth client with this name")
	owner := flag.String("owner", "", "Admin email owning the client for -create-client")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	db, err := database.InitDatabase(context.Background(), database.FromAppConfig(conf))
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	ctx := context.Background()
	users := services.NewUserService(db)
	ran := false

	if *seedFile != "" {
		ran = true
		runSeed(ctx, db, conf, *seedFile)
	}
	if *adminEmail != "" {
		ran = true
		createAdmin(users, *adminEmail, *password)
	}
	if *verifyUsers {
		ran = true
		n, err := users.VerifyAll()
		if err != nil {
			log.WithError(err).Fatal("Failed to verify users")
		}
		fmt.Printf("✓ Marked %d users as verified\n", n)
	}
	if *deleteUsers {
		ran = true
		n, err := users.DeleteAll()
		if err != nil {
			log.WithError(err).Fatal("Failed to delete users")
		}
		fmt.Printf("✓ Deleted %d users\n", n)
	}
	if *clientName != "" {
		ran = true
		createClient(db, users, *clientName, *owner, conf.PublicURL)
	}

	if !ran {
		flag.Usage()
		os.Exit(2)
	}
}

func runSeed(ctx context.Context, db *gorm.DB, conf *config.Config, path string) {
	f, err := seed.Load(path)
	if err != nil {
		log.WithError(err).Fatal("Failed to read seed file")
	}
	dispatcher := notify.NewDispatcher(notify.NewLogSender(log.StandardLogger()), 1, 0, log.StandardLogger())
	defer dispatcher.Close(ctx)

	inventory := services.NewInventoryService(db, dispatcher, conf.AdminEmail, log.StandardLogger())
	res, err := f.Apply(ctx, inventory, services.NewMenuService(db))
	if err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
	fmt.Printf("✓ Inventory: %d added, %d already present\n", res.InventoryAdded, res.InventorySkipped)
	fmt.Printf("✓ Menu: %d items added\n", res.MenuAdded)
}

func createAdmin(users services.UserService, email, password string) {
	if len(password) < 8 {
		log.Fatal("-password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash password")
	}
	user := &models.User{
		FirstName:    "Store",
		LastName:     "Admin",
		Email:        email,
		PasswordHash: hash,
		AccountType:  models.AccountTypeAdmin,
		IsVerified:   true,
	}
	if err := users.CreateUser(user); err != nil {
		log.WithError(err).Fatal("Failed to create admin")
	}
	fmt.Printf("✓ Admin created: %s (ID: %d)\n", user.Email, user.ID)
}

func createClient(db *gorm.DB, users services.UserService, name, ownerEmail, publicURL string) {
	if ownerEmail == "" {
		log.Fatal("-create-client requires -owner")
	}
	ownerUser, err := users.GetUserByEmail(ownerEmail)
	if err != nil {
		log.WithError(err).Fatal("Failed to find owner")
	}

	client, secret, err := services.NewClientService(db).CreateClient(ownerUser.ID, services.NewClient{Name: name})
	if err != nil {
		log.WithError(err).Fatal("Failed to create client")
	}

	fmt.Printf("✓ OAuth client created for %s\n", ownerUser.Email)
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", secret)
	fmt.Println("\nThe secret is shown only once. Request a token with:")
	fmt.Printf("curl -X POST %s/oauth/token \\\n", publicURL)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s'\n", secret)
}
