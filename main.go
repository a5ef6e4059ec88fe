package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"ulasan/internal/apperrors"
	"ulasan/internal/config"
	"ulasan/internal/database"
	"ulasan/internal/mail"
	"ulasan/internal/models"
	"ulasan/internal/repositories"
	"ulasan/internal/services"
	"ulasan/internal/validation"
	"ulasan/pkg/rabbitmq"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatalf("ulasan: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ulasan",
		Short:         "Review platform for books, films and music",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCommand, // serve when no subcommand is given
	}
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the schema and run the HTTP API",
			RunE:  serveCommand,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE:  migrateCommand,
		},
		newCreateSuperuserCommand(),
		&cobra.Command{
			Use:   "mailworker",
			Short: "Deliver queued mail until interrupted",
			RunE:  mailWorkerCommand,
		},
	)
	return rootCmd
}

func loadConfig() (config.Config, error) {
	return config.Load(viper.New())
}

func openDatabase(cfg config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func serveCommand(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	mailer, closeMailer, err := newMailer(cfg)
	if err != nil {
		return err
	}
	defer closeMailer()

	app := NewApp(cfg, db, mailer)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
	return nil
}

// newMailer picks the outbound mail path: the queue when RabbitMQ is
// configured, direct SMTP when only SMTP is, and the log otherwise.
func newMailer(cfg config.Config) (mail.Mailer, func(), error) {
	switch {
	case cfg.RabbitMQURL != "":
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.MailQueue})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		closeFn := func() {
			if err := mqClient.Close(); err != nil {
				log.Printf("Error closing RabbitMQ client: %v", err)
			}
		}
		return mail.NewQueueMailer(mqClient), closeFn, nil
	case cfg.SMTPAddr != "":
		return mail.NewSMTPMailer(cfg.SMTPAddr), func() {}, nil
	}
	log.Println("No RABBITMQ_URL or SMTP_ADDR configured, confirmation mail is only logged")
	return mail.LogMailer{}, func() {}, nil
}

func migrateCommand(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := openDatabase(cfg); err != nil {
		return err
	}
	log.Printf("Schema of %s database is up to date", cfg.DatabaseDriver)
	return nil
}

const (
	usernameFlag = "username"
	emailFlag    = "email"
)

var superuserFlags = map[string]cobraflags.Flag{
	usernameFlag: &cobraflags.StringFlag{
		Name:  usernameFlag,
		Usage: "Username of the new superuser (required)",
	},
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Usage: "Email address of the new superuser (required)",
	},
}

func newCreateSuperuserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an admin account that bypasses every role check",
		RunE:  createSuperuserCommand,
	}
	cobraflags.RegisterMap(cmd, superuserFlags)
	return cmd
}

type superuserInput struct {
	Username string `json:"username" validate:"required,max=150,username,notme"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

func createSuperuserCommand(_ *cobra.Command, _ []string) error {
	in := superuserInput{
		Username: superuserFlags[usernameFlag].GetString(),
		Email:    superuserFlags[emailFlag].GetString(),
	}
	if err := validation.New().Struct(in); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return fmt.Errorf("invalid superuser: %v", appErr.Fields)
		}
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	userRepo := repositories.NewGORMUserRepository(db)
	user, err := userRepo.GetByUsername(in.Username)
	switch {
	case err == nil:
		if user.Email != in.Email {
			return fmt.Errorf("user %s exists with a different email", in.Username)
		}
		user.Role = models.RoleAdmin
		user.IsSuperuser = true
		if err := userRepo.Update(user); err != nil {
			return err
		}
		log.Printf("User %s promoted to superuser", user.Username)
		return nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return err
	}

	user = &models.User{
		Username:    in.Username,
		Email:       in.Email,
		Role:        models.RoleAdmin,
		IsSuperuser: true,
	}
	if err := services.NewUserService(userRepo).Create(user); err != nil {
		return err
	}
	log.Printf("Superuser %s created; request a confirmation code through /api/v1/auth/signup to log in", user.Username)
	return nil
}

func mailWorkerCommand(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required to run the mail worker")
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.MailQueue})
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
	}
	defer mqClient.Close()

	var delivery mail.Mailer = mail.LogMailer{}
	if cfg.SMTPAddr != "" {
		delivery = mail.NewSMTPMailer(cfg.SMTPAddr)
	}
	if err := mqClient.Consume(mail.DeliveryHandler(delivery)); err != nil {
		return err
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Mail worker stopped")
	return nil
}
