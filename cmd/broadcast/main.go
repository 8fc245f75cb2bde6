// cmd/broadcast/main.go
// Sends an announcement to all non-banned users from the command line

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/finlove/finlove-backend/internal/common/database"
	"github.com/finlove/finlove-backend/internal/config"
	"github.com/finlove/finlove-backend/internal/notification"
	"github.com/finlove/finlove-backend/internal/profile"
	"github.com/finlove/finlove-backend/internal/verification"
)

func main() {
	subject := flag.String("subject", "", "announcement subject (required)")
	body := flag.String("body", "", "announcement body (required)")
	flag.Parse()

	if *subject == "" || *body == "" {
		log.Fatal("both -subject and -body are required")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (%v), using environment variables", err)
	}

	cfg := config.Load()

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	var emailProvider verification.EmailProvider
	switch cfg.EmailProvider {
	case "sendgrid":
		emailProvider = verification.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom)
	case "smtp":
		emailProvider = verification.NewSMTPEmailProvider(
			cfg.SMTPHost,
			fmt.Sprintf("%d", cfg.SMTPPort),
			cfg.SMTPUser,
			cfg.SMTPPassword,
			cfg.EmailFrom,
		)
	default:
		emailProvider = verification.NewMockEmailProvider()
		log.Println("using mock email provider, emails will not be delivered")
	}

	var smsProvider notification.SMSProvider
	if cfg.SMSProvider == "twilio" {
		smsProvider = notification.NewTwilioSMSProvider(
			cfg.TwilioAccountSID,
			cfg.TwilioAuthToken,
			cfg.TwilioFromNumber,
		)
	}

	// No API process here, so the hub has no connected clients; it only
	// exists to satisfy the service wiring.
	hub := notification.NewHub()
	go hub.Run()

	profileRepo := profile.NewPostgresRepository(db)
	service := notification.NewService(hub, profileRepo, emailProvider, smsProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := service.Broadcast(ctx, *subject, *body)
	if err != nil {
		log.Fatalf("broadcast failed: %v", err)
	}

	log.Printf("broadcast done: %d recipients, %d emails, %d sms, %d failures",
		report.Recipients, report.Emails, report.SMS, report.Failures)
}
