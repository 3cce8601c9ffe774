package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/advicehub/user-lifecycle/pkg/anonymous"
	"github.com/advicehub/user-lifecycle/pkg/appointment"
	"github.com/advicehub/user-lifecycle/pkg/assignment"
	"github.com/advicehub/user-lifecycle/pkg/chat"
	"github.com/advicehub/user-lifecycle/pkg/config"
	"github.com/advicehub/user-lifecycle/pkg/deletion/workflow"
	"github.com/advicehub/user-lifecycle/pkg/identity"
	"github.com/advicehub/user-lifecycle/pkg/membership"
	"github.com/advicehub/user-lifecycle/pkg/notification"
	"github.com/advicehub/user-lifecycle/pkg/store"
)

type Config struct {
	Database    config.DatabaseConfig
	Identity    config.IdentityConfig
	Chat        config.ChatConfig
	Appointment config.AppointmentConfig
	Email       config.EmailConfig
	Deletion    config.DeletionConfig
	Assignment  config.AssignmentConfig
	AppConfig   app.AppConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Error("Failed to load .env file", "err", err)
			os.Exit(-1)
		}
	}

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration from environment", "err", err)
		os.Exit(-1)
	}

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := cfg.Database.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host,
			"port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	repo := store.NewPostgresRepository(pool)

	identityClient := identity.NewHTTPClient(cfg.Identity.BaseURL, cfg.Identity.Realm,
		cfg.Identity.ClientID, cfg.Identity.Username, cfg.Identity.Password)
	chatClient := chat.NewHTTPClient(cfg.Chat.BaseURL, cfg.Chat.TechnicalUsername, cfg.Chat.TechnicalPassword)
	technicalUserID := cfg.Chat.TechnicalUserID
	if technicalUserID == "" {
		technicalUserID, err = chatClient.UserID(context.Background())
		if err != nil {
			slog.Error("Failed resolving technical chat user id", "err", err)
			os.Exit(-1)
		}
	}
	chatFacade := chat.NewFacade(chatClient, technicalUserID)
	appointmentClient := appointment.NewHTTPClient(cfg.Appointment.BaseURL, cfg.Appointment.APIKey)
	nameRegistry := anonymous.NewInMemRegistry(cfg.Deletion.AnonymousNames)

	notifications := notification.NewManager()
	emailNotifier, err := notification.NewEmailNotifier(cfg.Email.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed creating email notifier", "err", err)
		os.Exit(-1)
	}
	notifications.RegisterNotifier(notification.EmailSystem, emailNotifier)
	if err := registerNotices(notifications); err != nil {
		slog.Error("Failed registering notice templates", "err", err)
		os.Exit(-1)
	}

	var reporter *workflow.ErrorReporter
	if cfg.Deletion.ReportTo != "" {
		reporter = workflow.NewErrorReporter(notifications, cfg.Deletion.ReportTo)
	}

	deletionService := workflow.NewService(workflow.Dependencies{
		Askers:             repo,
		AskerAgencies:      repo,
		Consultants:        repo,
		ConsultantAgencies: repo,
		Sessions:           repo,
		Monitorings:        repo,
		SessionData:        repo,
		GroupChats:         repo,
		Identity:           identityClient,
		Chat:               chatFacade,
		Appointments:       appointmentClient,
		AnonymousNames:     nameRegistry,
		Reporter:           reporter,
	})

	conditions := membership.NewConditionProvider(identityClient)
	memberships := membership.NewService(chatFacade, conditions)
	assignments := assignment.NewService(repo, repo, memberships, notifications,
		cfg.Assignment.ReportTo, cfg.Assignment.Workers)
	defer assignments.Stop()

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Deletion.CronSchedule, func() {
		if err := deletionService.DeleteFlaggedAccounts(context.Background()); err != nil {
			slog.Error("Deletion sweep failed", "err", err)
		}
	})
	if err != nil {
		slog.Error("Failed scheduling deletion sweep", "schedule", cfg.Deletion.CronSchedule, "err", err)
		os.Exit(-1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Deletion sweep scheduled", "schedule", cfg.Deletion.CronSchedule)

	server.Run()
}
