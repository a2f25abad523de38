package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"

	"github.com/edvantage/crm-backend/internal/core/events"
	"github.com/edvantage/crm-backend/internal/core/gateway"
	"github.com/edvantage/crm-backend/internal/core/workspace"
	"github.com/edvantage/crm-backend/internal/crm/handlers"
	"github.com/edvantage/crm-backend/internal/crm/middleware"
	"github.com/edvantage/crm-backend/internal/crm/repositories"
	"github.com/edvantage/crm-backend/internal/crm/services"
	"github.com/edvantage/crm-backend/internal/jobs"
	"github.com/edvantage/crm-backend/internal/shared/config"
	"github.com/edvantage/crm-backend/internal/shared/database"
	"github.com/edvantage/crm-backend/internal/shared/utils"

	_ "github.com/edvantage/crm-backend/cmd/api/docs"
)

// @title Edvantage CRM API
// @version 1.0
// @description Lead management backend for ed-tech sales teams
// @contact.name API Support
// @contact.email support@edvantage.io
// @license.name MIT
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting crm-api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories (use GORM instance)
	workspaceRepo := repositories.NewWorkspaceRepo(db.GORM)
	userRepo := repositories.NewUserRepo(db.GORM)
	leadRepo := repositories.NewLeadRepo(db.GORM)
	ruleRepo := repositories.NewRuleRepo(db.GORM)
	triggerRepo := repositories.NewTriggerRepo(db.GORM)
	activityRepo := repositories.NewActivityRepo(db.GORM)
	statusRepo := repositories.NewStatusRepo(db.GORM)
	fieldRepo := repositories.NewFieldRepo(db.GORM)
	taskRepo := repositories.NewTaskRepo(db.GORM)
	paymentRepo := repositories.NewPaymentRepo(db.GORM)

	// Init WhatsApp gateway
	provider, err := gateway.NewProvider(&gateway.ProviderConfig{
		Type:            gateway.ProviderType(cfg.GatewayProvider),
		AiSensyAPIKey:   cfg.AiSensyAPIKey,
		AiSensyURL:      cfg.AiSensyAPIURL,
		CloudAPIPhoneID: cfg.CloudAPIPhoneID,
		CloudAPIToken:   cfg.CloudAPIToken,
		CloudAPIVersion: cfg.CloudAPIVersion,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize WhatsApp gateway: %v", err)
	}
	gatewayService := gateway.NewService(provider, cfg.GatewayTimeoutMs)
	log.Printf("📱 Using WhatsApp gateway: %s", gatewayService.ProviderName())

	// Init event bus
	bus := events.NewBus()

	// Init services
	activityService := services.NewActivityService(activityRepo)
	assignmentService := services.NewAssignmentService(ruleRepo, leadRepo, userRepo, activityService, bus)
	triggerService := services.NewTriggerService(triggerRepo, gatewayService, activityService, bus)
	leadService := services.NewLeadService(leadRepo, fieldRepo, statusRepo, paymentRepo, userRepo,
		activityService, assignmentService, triggerService, bus, cfg.DefaultPhoneRegion)
	configService := services.NewConfigService(statusRepo, fieldRepo)
	taskService := services.NewTaskService(taskRepo, leadRepo, userRepo, activityService)

	// Init tenant resolver
	resolver := workspace.NewResolver(workspaceRepo)

	// Init reminder job
	reminderJob := jobs.NewReminderJob(taskRepo, leadRepo, userRepo, gatewayService, activityService, cfg.ReminderCampaign)
	if err := reminderJob.Start(cfg.ReminderSchedule); err != nil {
		log.Fatalf("❌ Failed to start reminder job: %v", err)
	}
	defer reminderJob.Stop()

	// Init handlers
	healthHandler := handlers.NewHealthHandler(db)
	webhookHandler := handlers.NewWebhookHandler(workspaceRepo, leadService)
	leadHandler := handlers.NewLeadHandler(leadService, assignmentService, taskService)
	ruleHandler := handlers.NewRuleHandler(assignmentService)
	triggerHandler := handlers.NewTriggerHandler(triggerService)
	configHandler := handlers.NewConfigHandler(configService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Edvantage CRM API",
	})

	// Middleware
	app.Use(cors.New())

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health check
	app.Get("/health", healthHandler.Check)

	// Webhook routes (token-authenticated, no bearer token)
	app.Post("/webhooks/lead", webhookHandler.IngestLead)
	app.Post("/webhooks/call", webhookHandler.IngestCall)

	// Everything below requires a bearer token and a workspace scope
	api := app.Group("/", middleware.Auth(cfg.JWTSecret), middleware.WorkspaceScope(resolver))

	// Lead routes
	api.Get("/leads", leadHandler.List)
	api.Post("/leads", leadHandler.Create)
	api.Post("/leads/assign-by-source", leadHandler.AssignBySource)
	api.Get("/leads/:id", leadHandler.Get)
	api.Get("/leads/:id/activities", leadHandler.Timeline)
	api.Patch("/leads/:id/status", leadHandler.ChangeStatus)
	api.Patch("/leads/:id/owner", leadHandler.ChangeOwner)
	api.Post("/leads/:id/payments", leadHandler.RecordPayment)
	api.Get("/leads/:id/payments", leadHandler.ListPayments)
	api.Get("/leads/:id/tasks", leadHandler.ListTasks)

	// Task routes
	api.Post("/tasks", taskHandler.Create)
	api.Post("/tasks/:id/complete", taskHandler.Complete)
	api.Delete("/tasks/:id", taskHandler.Delete)

	// Configuration routes (admin/manager only)
	admin := api.Group("/", middleware.RequireElevated())

	admin.Get("/assignment-rules", ruleHandler.List)
	admin.Post("/assignment-rules", ruleHandler.Create)
	admin.Get("/assignment-rules/:id", ruleHandler.Get)
	admin.Put("/assignment-rules/:id", ruleHandler.Update)
	admin.Delete("/assignment-rules/:id", ruleHandler.Delete)

	admin.Get("/whatsapp-triggers", triggerHandler.List)
	admin.Post("/whatsapp-triggers", triggerHandler.Create)
	admin.Get("/whatsapp-triggers/:id", triggerHandler.Get)
	admin.Put("/whatsapp-triggers/:id", triggerHandler.Update)
	admin.Delete("/whatsapp-triggers/:id", triggerHandler.Delete)

	admin.Get("/statuses", configHandler.ListStatuses)
	admin.Post("/statuses", configHandler.CreateStatus)
	admin.Put("/statuses/:id", configHandler.UpdateStatus)
	admin.Delete("/statuses/:id", configHandler.DeleteStatus)

	admin.Get("/lead-fields", configHandler.ListFields)
	admin.Post("/lead-fields", configHandler.CreateField)
	admin.Put("/lead-fields/:id", configHandler.UpdateField)
	admin.Delete("/lead-fields/:id", configHandler.DeleteField)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("👋 Shutting down crm-api...")
		_ = app.Shutdown()
	}()

	log.Printf("✅ crm-api running at :%s", cfg.Port)
	log.Printf("📄 Swagger UI: http://localhost:%s/swagger/", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
