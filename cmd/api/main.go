package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Facturador-api/internal/application/auth"
	"github.com/jhoicas/Facturador-api/internal/application/billing"
	"github.com/jhoicas/Facturador-api/internal/infrastructure/firma"
	infrapdf "github.com/jhoicas/Facturador-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Facturador-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Facturador-api/internal/interfaces/http"
	"github.com/jhoicas/Facturador-api/pkg/config"
	"github.com/jhoicas/Facturador-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	customerUC := billing.NewCustomerUseCase(customerRepo)
	draftUC := billing.NewDraftUseCase(invoiceRepo, customerRepo)
	issueUC := billing.NewIssueInvoiceUseCase(txRunner)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	documentUC := billing.NewDocumentUseCase(invoiceRepo, companyRepo, pdfGenerator)

	keySelector := firma.NewConfigKeySelector(cfg.Firma)
	signerSvc := firma.NewDigitalSignatureService()
	signUC := billing.NewSignUseCase(invoiceRepo, documentUC, keySelector, signerSvc)

	authUC := auth.NewAuthUseCase(userRepo, txRunner, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturador API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		JWTSecret:       cfg.JWT.Secret,
		AuthHandler:     httpRouter.NewAuthHandler(authUC),
		CustomerHandler: httpRouter.NewCustomerHandler(customerUC),
		InvoiceHandler:  httpRouter.NewInvoiceHandler(draftUC, issueUC, documentUC, signUC),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
