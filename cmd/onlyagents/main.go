package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/pythocooks/onlyagents-backend/internal/chain"
	"github.com/pythocooks/onlyagents-backend/internal/config"
	"github.com/pythocooks/onlyagents-backend/internal/http_api"
	"github.com/pythocooks/onlyagents-backend/internal/metrics"
	"github.com/pythocooks/onlyagents-backend/internal/notificator"
	"github.com/pythocooks/onlyagents-backend/internal/payments"
	"github.com/pythocooks/onlyagents-backend/internal/repository"
	"github.com/pythocooks/onlyagents-backend/internal/verifier"
	"github.com/pythocooks/onlyagents-backend/pkg/logger"
	"github.com/pythocooks/onlyagents-backend/pkg/validation"
)

func main() {
	app := &cli.App{
		Name:  "onlyagents",
		Usage: "OnlyAgents payment verification and ledger service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.StringFlag{Name: "rpc-url", Aliases: []string{"r"}, Usage: "Solana RPC endpoint"},
			&cli.StringFlag{Name: "token-mint", Aliases: []string{"m"}, Usage: "Payment token mint address"},
			&cli.StringFlag{Name: "fee-rate", Aliases: []string{"f"}, Usage: "Platform fee rate, e.g. 0.10"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("token-mint") {
		cfg.TokenMint = c.String("token-mint")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if c.IsSet("fee-rate") {
		feeRate, err := decimal.NewFromString(c.String("fee-rate"))
		if err == nil {
			cfg.FeeRate = feeRate
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize chain client and verifier
	chainClient := chain.NewClient(cfg.RPCURL, cfg.Commitment, log)
	transferVerifier := verifier.NewVerifier(
		chainClient,
		validation.MustPublicKey(cfg.TokenMint),
		int32(cfg.TokenDecimals),
		cfg.VerifyTimeout,
		log,
	)

	// Initialize notificator
	var telNotif *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" {
		telNotif, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramOpsChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	notif := notificator.NewNotificator(log, telNotif)

	// Initialize payments service
	paymentsService := payments.NewService(
		db,
		transferVerifier,
		chainClient,
		notif,
		metrics.NewPrometheusRecorder(),
		cfg.FeeRate,
		cfg.VerifyTimeout,
		log,
	)

	// Initialize API server
	apiServer := http_api.NewHTTPServer(paymentsService, cfg.APIPort, log)

	go apiServer.Start()

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return apiServer.Shutdown()
}
