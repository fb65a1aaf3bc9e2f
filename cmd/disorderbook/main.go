package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rooklift/disorderbook/params"
	"github.com/rooklift/disorderbook/pkg/api"
	"github.com/rooklift/disorderbook/pkg/exchange"
	"github.com/rooklift/disorderbook/pkg/util"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "disorderbook",
		Short: "an unofficial Stockfighter exchange simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Int("maxbooks", 0, "maximum number of (venue, symbol) books")
	flags.Int("port", 0, "HTTP port")
	flags.String("venue", "", "default venue, created at startup")
	flags.String("symbol", "", "default symbol, created at startup")
	flags.String("accounts", "", "JSON file of account -> API key; enables auth")
	flags.Bool("extras", false, "enable diagnostic endpoints (status-all, positions, debug)")
	flags.String("env-file", "", "path to a .env file")
	flags.String("log-file", "", "tee logs to this file")

	for _, name := range []string{"maxbooks", "port", "venue", "symbol", "accounts", "extras", "env-file", "log-file"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// run wires config, logger, registry and server together and blocks until
// shutdown.
func run() error {
	cfg := params.LoadFromEnv(viper.GetString("env-file"))

	// Flags beat .env and environment.
	if v := viper.GetInt("maxbooks"); v != 0 {
		cfg.MaxBooks = v
	}
	if v := viper.GetInt("port"); v != 0 {
		cfg.Port = v
	}
	if v := viper.GetString("venue"); v != "" {
		cfg.DefaultVenue = v
	}
	if v := viper.GetString("symbol"); v != "" {
		cfg.DefaultSymbol = v
	}
	if v := viper.GetString("accounts"); v != "" {
		cfg.AccountsFile = v
	}
	if viper.GetBool("extras") {
		cfg.Extras = true
	}
	if v := viper.GetString("log-file"); v != "" {
		cfg.LogFile = v
	}

	var logger *zap.Logger
	var err error
	if cfg.LogFile != "" {
		logger, err = util.NewLoggerWithFile(cfg.LogFile)
	} else {
		logger, err = util.NewLogger()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	var keyring *exchange.Keyring
	if cfg.AccountsFile != "" {
		keyring, err = exchange.LoadKeyring(cfg.AccountsFile)
		if err != nil {
			return err
		}
		sugar.Infow("auth_enabled", "accounts_file", cfg.AccountsFile)
	} else {
		sugar.Info("auth_disabled - all requests accepted")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := exchange.NewRegistry(ctx, cfg.MaxBooks, util.RealClock{}, sugar)
	accounts := exchange.NewAccounts()

	if _, err := registry.GetOrCreate(cfg.DefaultVenue, cfg.DefaultSymbol); err != nil {
		return err
	}

	server := api.NewServer(cfg, registry, accounts, keyring, sugar)
	addr := fmt.Sprintf(":%d", cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	sugar.Infow("disorderbook_up",
		"port", cfg.Port,
		"default_venue", cfg.DefaultVenue,
		"default_symbol", cfg.DefaultSymbol,
		"max_books", cfg.MaxBooks,
		"extras", cfg.Extras)

	select {
	case <-ctx.Done():
		sugar.Info("shutting down")
		return nil
	case err := <-errCh:
		return err
	}
}
