package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/moodsense/internal/profile"
	"github.com/hrygo/moodsense/internal/version"
	"github.com/hrygo/moodsense/server"
	"github.com/hrygo/moodsense/store"
	"github.com/hrygo/moodsense/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:   "moodsense",
		Short: `Detects mood rhythms and habit correlations, and recommends what to do next.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Systemd units provide their environment through EnvironmentFile.
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}
			return nil
		},
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := &profile.Profile{
				Mode:               viper.GetString("mode"),
				Addr:               viper.GetString("addr"),
				Port:               viper.GetInt("port"),
				Data:               viper.GetString("data"),
				Driver:             viper.GetString("driver"),
				DSN:                viper.GetString("dsn"),
				Timezone:           viper.GetString("timezone"),
				PrewarmInterval:    viper.GetDuration("prewarm-interval"),
				RateLimitPerSecond: viper.GetFloat64("rate-limit"),
				Version:            version.GetCurrentVersion(viper.GetString("mode")),
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid configuration", "error", err)
				os.Exit(1)
			}
			if instanceProfile.IsDev() {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			ctx, cancel := context.WithCancel(context.Background())
			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				cancel()
				printDatabaseError(err, instanceProfile)
				slog.Error("failed to create db driver", "error", err)
				return
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				cancel()
				slog.Error("failed to migrate", "error", err)
				return
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				cancel()
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			// SIGTERM is what process managers send to request a graceful stop.
			signal.Notify(c, terminationSignals...)

			if err := s.Start(ctx); err != nil {
				slog.Error("failed to start server", "error", err)
				cancel()
				return
			}

			printGreetings(instanceProfile)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			// Wait for CTRL-C.
			<-ctx.Done()
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA zone used for day and hour bucketing (default UTC)")
	rootCmd.PersistentFlags().Duration("prewarm-interval", 0, "interval of the cache warmer, 0 disables it")
	rootCmd.PersistentFlags().Float64("rate-limit", 10, "requests per second allowed per user")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "timezone", "prewarm-interval", "rate-limit"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("moodsense")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("MoodSense %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Data directory: %s\n", profile.Data)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)
	fmt.Printf("Lookback: %d days, analysis TTL: %s, recommendation TTL: %s\n",
		profile.LookbackDays, profile.AnalysisTTL, profile.RecommendationTTL)

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
		fmt.Printf("Metrics at: http://localhost:%d/metrics\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
		fmt.Printf("Metrics at: http://%s:%d/metrics\n", profile.Addr, profile.Port)
	}
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

// printDatabaseError prints a hint for common database connection failures.
func printDatabaseError(err error, profile *profile.Profile) {
	fmt.Fprintln(os.Stderr, "\nDatabase connection failed")

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintln(os.Stderr, "  PostgreSQL is not reachable.")
		if profile.Driver == "postgres" {
			fmt.Fprintln(os.Stderr, "  Start it with: sudo systemctl start postgresql")
		}
		fmt.Fprintln(os.Stderr, "  Or use SQLite: ./moodsense --driver=sqlite --data=./data")
	case strings.Contains(errMsg, "sslmode"):
		fmt.Fprintln(os.Stderr, "  Add ?sslmode=disable to MOODSENSE_DSN.")
	case strings.Contains(errMsg, "password authentication failed"):
		fmt.Fprintln(os.Stderr, "  Check the credentials in MOODSENSE_DSN or .env.")
	case strings.Contains(errMsg, "permission denied"):
		fmt.Fprintln(os.Stderr, "  Check database user permissions and the data directory.")
	default:
		fmt.Fprintln(os.Stderr, "  Error:", errMsg)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
