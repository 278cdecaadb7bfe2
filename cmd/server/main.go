package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"daily_report/internal/cache"
	"daily_report/internal/config"
	"daily_report/internal/logger"
	"daily_report/internal/middleware"
	"daily_report/internal/migrations"
	"daily_report/internal/repository"
	"daily_report/internal/routes"
	"daily_report/internal/services"
)

const (
	Version = "0.1.0"
	appName = "daily-report"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          appName,
		Short:        "Daily vehicle and driver trip reports",
		SilenceUsage: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply schema and data migrations, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			_, err = openAndMigrate(cmd.Context(), cfg)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed-admin <email>",
		Short: "Grant the admin role to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			db, err := openAndMigrate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			svc := services.New(repository.NewGormStore(db), services.Options{})
			u, err := svc.Users.GrantAdmin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("granted admin to %s (%s)\n", u.Email, u.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

// bootstrap loads and validates config and initialises logging.
func bootstrap() (config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	logger.Setup(cfg.LogFile, cfg.LogLevel, cfg.LogStdout)
	return cfg, nil
}

func openAndMigrate(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	db, err := config.OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := config.AutoMigrate(db); err != nil {
		return nil, err
	}
	applied, err := migrations.Run(ctx, db, migrations.All)
	if err != nil {
		return nil, err
	}
	logrus.WithField("applied", applied).Info("database ready")
	return db, nil
}

func serve(parent context.Context) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openAndMigrate(ctx, cfg)
	if err != nil {
		return err
	}

	auth := middleware.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	opts := services.Options{Tokens: auth}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("redis unreachable; role lookups will hit the database")
		}
		opts.RoleCache = cache.NewRoleCache(client, cfg.RoleCacheTTL)
	}

	svc := services.New(repository.NewGormStore(db), opts)
	r := routes.SetupRouter(svc, auth, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("🚀 Server running at %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
