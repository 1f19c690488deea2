package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"Chat_Community/internal/config"
	"Chat_Community/internal/logging"
	"Chat_Community/internal/metrics"
	"Chat_Community/internal/pkg"
	"Chat_Community/internal/repository/redis"
	"Chat_Community/internal/router"
	"Chat_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func loadConfig() (config.App, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the outbox relayer and orphan sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logging.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// 自动建表（开发阶段 OK）
		stores, closeStores, err := openStores(ctx, cfg, cfg.AppEnv != "production")
		if err != nil {
			return err
		}
		defer closeStores()

		rdb, err := redis.NewClient(redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		var sender service.Sender = service.LogSender
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		switch {
		case err == nil:
			defer producer.Close()
			sender = service.KafkaSender(producer)
		case errors.Is(err, pkg.ErrNoBrokers):
			logging.Info("kafka brokers not configured, outbox events go to the log")
		default:
			return err
		}

		var resolver pkg.Resolver = pkg.PassthroughResolver{}
		if cfg.IdentityMode == "jwt" {
			resolver = pkg.JWTResolver{Secret: []byte(cfg.JWTSecret)}
		}

		owners := pkg.NewOwnerCache(cfg.OwnerCacheTTL)
		events := service.NewEventRecorder(stores.Outbox)
		mailer := pkg.NewSMTPMailer(pkg.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})

		deps := router.Deps{
			Users:          service.NewUserService(stores.Users),
			Approval:       service.NewApprovalService(stores.Users, redis.NewApprovalCodeRepository(rdb), mailer),
			Communities:    service.NewCommunityService(stores, owners, events, m),
			Members:        service.NewMembershipService(stores.Members),
			Chat:           service.NewChatService(stores, owners, events, m),
			Resolver:       resolver,
			Metrics:        m,
			Gatherer:       reg,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
		}

		relayer := service.NewOutboxRelayer(stores.Outbox, sender, cfg.OutboxInterval, m)
		lock := &redis.DistLock{RDB: rdb, TTL: cfg.SweepInterval}
		sweeper := service.NewOrphanSweeper(stores.Members, stores.Messages, lock, cfg.SweepInterval, m)
		go relayer.Run(ctx)
		go sweeper.Run(ctx)

		if cfg.AppEnv == "production" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router.InitRouter(deps)}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		logging.Info("server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "identity", cfg.IdentityMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logging.Info("server stopped")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables (gorm) or indexes (mongo) including the membership uniqueness constraint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logging.Close()

		_, closeStores, err := openStores(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		logging.Info("migration complete", "store", cfg.StoreDriver)
		return closeStores()
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete memberships and messages left behind by deleted communities, once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logging.Close()

		stores, closeStores, err := openStores(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer closeStores()

		sweeper := service.NewOrphanSweeper(stores.Members, stores.Messages, nil, 0, nil)
		members, messages, err := sweeper.SweepOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d memberships, %d messages\n", members, messages)
		return nil
	},
}

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an access token for IDENTITY_MODE=jwt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if !pkg.IsValidID(args[0]) {
			return service.ErrInvalidReference
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.JWTTTL()
		}
		token, err := pkg.IssueAccess(args[0], []byte(cfg.JWTSecret), ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to JWT_TTL_MIN)")
}
