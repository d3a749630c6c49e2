package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ustat-be/internal/address"
	"ustat-be/internal/billing"
	"ustat-be/internal/catalog"
	"ustat-be/internal/config"
	"ustat-be/internal/db"
	"ustat-be/internal/logger"
	"ustat-be/internal/middleware"
	"ustat-be/internal/notifier"
	"ustat-be/internal/order"
	"ustat-be/internal/transport"
	"ustat-be/internal/user"
	"ustat-be/internal/verification"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	dispatcher := notifier.NewDispatcher(notifier.NewSMTPSender(notifier.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
	}))
	defer dispatcher.Close()

	orderMailer := notifier.NewOrderMailer(dispatcher)
	verificationMailer := notifier.NewVerificationMailer(dispatcher)

	userRepo := user.NewRepository(database)
	addressRepo := address.NewRepository(database)
	catalogRepo := catalog.NewRepository(database)
	orderRepo := order.NewRepository(database)
	billingRepo := billing.NewRepository(database)

	codes := verification.NewService(rdb)

	services := transport.Services{
		Users:     user.NewService(userRepo, codes, verificationMailer),
		Addresses: address.NewService(addressRepo),
		Catalog:   catalog.NewService(catalogRepo),
		Orders:    order.NewService(orderRepo, catalogRepo, addressRepo, orderMailer),
		Billing:   billing.NewService(billingRepo),
	}

	handler := middleware.CORS(
		logger.RequestIDMiddleware(
			logger.LoggingMiddleware(
				// auth first so the limiter buckets on user id, not shared IP
				middleware.AuthMiddleware(
					middleware.RateLimitMiddleware(
						transport.NewRouter(services),
					),
				),
			),
		),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L().Info("server listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.L().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Error("shutdown did not finish cleanly", zap.Error(err))
	}
}
