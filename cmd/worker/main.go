package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/icebreaker-bot/internal/config"
	"github.com/suPer8Hu/icebreaker-bot/internal/delivery"
	"github.com/suPer8Hu/icebreaker-bot/internal/logging"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/store/rabbitmq"
	"github.com/suPer8Hu/icebreaker-bot/internal/store/redisstore"
	"github.com/suPer8Hu/icebreaker-bot/internal/telegram"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	rds, err := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rds.Close()

	lang, ok := models.ParseLanguage(cfg.DefaultLanguage)
	if !ok {
		lang = models.English
	}
	sessions := redisstore.NewSessionStore(rds, cfg.SessionTTL, lang, log)
	tg := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramToken)

	// retries go back through the delayed queue
	retry, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatal("rabbit publisher", zap.Error(err))
	}
	defer retry.Close()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatal("rabbit dial", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("rabbit channel", zap.Error(err))
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatal("declare topology", zap.Error(err))
	}

	// one in flight keeps per-chat send order
	if err := ch.Qos(1, 0, false); err != nil {
		log.Fatal("qos", zap.Error(err))
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatal("consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := delivery.NewProcessor(sessions, tg, cfg.DeliverySendDelay, log)
	consumer := delivery.NewConsumer(proc, retry, cfg.DeliveryMaxAttempts, cfg.DeliveryBackoffBase, log)

	log.Info("worker started",
		zap.String("queue", cfg.RabbitQueue),
		zap.Int("max_attempts", cfg.DeliveryMaxAttempts),
	)

	if err := consumer.Run(ctx, msgs); err != nil && ctx.Err() == nil {
		log.Error("consumer stopped", zap.Error(err))
		return
	}
	log.Info("worker shutting down")
}
