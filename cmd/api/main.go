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

	"github.com/suPer8Hu/icebreaker-bot/internal/ai"
	"github.com/suPer8Hu/icebreaker-bot/internal/bot"
	"github.com/suPer8Hu/icebreaker-bot/internal/cards"
	"github.com/suPer8Hu/icebreaker-bot/internal/config"
	"github.com/suPer8Hu/icebreaker-bot/internal/db"
	"github.com/suPer8Hu/icebreaker-bot/internal/delivery"
	"github.com/suPer8Hu/icebreaker-bot/internal/events"
	"github.com/suPer8Hu/icebreaker-bot/internal/httpapi"
	"github.com/suPer8Hu/icebreaker-bot/internal/httpapi/handlers"
	"github.com/suPer8Hu/icebreaker-bot/internal/logging"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"github.com/suPer8Hu/icebreaker-bot/internal/repo"
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

	for _, w := range cfg.Insecure() {
		log.Warn("insecure configuration", zap.String("detail", w))
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("db connect", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	rds, err := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rds.Close()

	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatal("rabbit publisher", zap.Error(err))
	}
	defer pub.Close()

	lang, ok := models.ParseLanguage(cfg.DefaultLanguage)
	if !ok {
		lang = models.English
	}
	sessions := redisstore.NewSessionStore(rds, cfg.SessionTTL, lang, log)
	tasks := redisstore.NewTaskStore(rds, cfg.GenerationTaskTTL)
	outbox := delivery.NewQueue(pub)
	tg := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramToken)

	users := repo.NewUserRepo(gdb)
	profiles := repo.NewProfileRepo(gdb)
	categories := repo.NewCategoryRepo(gdb)
	suggestions := repo.NewSuggestionRepo(gdb)
	content := cards.NewRepo(gdb)
	engine := cards.NewEngine(content, categories)

	bus := events.NewBus(log)

	reg := ai.DefaultRegistry(ai.Settings{
		OllamaBaseURL:     cfg.OllamaBaseURL,
		OllamaModel:       cfg.OllamaModel,
		OpenRouterBaseURL: cfg.OpenRouterBaseURL,
		OpenRouterAPIKey:  cfg.OpenRouterAPIKey,
		OpenRouterModel:   cfg.OpenRouterModel,
		OpenRouterSiteURL: cfg.OpenRouterSiteURL,
		OpenRouterAppName: cfg.OpenRouterAppName,
	})
	provider, err := reg.Get(context.Background(), cfg.AIProvider, "")
	if err != nil {
		log.Fatal("ai provider", zap.String("provider", cfg.AIProvider), zap.Strings("known", reg.Names()), zap.Error(err))
	}
	gen := ai.NewGenerator(provider, content, tasks, users, bus, log)

	notifier := bot.NewNotifier(outbox, users, sessions, log)
	unsubscribe := notifier.Register(bus)
	defer unsubscribe()

	machine := bot.NewMachine(bot.Deps{
		Sessions:    sessions,
		Transport:   tg,
		Commands:    tg,
		Users:       users,
		Profiles:    profiles,
		Categories:  categories,
		Cards:       engine,
		Suggestions: suggestions,
		Generator:   gen,
		Outbox:      outbox,
		Log:         log,
	})

	h := handlers.NewHandler(machine, tg, bus, tasks, cfg.TelegramWebhookSecret, log)
	r := httpapi.NewRouter(h, cfg.JWTSecret, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api listening", zap.String("addr", cfg.HTTPAddr), zap.String("ai_provider", cfg.AIProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("api shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}

	// in-flight generations still publish their events
	gen.Wait()
}
