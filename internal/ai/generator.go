package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/suPer8Hu/icebreaker-bot/internal/common"
	"github.com/suPer8Hu/icebreaker-bot/internal/events"
	"github.com/suPer8Hu/icebreaker-bot/internal/models"
	"go.uber.org/zap"
)

const (
	generationTemperature = 0.8
	exampleQuestions      = 10
	maxGeneratedCards     = 50
	defaultGenTimeout     = 5 * time.Minute
)

type ContentStore interface {
	SampleQuestions(ctx context.Context, limit int) ([]string, error)
	CreateCategoryWithCards(ctx context.Context, cat *models.Category, cards []models.Card) error
}

type TaskStore interface {
	Save(ctx context.Context, task *models.GenerationTask) error
}

type CreditStore interface {
	AddCredits(ctx context.Context, userID string, delta int) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic events.Topic, payload any) error
}

// TaskHandle follows one background generation.
type TaskHandle struct {
	RequestID string
	done      chan struct{}
	err       error
}

// Done is closed once the task reached a terminal status.
func (h *TaskHandle) Done() <-chan struct{} { return h.done }

// Err is only meaningful after Done is closed.
func (h *TaskHandle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

func (h *TaskHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Generator struct {
	provider Provider
	content  ContentStore
	tasks    TaskStore
	credits  CreditStore
	events   EventPublisher
	log      *zap.Logger

	Timeout time.Duration

	wg sync.WaitGroup
}

func NewGenerator(provider Provider, content ContentStore, tasks TaskStore, credits CreditStore, pub EventPublisher, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		provider: provider,
		content:  content,
		tasks:    tasks,
		credits:  credits,
		events:   pub,
		log:      log,
		Timeout:  defaultGenTimeout,
	}
}

// Generate takes one credit, records a processing task and builds the game in
// the background. A failed generation gives the credit back. The work outlives
// ctx's cancellation but not Timeout. With no credit left it returns
// models.ErrNoCredits.
func (g *Generator) Generate(ctx context.Context, userID, chatID, description string) (*TaskHandle, error) {
	description = strings.TrimSpace(description)
	if userID == "" || description == "" {
		return nil, errors.New("generate: user and description are required")
	}
	id, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	if _, err := g.credits.AddCredits(ctx, userID, -1); err != nil {
		return nil, fmt.Errorf("reserve credit: %w", err)
	}
	task := &models.GenerationTask{
		RequestID:   id,
		UserID:      userID,
		ChatID:      chatID,
		Description: description,
		Status:      models.GenerationProcessing,
	}
	if err := g.tasks.Save(ctx, task); err != nil {
		g.refund(context.WithoutCancel(ctx), g.log, userID)
		return nil, fmt.Errorf("save generation task: %w", err)
	}

	h := &TaskHandle{RequestID: id, done: make(chan struct{})}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer close(h.done)
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.Timeout)
		defer cancel()
		h.err = g.run(runCtx, task)
	}()
	return h, nil
}

// Wait blocks until every started generation finished.
func (g *Generator) Wait() {
	g.wg.Wait()
}

func (g *Generator) run(ctx context.Context, task *models.GenerationTask) error {
	log := g.log.With(zap.String("request_id", task.RequestID), zap.String("user_id", task.UserID))

	cat, err := g.produce(ctx, task)
	if err != nil {
		log.Error("game generation failed", zap.Error(err))
		// ctx may be the one that timed out
		ctx = context.WithoutCancel(ctx)
		task.Status = models.GenerationFailed
		task.Error = err.Error()
		if serr := g.tasks.Save(ctx, task); serr != nil {
			log.Warn("save failed task", zap.Error(serr))
		}
		g.refund(ctx, log, task.UserID)
		g.publish(ctx, log, events.GenerationFailed, events.GenerationFailedEvent{
			RequestID: task.RequestID,
			UserID:    task.UserID,
			ChatID:    task.ChatID,
			Reason:    err.Error(),
		})
		return err
	}

	task.Status = models.GenerationCompleted
	task.CategoryID = cat.ID
	if err := g.tasks.Save(ctx, task); err != nil {
		log.Warn("save completed task", zap.Error(err))
	}
	log.Info("game generated", zap.String("category_id", cat.ID))

	if u, err := g.credits.FindByID(ctx, task.UserID); err != nil {
		log.Warn("read credits", zap.Error(err))
	} else {
		g.publish(ctx, log, events.CreditsUpdated, events.CreditsUpdatedEvent{
			UserID:  task.UserID,
			ChatID:  task.ChatID,
			Credits: u.Credits,
		})
	}

	g.publish(ctx, log, events.GenerationCompleted, events.GenerationCompletedEvent{
		RequestID:  task.RequestID,
		UserID:     task.UserID,
		ChatID:     task.ChatID,
		CategoryID: cat.ID,
		Name:       cat.NameEN,
	})
	return nil
}

func (g *Generator) produce(ctx context.Context, task *models.GenerationTask) (*models.Category, error) {
	examples, err := g.content.SampleQuestions(ctx, exampleQuestions)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	raw, err := g.provider.Chat(ctx, []Message{
		{Role: "system", Content: systemPrompt(examples)},
		{Role: "user", Content: task.Description},
	})
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}
	game, err := ParseGame(raw)
	if err != nil {
		return nil, err
	}

	userID := task.UserID
	cat := &models.Category{
		NameEN:        game.Name,
		DescriptionEN: game.Description,
		IsPublic:      false,
		UserID:        &userID,
	}
	cards := make([]models.Card, 0, len(game.Cards))
	for _, c := range game.Cards {
		cards = append(cards, models.Card{QuestionEN: c.Question})
	}
	if err := g.content.CreateCategoryWithCards(ctx, cat, cards); err != nil {
		return nil, fmt.Errorf("store game: %w", err)
	}
	return cat, nil
}

func (g *Generator) refund(ctx context.Context, log *zap.Logger, userID string) {
	if _, err := g.credits.AddCredits(ctx, userID, 1); err != nil {
		log.Error("refund credit", zap.String("user_id", userID), zap.Error(err))
	}
}

func (g *Generator) publish(ctx context.Context, log *zap.Logger, topic events.Topic, payload any) {
	if g.events == nil {
		return
	}
	if err := g.events.Publish(ctx, topic, payload); err != nil {
		log.Warn("publish event", zap.String("topic", string(topic)), zap.Error(err))
	}
}

func systemPrompt(examples []string) string {
	ex, _ := json.Marshal(examples)
	return "You create private, customized icebreaker games with thoughtful questions that help people become closer. " +
		"Each game contains 35 questions. Invent a name and a short description for the new game from the user's input. " +
		`Reply with a JSON object only: {"name_en": string, "description_en": string, "cards": [{"question_en": string}]}. ` +
		"Here are some example questions: " + string(ex)
}

type Game struct {
	Name        string     `json:"name_en"`
	Description string     `json:"description_en"`
	Cards       []GameCard `json:"cards"`
}

type GameCard struct {
	Question string `json:"question_en"`
}

// ParseGame extracts the game object from a model reply, tolerating code
// fences and chatter around it.
func ParseGame(raw string) (*Game, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, errors.New("parse game: no json object in reply")
	}

	var g Game
	if err := json.Unmarshal([]byte(raw[start:end+1]), &g); err != nil {
		return nil, fmt.Errorf("parse game: %w", err)
	}
	g.Name = strings.TrimSpace(g.Name)
	g.Description = strings.TrimSpace(g.Description)

	cards := g.Cards[:0]
	for _, c := range g.Cards {
		if q := strings.TrimSpace(c.Question); q != "" {
			cards = append(cards, GameCard{Question: q})
		}
	}
	if len(cards) > maxGeneratedCards {
		cards = cards[:maxGeneratedCards]
	}
	g.Cards = cards

	if g.Name == "" || len(g.Cards) == 0 {
		return nil, errors.New("parse game: name and at least one card are required")
	}
	return &g, nil
}
