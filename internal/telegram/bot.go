package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"dinner-planner/internal/app"
	"dinner-planner/internal/catalog"
	"dinner-planner/internal/config"
	"dinner-planner/internal/export"
	"dinner-planner/internal/logger"
	"dinner-planner/internal/metrics"
	"dinner-planner/internal/planner"
	"dinner-planner/internal/shopping"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	requestTimeout = time.Minute
	metricsDays    = 7
	helpText       = "🍽 *Dinner Planner*\n\n" +
		"/plan `[seed]` plans the week and sends the shopping list\n" +
		"/export `[seed]` does the same as a spreadsheet\n" +
		"/metrics shows usage and health (admin)\n\n" +
		"Send a recipe link to add it to the catalog."
)

// Bot wraps the Telegram API around the planner app.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	metricsStore *metrics.Store
	cfg          *config.Config
	planConfig   config.PlanConfig

	// inflight tracks messages still being processed after the webhook returned.
	inflight sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, a *app.App, metricsStore *metrics.Store, planConfig config.PlanConfig) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("telegram authorized", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("description", resp.Description))

	return &Bot{
		api:          api,
		app:          a,
		metricsStore: metricsStore,
		cfg:          cfg,
		planConfig:   planConfig,
	}, nil
}

// Router returns the HTTP handler serving the webhook and health check.
func (b *Bot) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Post("/webhook", b.handleWebhook)
	return r
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if !b.cfg.IsAllowedUser(msg.From.ID) {
		logger.Warn("unauthorized access attempt", zap.Int64("user_id", msg.From.ID), zap.String("username", msg.From.UserName))
		return
	}

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		b.processMessage(msg)
	}()
}

// Wait blocks until every message accepted by the webhook has been handled,
// or ctx is done.
func (b *Bot) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if msg.IsCommand() {
		switch msg.Command() {
		case "plan":
			b.handlePlan(ctx, msg, false)
		case "export":
			b.handlePlan(ctx, msg, true)
		case "metrics":
			b.handleMetrics(ctx, msg)
		default:
			b.sendMarkdown(msg.Chat.ID, helpText)
		}
		return
	}

	if isURL(msg.Text) {
		b.handleClip(ctx, msg)
		return
	}
	b.sendMarkdown(msg.Chat.ID, helpText)
}

func (b *Bot) handlePlan(ctx context.Context, msg *tgbotapi.Message, asWorkbook bool) {
	pc := b.planConfig
	seed, err := parseSeed(msg.CommandArguments())
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, "❌ The seed must be a whole number, like `/plan 42`.")
		return
	}
	if seed != nil {
		pc.Seed = seed
	}

	result, err := b.app.Plan(ctx, pc)
	if err != nil {
		logger.Error("plan failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		b.sendMarkdown(msg.Chat.ID, formatPlanError(err))
		return
	}

	if asWorkbook {
		b.sendWorkbook(msg.Chat.ID, result)
		return
	}

	planText, shoppingText := export.Markdown(result.Plan, result.Catalog, result.List)
	b.sendMarkdown(msg.Chat.ID, planText)
	b.sendMarkdown(msg.Chat.ID, shoppingText)
}

// sendWorkbook exports the run to its own file and removes it once sent.
func (b *Bot) sendWorkbook(chatID int64, result *app.Result) {
	now := time.Now()
	path, err := b.app.ExportRun(result, b.cfg.ExportDir, now)
	if err != nil {
		logger.Error("export failed", zap.String("run_id", result.Plan.RunID), zap.Error(err))
		b.sendMarkdown(chatID, formatError("Error exporting plan", err))
		return
	}
	defer os.Remove(path)

	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open workbook", zap.String("path", path), zap.Error(err))
		b.sendMarkdown(chatID, formatError("Error exporting plan", err))
		return
	}
	defer f.Close()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{Name: export.FileName(now), Reader: f})
	doc.Caption = fmt.Sprintf("Seed %d", result.Plan.Seed)
	if _, err := b.api.Send(doc); err != nil {
		logger.Error("failed to send workbook", zap.String("run_id", result.Plan.RunID), zap.Error(err))
	}
}

func (b *Bot) handleClip(ctx context.Context, msg *tgbotapi.Message) {
	b.sendMarkdown(msg.Chat.ID, "✂️ *Clipping recipe...*")

	meal, err := b.app.ClipMeal(ctx, strings.TrimSpace(msg.Text))
	if err != nil {
		logger.Error("clip failed", zap.String("url", msg.Text), zap.Error(err))
		b.sendMarkdown(msg.Chat.ID, formatError("Error clipping recipe", err))
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatClipResult(meal))
}

func (b *Bot) handleMetrics(ctx context.Context, msg *tgbotapi.Message) {
	if !b.cfg.IsAdmin(msg.From.ID) {
		b.sendMarkdown(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(ctx, metricsDays)
	if err != nil {
		logger.Error("failed to read metrics", zap.Error(err))
		b.sendMarkdown(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatMetricsReport(usage, metrics.GetSysHealth(b.cfg.DataDir())))
}

func (b *Bot) sendMarkdown(chatID int64, text string) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(m); err != nil {
		logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func parseSeed(args string) (*uint64, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil, nil
	}
	seed, err := strconv.ParseUint(args, 10, 64)
	if err != nil {
		return nil, err
	}
	return &seed, nil
}

func isURL(text string) bool {
	u, err := url.Parse(strings.TrimSpace(text))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func formatPlanError(err error) string {
	switch {
	case errors.Is(err, planner.ErrConstraintUnsatisfiable):
		return "🤷 *No plan fits.*\nThe catalog has no meal left that satisfies the constraints. Add meals or relax the category rules."
	case errors.Is(err, shopping.ErrInsufficientPoolSize):
		return "🥕 *Not enough veggies or toppings* in the shared pools for the configured sample sizes."
	case errors.Is(err, catalog.ErrMalformedMealRecord):
		return formatError("The catalog has a broken meal", err)
	}
	return formatError("Error generating plan", err)
}

func formatError(title string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *%s:*\n```\n%s\n```", title, safeErr)
}

func formatClipResult(meal catalog.Meal) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ *Meal Saved!*\n\n*Name:* %s\n", export.EscapeMarkdown(export.Title(meal.ID)))
	fmt.Fprintf(&sb, "*Categories:* %s\n", export.EscapeMarkdown(strings.Join(meal.Categories, ", ")))
	fmt.Fprintf(&sb, "*Ingredients:* %d\n", len(meal.Ingredients))
	if len(meal.Prep) > 0 {
		fmt.Fprintf(&sb, "*Prep:* %s\n", export.EscapeMarkdown(strings.Join(meal.Prep, "; ")))
	}
	return sb.String()
}

func formatMetricsReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDirSize)
	return sb.String()
}
