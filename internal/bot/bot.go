package bot

import (
	"context"
	"log"
	"strings"

	"cadetbot/internal/obs"
	"cadetbot/internal/service"
	"cadetbot/internal/websocket"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Config carries the chat-facing settings the bot needs beyond its services.
type Config struct {
	BroadcastChatID int64
	Activities      []string
	Locations       []string
}

// Bot is the Telegram front end. It renders menus and routes updates; all
// state transitions and validation live in the services.
type Bot struct {
	api   *tgbotapi.BotAPI
	state *StateStore
	cfg   Config
	hub   *websocket.Hub

	users       service.UserService
	sft         service.SFTService
	movement    service.MovementService
	medical     service.MedicalService
	parade      service.ParadeService
	maintenance service.MaintenanceService
	importer    service.ImportService
	clock       service.Clock
}

func New(
	api *tgbotapi.BotAPI,
	cfg Config,
	hub *websocket.Hub,
	users service.UserService,
	sft service.SFTService,
	movement service.MovementService,
	medical service.MedicalService,
	parade service.ParadeService,
	maintenance service.MaintenanceService,
	importer service.ImportService,
	clock service.Clock,
) *Bot {
	return &Bot{
		api:         api,
		state:       NewStateStore(),
		cfg:         cfg,
		hub:         hub,
		users:       users,
		sft:         sft,
		movement:    movement,
		medical:     medical,
		parade:      parade,
		maintenance: maintenance,
		importer:    importer,
		clock:       clock,
	}
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)
	log.Printf("Telegram bot started as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		obs.BotUpdates.WithLabelValues("callback").Inc()
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		obs.BotUpdates.WithLabelValues("command").Inc()
		b.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Document != nil:
		obs.BotUpdates.WithLabelValues("document").Inc()
		b.handleDocument(ctx, update.Message)
	case update.Message != nil:
		obs.BotUpdates.WithLabelValues("text").Inc()
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendHelp(msg.Chat.ID)
	case "sft":
		b.startSFT(ctx, msg)
	case "quitsft":
		b.quitSFT(ctx, msg)
	case "sftopen":
		b.openSFTWindow(ctx, msg)
	case "sftsummary":
		b.sftSummary(ctx, msg)
	case "movement":
		b.startMovement(ctx, msg)
	case "status":
		b.startMedicalMenu(ctx, msg)
	case "parade":
		b.startParade(ctx, msg)
	case "admin":
		b.adminMenu(ctx, msg)
	default:
		b.send(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Acknowledge so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("callback ack failed: %v", err)
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, "sft:"):
		b.handleSFTCallback(ctx, query)
	case strings.HasPrefix(data, "mov:"):
		b.handleMovementCallback(ctx, query)
	case strings.HasPrefix(data, "med:"):
		b.handleMedicalCallback(ctx, query)
	case strings.HasPrefix(data, "parade:"):
		b.handleParadeCallback(ctx, query)
	case strings.HasPrefix(data, "admin:"):
		b.handleAdminCallback(ctx, query)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	conv := b.state.Get(msg.Chat.ID)
	switch conv.Mode {
	case ModeSFT:
		b.sftTextInput(ctx, msg, conv)
	case ModeMovement:
		b.movementTextInput(ctx, msg, conv)
	case ModeParade:
		b.paradeTextInput(ctx, msg, conv)
	case ModeMedical:
		b.medicalTextInput(ctx, msg, conv)
	}
}

func (b *Bot) sendHelp(chatID int64) {
	b.send(chatID, strings.Join([]string{
		"🤖 Unit reporting bot",
		"",
		"/sft - submit your SFT activity",
		"/quitsft - withdraw your SFT submission",
		"/movement - report personnel movement",
		"/status - RSO/MA/RSI reporting",
		"/parade - generate parade state (admin)",
		"/sftopen DDMMYY HHMM HHMM - open SFT window (admin)",
		"/sftsummary DDMMYY - generate SFT summary (admin)",
		"/admin - roster and database maintenance (admin)",
	}, "\n"))
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send failed: %v", err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send failed: %v", err)
	}
}

// notifyAdmins fans a message out to every active admin's private chat.
func (b *Bot) notifyAdmins(ctx context.Context, text string) {
	ids, err := b.users.AdminTelegramIDs(ctx)
	if err != nil {
		log.Printf("failed to list admins: %v", err)
		return
	}
	for _, id := range ids {
		b.send(id, text)
	}
}

// requireAdmin resolves the sender and checks the admin flag, replying with
// the refusal text itself when the check fails.
func (b *Bot) requireAdmin(ctx context.Context, chatID int64, userID int64) bool {
	isAdmin, err := b.users.IsAdministrator(ctx, userID)
	if err != nil {
		b.send(chatID, "❌ Something went wrong. Please try again.")
		return false
	}
	if !isAdmin {
		b.send(chatID, "❌ You are not authorized to do that.")
		return false
	}
	return true
}
