package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"cadetbot/internal/model"
	"cadetbot/internal/obs"
	"cadetbot/internal/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) adminMenu(ctx context.Context, msg *tgbotapi.Message) {
	if !b.requireAdmin(ctx, msg.Chat.ID, msg.From.ID) {
		return
	}

	b.state.Reset(msg.Chat.ID, ModeNone)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Import roster (keep existing)", "admin:import|append"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("♻️ Import roster (replace all)", "admin:import|replace"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Clear database", "admin:clear"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Cancel clear request", "admin:cancel"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("ℹ️ Clear request status", "admin:status"),
		),
	)
	b.sendWithKeyboard(msg.Chat.ID, "🛠 Admin menu", keyboard)
}

func (b *Bot) handleAdminCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	if !b.requireAdmin(ctx, chatID, query.From.ID) {
		return
	}
	data := query.Data

	switch {
	case strings.HasPrefix(data, "admin:import|"):
		conv := b.state.Reset(chatID, ModeImport)
		conv.Data["replace"] = strings.TrimPrefix(data, "admin:import|")
		b.send(chatID, "📄 Upload the roster CSV.\n\nExpected header:\nfull_name,rank,role,telegram_id,telegram_username,is_admin")

	case data == "admin:clear":
		b.requestClear(ctx, chatID, query.From.ID, query.From.UserName)

	case data == "admin:cancel":
		if err := b.maintenance.CancelClear(ctx, query.From.ID); err != nil {
			b.send(chatID, "❌ Failed to cancel the request. Please try again.")
			return
		}
		b.send(chatID, "❌ Clear-database request cancelled.")
		b.notifyAdmins(ctx, fmt.Sprintf("🚫 @%s cancelled the pending clear-database request.", query.From.UserName))

	case data == "admin:status":
		status, err := b.maintenance.ClearStatus(ctx)
		if err != nil {
			b.send(chatID, "❌ Failed to load the request status. Please try again.")
			return
		}
		if status.Approvers == 0 {
			b.send(chatID, "ℹ️ No pending clear-database request.")
			return
		}
		b.send(chatID, fmt.Sprintf("ℹ️ Clear-database request: %d of 2 confirmations.\nExpires at %s.",
			status.Approvers, status.ExpiresAt.Format("020106 1504")))
	}
}

func (b *Bot) requestClear(ctx context.Context, chatID int64, adminID int64, username string) {
	approvers, counts, err := b.maintenance.RequestClear(ctx, adminID)
	if err != nil {
		b.send(chatID, "❌ Failed to record the clear request. Please try again.")
		return
	}
	obs.ApprovalsRecorded.WithLabelValues(model.ActionClearDatabase).Inc()

	if counts == nil {
		b.send(chatID, fmt.Sprintf("⚠️ Clear request recorded (%d of 2 confirmations).\nA second admin must confirm within the approval window, or the request lapses.", approvers))
		b.notifyAdmins(ctx, fmt.Sprintf("⚠️ @%s requested a full database clear. A second admin must confirm via /admin.", username))
		return
	}

	obs.WipesExecuted.Inc()
	text := formatWipeCounts(counts)
	b.send(chatID, text)
	b.notifyAdmins(ctx, text)
	b.hub.PublishReport("database_cleared", text)
}

func formatWipeCounts(counts *repository.WipeCounts) string {
	return strings.Join([]string{
		"✅ Database fully cleared after 2-admin confirmation.",
		"",
		fmt.Sprintf("Users: %d", counts.Users),
		fmt.Sprintf("SFT sessions: %d", counts.SFTSessions),
		fmt.Sprintf("SFT submissions: %d", counts.SFTSubmissions),
		fmt.Sprintf("Movement logs: %d", counts.MovementLogs),
		fmt.Sprintf("Medical events: %d", counts.MedicalEvents),
		fmt.Sprintf("Medical statuses: %d", counts.MedicalStatuses),
	}, "\n")
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	conv := b.state.Get(msg.Chat.ID)
	if conv.Mode != ModeImport {
		return
	}
	if !b.requireAdmin(ctx, msg.Chat.ID, msg.From.ID) {
		return
	}

	url, err := b.api.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Failed to fetch the uploaded file. Please try again.")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Failed to fetch the uploaded file. Please try again.")
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Failed to download the uploaded file. Please try again.")
		return
	}
	defer resp.Body.Close()

	clearFirst := conv.Data["replace"] == "replace"
	result, err := b.importer.ImportUsers(ctx, msg.From.ID, resp.Body, clearFirst)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Import failed: "+err.Error())
		return
	}

	b.state.Reset(msg.Chat.ID, ModeNone)
	lines := []string{
		"✅ Roster import complete.",
		"",
		fmt.Sprintf("Imported: %d", result.Imported),
		fmt.Sprintf("Skipped: %d", result.Skipped),
	}
	if result.Cleared != nil {
		lines = append(lines, fmt.Sprintf("Previous user data cleared: %d users", result.Cleared.Users))
	}
	for _, importErr := range result.Errors {
		lines = append(lines, "⚠️ "+importErr)
	}
	b.send(msg.Chat.ID, strings.Join(lines, "\n"))
	log.Printf("roster import by %d: %d imported, %d skipped", msg.From.ID, result.Imported, result.Skipped)
}
