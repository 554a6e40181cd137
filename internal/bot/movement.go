package bot

import (
	"context"
	"fmt"
	"strings"

	"cadetbot/pkg/timeparse"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) startMovement(ctx context.Context, msg *tgbotapi.Message) {
	names, err := b.users.CadetNames(ctx)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}
	if len(names) == 0 {
		b.send(msg.Chat.ID, "❌ No cadets on the roster. Import users first.")
		return
	}

	conv := b.state.Reset(msg.Chat.ID, ModeMovement)
	conv.Names = names
	b.sendWithKeyboard(msg.Chat.ID, "🚶 Movement report\n\nSelect personnel (tap again to deselect):", b.movementKeyboard(conv))
}

// movementKeyboard rebuilds the roster keyboard, marking selected names.
func (b *Bot) movementKeyboard(conv *Conversation) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(conv.Names)+1)
	for _, name := range conv.Names {
		label := name
		if conv.Selected[name] {
			label = "✅ " + name
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "mov:name|"+name),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➡️ Done", "mov:done"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) handleMovementCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	conv := b.state.Get(chatID)
	data := query.Data

	switch {
	case strings.HasPrefix(data, "mov:name|"):
		name := strings.TrimPrefix(data, "mov:name|")
		if conv.Selected[name] {
			delete(conv.Selected, name)
		} else {
			conv.Selected[name] = true
		}
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID, b.movementKeyboard(conv))
		if _, err := b.api.Send(edit); err != nil {
			b.sendWithKeyboard(chatID, "🚶 Movement report\n\nSelect personnel (tap again to deselect):", b.movementKeyboard(conv))
		}

	case data == "mov:done":
		if len(conv.Selected) == 0 {
			b.send(chatID, "❌ Select at least one person first.")
			return
		}
		conv.Step = "from"
		b.sendWithKeyboard(chatID, "📍 Moving from:", b.locationKeyboard("mov:from|"))

	case strings.HasPrefix(data, "mov:from|"):
		conv.Data["from"] = strings.TrimPrefix(data, "mov:from|")
		conv.Step = "to"
		b.sendWithKeyboard(chatID, "📍 Moving to:", b.locationKeyboard("mov:to|"))

	case strings.HasPrefix(data, "mov:to|"):
		conv.Data["to"] = strings.TrimPrefix(data, "mov:to|")
		conv.Step = "time"
		b.send(chatID, "⏰ Enter movement time (HHMM).")
	}
}

func (b *Bot) locationKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.cfg.Locations))
	for _, location := range b.cfg.Locations {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(location, prefix+location),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) movementTextInput(ctx context.Context, msg *tgbotapi.Message, conv *Conversation) {
	if conv.Step != "time" {
		return
	}

	timeHHMM, err := timeparse.ToHHMM(strings.TrimSpace(msg.Text))
	if err != nil {
		b.send(msg.Chat.ID, "❌ Invalid time format (HHMM).")
		return
	}

	names := make([]string, 0, len(conv.Selected))
	for name := range conv.Selected {
		names = append(names, name)
	}

	report, err := b.movement.Report(ctx, msg.From.ID, names, conv.Data["from"], conv.Data["to"], timeHHMM)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Failed to record the movement. Please try again.")
		return
	}

	b.state.Reset(msg.Chat.ID, ModeNone)
	b.hub.PublishReport("movement", report.Message)
	if b.cfg.BroadcastChatID != 0 && b.cfg.BroadcastChatID != msg.Chat.ID {
		b.send(b.cfg.BroadcastChatID, report.Message)
	}
	b.send(msg.Chat.ID, fmt.Sprintf("✅ Movement recorded for %d personnel.\n\n%s", len(names), report.Message))
}
