package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) startParade(ctx context.Context, msg *tgbotapi.Message) {
	if !b.requireAdmin(ctx, msg.Chat.ID, msg.From.ID) {
		return
	}

	conv := b.state.Reset(msg.Chat.ID, ModeParade)
	conv.Step = "out_of_camp"
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("All in camp", "parade:out|0"),
		),
	)
	b.sendWithKeyboard(msg.Chat.ID, "📋 Parade state\n\nHow many personnel are out of camp?", keyboard)
}

func (b *Bot) handleParadeCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := query.Data
	if !strings.HasPrefix(data, "parade:out|") {
		return
	}
	count, err := strconv.Atoi(strings.TrimPrefix(data, "parade:out|"))
	if err != nil {
		return
	}
	b.generateParade(ctx, query.Message.Chat.ID, count)
}

func (b *Bot) paradeTextInput(ctx context.Context, msg *tgbotapi.Message, conv *Conversation) {
	if conv.Step != "out_of_camp" {
		return
	}
	count, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil || count < 0 {
		b.send(msg.Chat.ID, "❌ Enter a non-negative number.")
		return
	}
	b.generateParade(ctx, msg.Chat.ID, count)
}

func (b *Bot) generateParade(ctx context.Context, chatID int64, outOfCamp int) {
	report, err := b.parade.Generate(ctx, outOfCamp)
	if err != nil {
		b.send(chatID, "❌ Failed to generate the parade state. Please try again.")
		return
	}

	b.state.Reset(chatID, ModeNone)
	b.hub.PublishReport("parade_state", report)
	b.send(chatID, report)
}
