package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cadetbot/internal/obs"
	"cadetbot/internal/service"
	"cadetbot/pkg/timeparse"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) startSFT(ctx context.Context, msg *tgbotapi.Message) {
	window, err := b.sft.GetActiveWindow(ctx)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}
	if window == nil {
		b.send(msg.Chat.ID, "❌ PT SFT has not been opened by IC yet.\nPlease wait for instructions.")
		return
	}

	user, err := b.users.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		b.send(msg.Chat.ID, "❌ You are not registered in the system.")
		return
	}

	conv := b.state.Reset(msg.Chat.ID, ModeSFT)
	conv.Data["date"] = window.Date
	conv.Data["window_start"] = window.Start
	conv.Data["window_end"] = window.End
	conv.Data["user_name"] = user.DisplayName()

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.cfg.Activities))
	for _, activity := range b.cfg.Activities {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(activity, "sft:activity|"+activity),
		))
	}

	b.sendWithKeyboard(msg.Chat.ID,
		fmt.Sprintf("🏋️ PT SFT Open\n\nTime: %s-%s\n\nSelect activity:", window.Start, window.End),
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
}

func (b *Bot) quitSFT(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		b.send(msg.Chat.ID, "❌ You are not registered in the system.")
		return
	}

	removed, err := b.sft.Quit(ctx, user.ID)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Something went wrong. Please try again.")
		return
	}
	if removed {
		b.send(msg.Chat.ID, "✅ You have quit SFT. All your submitted SFT entries were removed.")
		return
	}
	b.send(msg.Chat.ID, "ℹ️ You currently have no SFT submissions to remove.")
}

func (b *Bot) handleSFTCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	conv := b.state.Get(chatID)
	data := query.Data

	switch {
	case strings.HasPrefix(data, "sft:activity|"):
		conv.Data["activity"] = strings.TrimPrefix(data, "sft:activity|")

		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.cfg.Locations)+1)
		for _, location := range b.cfg.Locations {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(location, "sft:loc|"+location),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("No specific location", "sft:loc|"),
		))
		b.sendWithKeyboard(chatID, "📍 Select location:", tgbotapi.NewInlineKeyboardMarkup(rows...))

	case strings.HasPrefix(data, "sft:loc|"):
		conv.Data["location"] = strings.TrimPrefix(data, "sft:loc|")
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("🕒 Full window (%s-%s)", conv.Data["window_start"], conv.Data["window_end"]),
					"sft:time|window",
				),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✍️ Enter times manually", "sft:time|manual"),
			),
		)
		b.sendWithKeyboard(chatID, "⏰ Select your timing:", keyboard)

	case data == "sft:time|window":
		b.submitSFT(ctx, chatID, query.From.ID, conv, conv.Data["window_start"], conv.Data["window_end"])

	case data == "sft:time|manual":
		conv.Step = "start"
		b.send(chatID, "⏰ Enter your start time (HHMM).")
	}
}

func (b *Bot) sftTextInput(ctx context.Context, msg *tgbotapi.Message, conv *Conversation) {
	value := strings.TrimSpace(msg.Text)

	switch conv.Step {
	case "start":
		start, err := timeparse.ToHHMM(value)
		if err != nil {
			b.send(msg.Chat.ID, "❌ Invalid time format (HHMM).")
			return
		}
		conv.Data["start"] = start
		conv.Step = "end"
		b.send(msg.Chat.ID, "⏰ Enter your end time (HHMM).")
	case "end":
		end, err := timeparse.ToHHMM(value)
		if err != nil {
			b.send(msg.Chat.ID, "❌ Invalid time format (HHMM).")
			return
		}
		b.submitSFT(ctx, msg.Chat.ID, msg.From.ID, conv, conv.Data["start"], end)
	}
}

func (b *Bot) submitSFT(ctx context.Context, chatID int64, telegramID int64, conv *Conversation, start, end string) {
	user, err := b.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		b.send(chatID, "❌ You are not registered in the system.")
		return
	}

	err = b.sft.Submit(ctx, user.ID, conv.Data["user_name"], conv.Data["activity"], conv.Data["location"], start, end)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveSession) {
			b.send(chatID, "❌ The SFT window has been closed. Please wait for a new one.")
		} else {
			b.send(chatID, "❌ Failed to record your submission. Please try again.")
		}
		return
	}

	b.state.Reset(chatID, ModeNone)
	where := conv.Data["activity"]
	if conv.Data["location"] != "" {
		where += " @ " + conv.Data["location"]
	}
	b.send(chatID, fmt.Sprintf("✅ Submission recorded: %s, %s-%s.\nResubmitting replaces this entry.", where, start, end))
}

func (b *Bot) openSFTWindow(ctx context.Context, msg *tgbotapi.Message) {
	if !b.requireAdmin(ctx, msg.Chat.ID, msg.From.ID) {
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 3 {
		b.send(msg.Chat.ID, "Usage: /sftopen DDMMYY HHMM HHMM")
		return
	}

	date, err := timeparse.ToDDMMYY(args[0])
	if err != nil {
		b.send(msg.Chat.ID, "❌ "+err.Error())
		return
	}
	start, err := timeparse.ToHHMM(args[1])
	if err != nil {
		b.send(msg.Chat.ID, "❌ "+err.Error())
		return
	}
	end, err := timeparse.ToHHMM(args[2])
	if err != nil {
		b.send(msg.Chat.ID, "❌ "+err.Error())
		return
	}

	if err := b.sft.OpenWindow(ctx, msg.From.ID, date, start, end); err != nil {
		b.send(msg.Chat.ID, "❌ Failed to open the SFT window. Please try again.")
		return
	}

	b.send(msg.Chat.ID, fmt.Sprintf("✅ SFT window opened for %s, %s-%s.", date, start, end))
	b.notifyAdmins(ctx, fmt.Sprintf("🏋️ SFT window opened for %s, %s-%s.", date, start, end))
}

func (b *Bot) sftSummary(ctx context.Context, msg *tgbotapi.Message) {
	if !b.requireAdmin(ctx, msg.Chat.ID, msg.From.ID) {
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.send(msg.Chat.ID, "Usage: /sftsummary DDMMYY [instructor name]")
		return
	}

	date, err := timeparse.ToDDMMYY(args[0])
	if err != nil {
		b.send(msg.Chat.ID, "❌ "+err.Error())
		return
	}

	instructor := strings.Join(args[1:], " ")
	if instructor == "" {
		if user, userErr := b.users.GetByTelegramID(ctx, msg.From.ID); userErr == nil {
			instructor = user.DisplayName()
		}
	}

	report, err := b.sft.GenerateSummary(ctx, date, instructor, "Sir")
	if err != nil {
		var validationErr *service.SummaryValidationError
		if errors.As(err, &validationErr) {
			obs.SummaryValidationFailures.Inc()
			lines := []string{
				"❌ SFT summary cannot be generated.",
				"",
				"The following activities have fewer than 2 participants:",
			}
			for _, group := range validationErr.Groups {
				lines = append(lines, "- "+group)
			}
			lines = append(lines, "", "Please resolve before generating summary.")
			b.send(msg.Chat.ID, strings.Join(lines, "\n"))
			return
		}
		b.send(msg.Chat.ID, "❌ Failed to generate the summary. Please try again.")
		return
	}

	obs.SummariesGenerated.Inc()
	b.hub.PublishReport("sft_summary", report)
	b.send(msg.Chat.ID, report)
}
