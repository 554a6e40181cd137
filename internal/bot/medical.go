package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cadetbot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) startMedicalMenu(ctx context.Context, msg *tgbotapi.Message) {
	b.state.Reset(msg.Chat.ID, ModeMedical)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤒 Report sick outside (RSO)", "med:new|RSO"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏥 Report sick inside (RSI)", "med:new|RSI"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Book medical appointment (MA)", "med:new|MA"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Close out an open event", "med:closeout"),
		),
	)
	b.sendWithKeyboard(msg.Chat.ID, "🩺 Medical reporting\n\nChoose an option:", keyboard)
}

func (b *Bot) handleMedicalCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	conv := b.state.Get(chatID)
	data := query.Data

	switch {
	case strings.HasPrefix(data, "med:new|"):
		conv.Data["event_type"] = strings.TrimPrefix(data, "med:new|")
		conv.Step = "identity"
		b.send(chatID, "👤 Enter the person's rank and name (e.g. OCT Tan Wei Ming).")

	case data == "med:closeout":
		conv.Step = "closeout_identity"
		b.send(chatID, "👤 Whose event are you closing out? Enter rank and name.")

	case strings.HasPrefix(data, "med:event|"):
		conv.Data["event_id"] = strings.TrimPrefix(data, "med:event|")
		conv.Step = "diagnosis"
		b.send(chatID, "📝 Enter the diagnosis.")
	}
}

func (b *Bot) medicalTextInput(ctx context.Context, msg *tgbotapi.Message, conv *Conversation) {
	chatID := msg.Chat.ID
	value := strings.TrimSpace(msg.Text)

	switch conv.Step {
	case "identity":
		conv.Data["identity"] = value
		if conv.Data["event_type"] == model.EventTypeMA {
			conv.Step = "appointment"
			b.send(chatID, "🏥 What is the appointment for?")
			return
		}
		conv.Step = "symptoms"
		b.send(chatID, "🤒 Describe the symptoms.")

	case "symptoms":
		event, err := b.medical.ReportSick(ctx, conv.Data["event_type"], conv.Data["identity"], value, "")
		if err != nil {
			b.send(chatID, "❌ "+err.Error())
			return
		}
		b.state.Reset(chatID, ModeNone)
		b.send(chatID, fmt.Sprintf("✅ %s event #%d recorded for %s.\nUse /status to close it out once a diagnosis is known.",
			event.EventType, event.ID, conv.Data["identity"]))

	case "appointment":
		conv.Data["appointment"] = value
		conv.Step = "ma_location"
		b.send(chatID, "📍 Where is the appointment?")

	case "ma_location":
		conv.Data["location"] = value
		conv.Step = "ma_when"
		b.send(chatID, "📅 Enter the date and time (DDMMYY HHMM).")

	case "ma_when":
		parts := strings.Fields(value)
		if len(parts) != 2 {
			b.send(chatID, "❌ Expected DDMMYY HHMM.")
			return
		}
		event, err := b.medical.BookAppointment(ctx, conv.Data["identity"], conv.Data["appointment"], conv.Data["location"], parts[0], parts[1])
		if err != nil {
			b.send(chatID, "❌ "+err.Error())
			return
		}
		b.state.Reset(chatID, ModeNone)
		b.send(chatID, fmt.Sprintf("✅ MA event #%d booked: %s @ %s, %s.",
			event.ID, event.AppointmentType, event.Location, event.EventDatetime.Format("020106 1504")))

	case "closeout_identity":
		events, err := b.medical.ListEventsFor(ctx, value, "")
		if err != nil {
			b.send(chatID, "❌ "+err.Error())
			return
		}
		open := make([][]tgbotapi.InlineKeyboardButton, 0, len(events))
		for _, event := range events {
			if event.HasDiagnosis() {
				continue
			}
			label := fmt.Sprintf("#%d %s %s", event.ID, event.EventType, event.EventDatetime.Format("020106"))
			open = append(open, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("med:event|%d", event.ID)),
			))
		}
		if len(open) == 0 {
			b.state.Reset(chatID, ModeNone)
			b.send(chatID, "ℹ️ No open medical events for that person.")
			return
		}
		b.sendWithKeyboard(chatID, "📋 Select the event to close out:", tgbotapi.NewInlineKeyboardMarkup(open...))

	case "diagnosis":
		conv.Data["diagnosis"] = value
		conv.Step = "status_desc"
		b.send(chatID, "🛌 Enter the status granted (e.g. LD, MC), or N/A if none.")

	case "status_desc":
		conv.Data["status_desc"] = value
		if strings.EqualFold(value, "N/A") {
			b.closeOutEvent(ctx, chatID, conv, "", "")
			return
		}
		conv.Step = "status_range"
		b.send(chatID, "📅 Enter the status period (DDMMYY DDMMYY).")

	case "status_range":
		parts := strings.Fields(value)
		if len(parts) != 2 {
			b.send(chatID, "❌ Expected DDMMYY DDMMYY.")
			return
		}
		b.closeOutEvent(ctx, chatID, conv, parts[0], parts[1])
	}
}

func (b *Bot) closeOutEvent(ctx context.Context, chatID int64, conv *Conversation, startDDMMYY, endDDMMYY string) {
	eventID, err := strconv.ParseUint(conv.Data["event_id"], 10, 32)
	if err != nil {
		b.send(chatID, "❌ Something went wrong. Please start over with /status.")
		return
	}

	statusDesc := conv.Data["status_desc"]
	statusType := "status"
	if strings.EqualFold(statusDesc, "N/A") {
		statusDesc = "N/A"
	}

	event, err := b.medical.CloseOutEvent(ctx, uint(eventID), conv.Data["diagnosis"], statusType, statusDesc, startDDMMYY, endDDMMYY)
	if err != nil {
		b.send(chatID, "❌ "+err.Error())
		return
	}

	b.state.Reset(chatID, ModeNone)
	if statusDesc == "N/A" {
		b.send(chatID, fmt.Sprintf("✅ Event #%d closed out. Diagnosis: %s. No status granted.", event.ID, event.Diagnosis))
		return
	}
	b.send(chatID, fmt.Sprintf("✅ Event #%d closed out. Diagnosis: %s. Status %s from %s to %s.",
		event.ID, event.Diagnosis, statusDesc, startDDMMYY, endDDMMYY))
}
