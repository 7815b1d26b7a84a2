package confirm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackApprove = "approve"
	callbackAbort   = "abort"
)

// Telegram asks for approval through a Telegram bot with an inline keyboard.
// One decision is pending at a time per message; the listener routes the
// callback back to the waiting Confirm call.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	mu       sync.Mutex
	channels map[int]chan Decision
}

// NewTelegram builds a Telegram confirmer and starts its update listener.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}

	t := &Telegram{
		bot:      bot,
		chatID:   chatID,
		channels: make(map[int]chan Decision),
	}
	go t.listen()
	return t, nil
}

func (t *Telegram) listen() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery == nil || update.CallbackQuery.Message == nil {
			continue
		}
		callback := update.CallbackQuery

		decision := Aborted
		if callback.Data == callbackApprove {
			decision = Approved
		}

		t.mu.Lock()
		msgID := callback.Message.MessageID
		if ch, ok := t.channels[msgID]; ok {
			ch <- decision
			delete(t.channels, msgID)

			ack := tgbotapi.NewCallback(callback.ID, "Recorded: "+string(decision))
			_, _ = t.bot.Request(ack)

			edit := tgbotapi.NewEditMessageReplyMarkup(t.chatID, msgID,
				tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
			_, _ = t.bot.Send(edit)
		}
		t.mu.Unlock()
	}
}

// Confirm sends the preview to the configured chat and waits for a button.
func (t *Telegram) Confirm(ctx context.Context, req Request) (Decision, error) {
	text := fmt.Sprintf("*%s*\n\n%s", escapeMarkdown(req.ProductTitle), escapeMarkdown(req.Caption))
	if req.ProductURL != "" {
		text += "\n\n" + escapeMarkdown(req.ProductURL)
	}
	text += "\n\nReview the post in the browser and publish it yourself before approving."

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Published", callbackApprove),
			tgbotapi.NewInlineKeyboardButtonData("❌ Abort", callbackAbort),
		),
	)

	sent, err := t.bot.Send(msg)
	if err != nil {
		return Aborted, fmt.Errorf("send confirmation message: %w", err)
	}

	respCh := make(chan Decision, 1)
	t.mu.Lock()
	t.channels[sent.MessageID] = respCh
	t.mu.Unlock()

	select {
	case decision := <-respCh:
		return decision, nil
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.channels, sent.MessageID)
		t.mu.Unlock()
		return Aborted, ctx.Err()
	}
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
