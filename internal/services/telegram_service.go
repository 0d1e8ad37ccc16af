package services

import (
	"context"
	"fmt"
	"html"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskverse/internal/models"
)

type TelegramService struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramService authenticates the bot token against the Bot API.
func NewTelegramService(botToken string, debug bool) (*TelegramService, error) {
	return NewTelegramServiceWithEndpoint(botToken, tgbotapi.APIEndpoint, debug)
}

// NewTelegramServiceWithEndpoint targets a custom Bot API endpoint of the
// form "https://host/bot%s/%s".
func NewTelegramServiceWithEndpoint(botToken, endpoint string, debug bool) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(botToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = debug
	log.Printf("[tg] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot}, nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || t.bot == nil || chatID == 0 {
		log.Printf("[tg][skip] bot or chatID empty (chatID=%d)", chatID)
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", chatID, err)
		return err
	}
	log.Printf("[tg][send] chatID=%d", chatID)
	return nil
}

func (t *TelegramService) Name() string { return "telegram" }

// NotifyReminder messages users who linked a chat and kept notifications on.
func (t *TelegramService) NotifyReminder(_ context.Context, user *models.User, task models.Task) error {
	if user.TelegramChatID == 0 || !user.NotifyTelegram {
		return nil
	}
	text := fmt.Sprintf("⏰ <b>%s</b>", html.EscapeString(task.Title))
	if task.DueDate != nil {
		text += "\nDue: " + task.DueDate.UTC().Format("2006-01-02 15:04 UTC")
	}
	text += fmt.Sprintf("\nPriority: %s", task.Priority)
	return t.SendMessage(user.TelegramChatID, text)
}
