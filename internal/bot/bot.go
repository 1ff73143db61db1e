// Package bot delivers reminder messages over Telegram and answers a
// small set of read-only commands.
package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"homecare/internal/service"
)

// Notifier pushes reminder text to one configured chat.
type Notifier struct {
	api       *tgbotapi.BotAPI
	chatID    int64
	reminders *service.ReminderService
}

func New(token string, chatID int64, reminders *service.ReminderService) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Notifier{api: api, chatID: chatID, reminders: reminders}, nil
}

// Send delivers one HTML message to the configured chat.
func (n *Notifier) Send(text string) error {
	if n.chatID == 0 {
		return fmt.Errorf("no chat configured")
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Start polls for commands until ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := n.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		n.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil || !update.Message.IsCommand() {
			continue
		}
		if n.chatID != 0 && update.Message.Chat.ID != n.chatID {
			continue
		}
		if err := n.handleCommand(update.Message); err != nil {
			log.Printf("handle command: %v", err)
		}
	}

	return nil
}

func (n *Notifier) handleCommand(msg *tgbotapi.Message) error {
	now := time.Now()
	var text string
	switch msg.Command() {
	case "summary":
		text = n.reminders.BuildWeeklySummary(now).Body
	case "tasks":
		text = n.reminders.BuildTaskList(now)
	default:
		return nil
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}
