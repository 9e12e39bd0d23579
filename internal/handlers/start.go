package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const welcomeText = `📅 *Welcome to Eventboard!*

I keep a shared calendar of events for this chat.

• /event <title> <YYYY-MM-DD> [HH:MM] - Add an event
• /events [YYYY-MM-DD] - Show the agenda for a day
• /help - Show all commands

Get started by adding your first event with /event!`

// StartHandler handles the /start command
type StartHandler struct {
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(logger *logrus.Logger) *StartHandler {
	return &StartHandler{
		logger: logger,
	}
}

// Handle processes the /start command
func (h *StartHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent start message")
	return welcomeText, nil
}
