package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const helpText = `📚 *Eventboard Help*

*Events:*
• /event <title> <YYYY-MM-DD> [HH:MM] - Add event
• /events [YYYY-MM-DD] - Show a day's agenda
• /move <id> <YYYY-MM-DD> - Move an event to another day
• /rename <id> <title> - Rename an event
• /delevent <id> - Delete an event

*Digest:*
• /subscribe - Get each day's agenda every morning
• /unsubscribe - Stop the daily agenda`

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

// NewHelpHandler creates a new help command handler
func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent help message")
	return helpText, nil
}
