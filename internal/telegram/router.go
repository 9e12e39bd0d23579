package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	errorReply   = "❌ An error occurred while processing your command. Please try again."
	unknownReply = "❓ Unknown command. Use /help to see available commands."
)

// Sender delivers a message to Telegram. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Router handles message routing and command parsing
type Router struct {
	logger   *logrus.Logger
	handlers map[string]CommandHandler
}

// CommandHandler handles one bot command and returns the reply text.
// An empty reply sends nothing.
type CommandHandler interface {
	Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error)
}

// CommandFunc adapts a function to CommandHandler.
type CommandFunc func(ctx context.Context, message *tgbotapi.Message, args []string) (string, error)

func (f CommandFunc) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	return f(ctx, message, args)
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// Dispatch runs the handler for a command message and returns the reply.
// Non-command messages yield an empty reply.
func (r *Router) Dispatch(ctx context.Context, message *tgbotapi.Message) string {
	if message.Text == "" || !message.IsCommand() {
		return ""
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())
	fields := logrus.Fields{
		"command": command,
		"chat_id": message.Chat.ID,
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
	}

	handler, exists := r.handlers[command]
	if !exists {
		r.logger.WithFields(fields).Warn("Unknown command")
		return unknownReply
	}

	reply, err := handler.Handle(ctx, message, args)
	if err != nil {
		r.logger.WithFields(fields).WithError(err).Error("Command handler failed")
		return errorReply
	}
	return reply
}

// HandleMessage dispatches the message and sends the reply, if any.
func (r *Router) HandleMessage(ctx context.Context, sender Sender, message *tgbotapi.Message) {
	r.logger.WithFields(logrus.Fields{
		"chat_id":    message.Chat.ID,
		"message_id": message.MessageID,
		"text":       message.Text,
	}).Debug("Received message")

	reply := r.Dispatch(ctx, message)
	if reply == "" {
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := sender.Send(msg); err != nil {
		r.logger.WithError(err).WithField("chat_id", message.Chat.ID).Error("Failed to send reply")
	}
}
