package handlers

import (
	"context"
	"sort"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Subscribers is the set of chats that receive the daily agenda.
type Subscribers struct {
	mu    sync.RWMutex
	chats map[int64]struct{}
}

// NewSubscribers creates an empty subscriber set.
func NewSubscribers() *Subscribers {
	return &Subscribers{chats: make(map[int64]struct{})}
}

// Add reports whether the chat was newly added.
func (s *Subscribers) Add(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; ok {
		return false
	}
	s.chats[chatID] = struct{}{}
	return true
}

// Remove reports whether the chat was subscribed.
func (s *Subscribers) Remove(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; !ok {
		return false
	}
	delete(s.chats, chatID)
	return true
}

// Chats returns the subscribed chat ids in ascending order.
func (s *Subscribers) Chats() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.chats))
	for id := range s.chats {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SubscribeHandler handles /subscribe
type SubscribeHandler struct {
	subs   *Subscribers
	logger *logrus.Logger
}

// NewSubscribeHandler creates a new SubscribeHandler.
func NewSubscribeHandler(subs *Subscribers, logger *logrus.Logger) *SubscribeHandler {
	return &SubscribeHandler{subs: subs, logger: logger}
}

func (h *SubscribeHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	if !h.subs.Add(message.Chat.ID) {
		return "🔔 This chat already gets the daily agenda.", nil
	}
	h.logger.WithField("chat_id", message.Chat.ID).Info("Chat subscribed to digest")
	return "🔔 Subscribed! I'll post each day's agenda here.", nil
}

// UnsubscribeHandler handles /unsubscribe
type UnsubscribeHandler struct {
	subs   *Subscribers
	logger *logrus.Logger
}

// NewUnsubscribeHandler creates a new UnsubscribeHandler.
func NewUnsubscribeHandler(subs *Subscribers, logger *logrus.Logger) *UnsubscribeHandler {
	return &UnsubscribeHandler{subs: subs, logger: logger}
}

func (h *UnsubscribeHandler) Handle(ctx context.Context, message *tgbotapi.Message, args []string) (string, error) {
	if !h.subs.Remove(message.Chat.ID) {
		return "This chat is not subscribed.", nil
	}
	h.logger.WithField("chat_id", message.Chat.ID).Info("Chat unsubscribed from digest")
	return "🔕 Unsubscribed.", nil
}
