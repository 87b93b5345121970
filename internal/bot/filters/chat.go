// Package filters решает, в каких чатах бот отвечает.
package filters

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// ChatFilter пропускает личные сообщения и настроенный групповой чат.
type ChatFilter struct {
	groupChatID int64
}

// NewChatFilter создаёт фильтр. groupChatID = 0 — только личные сообщения.
func NewChatFilter(groupChatID int64) *ChatFilter {
	return &ChatFilter{groupChatID: groupChatID}
}

// CheckAccess сообщает, нужно ли обрабатывать сообщение.
func (f *ChatFilter) CheckAccess(message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil || message.From.IsBot {
		// сервисные сообщения каналов и другие боты
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"user_id":   message.From.ID,
	})

	switch {
	case message.Chat.IsPrivate():
		return true
	case f.IsGroup(message.Chat.ID):
		return true
	}

	logger.Debug("deny: not private and not configured group")
	return false
}

// IsGroup сообщает, совпадает ли чат с настроенной группой.
func (f *ChatFilter) IsGroup(chatID int64) bool {
	return f.groupChatID != 0 && chatID == f.groupChatID
}
