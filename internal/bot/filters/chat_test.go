package filters

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func message(chatID int64, chatType string, from *tgbotapi.User) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID, Type: chatType},
		From: from,
	}
}

func TestCheckAccess(t *testing.T) {
	user := &tgbotapi.User{ID: 5}
	bot := &tgbotapi.User{ID: 6, IsBot: true}

	tests := []struct {
		name   string
		filter *ChatFilter
		msg    *tgbotapi.Message
		want   bool
	}{
		{"личка", NewChatFilter(0), message(5, "private", user), true},
		{"настроенная группа", NewChatFilter(-100), message(-100, "supergroup", user), true},
		{"чужая группа", NewChatFilter(-100), message(-200, "supergroup", user), false},
		{"группа не настроена", NewChatFilter(0), message(-100, "group", user), false},
		{"сообщение бота", NewChatFilter(-100), message(-100, "supergroup", bot), false},
		{"без отправителя", NewChatFilter(-100), message(-100, "channel", nil), false},
		{"nil", NewChatFilter(-100), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.CheckAccess(tt.msg))
		})
	}
}
