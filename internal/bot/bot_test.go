package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpTextMentionsReminders(t *testing.T) {
	assert.Contains(t, helpText(true), "!напоминание")
	assert.NotContains(t, helpText(false), "!напоминание")
	assert.Contains(t, helpText(false), "!сделал")
}

func TestKeyboardButtonsAreCommands(t *testing.T) {
	p := NewCommandParser()
	known := map[string]bool{
		"упражнение": true, "сделал": true, "другое": true,
		"сложнее": true, "легче": true, "очки": true, "топ": true,
	}

	for _, row := range mainKeyboard().Keyboard {
		for _, button := range row {
			cmd, _, ok := p.ParseBare(button.Text)
			assert.True(t, ok)
			assert.True(t, known[cmd], "кнопка %q не ведёт к команде", button.Text)
		}
	}
}
