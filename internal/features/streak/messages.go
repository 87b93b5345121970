// Package streak — messages.go содержит мотивационные фразы и похвалу.
package streak

// motivationalMessages — фраза дня, выбирается по номеру дня от начала эпохи.
var motivationalMessages = []string{
	"Двигайся каждый день — каждый день это новый шанс стать лучше. 💪",
	"Ты сильнее, чем думаешь! Продолжай! 🌟",
	"Маленькие шаги приводят к большим переменам. 🚀",
	"Тело может всё, уговорить нужно только голову! 💯",
	"Плохая тренировка — только та, которой не было! 🔥",
	"Поверь в себя, и тебя не остановить! ⭐",
	"Прогресс, а не идеал. У тебя получится! 💪",
	"Каждое упражнение приближает к цели! 🎯",
	"Сейчас потеешь — потом сияешь! ✨",
	"Остановись не когда устал, а когда сделал! 🏆",
}

// firstOfDayMessages — похвала за первое выполнение дня.
var firstOfDayMessages = []string{
	"Отличная работа! Счёт растёт, так держать! 💪",
	"Потрясающе! Сегодня ты в ударе! 🌟",
	"Великолепно! Ты в огне! 🔥",
	"Молодец! Твоё упорство вдохновляет! ⭐",
	"Превосходно! С каждым днём всё сильнее! 💯",
	"Браво! Не сбавляй темп! 🚀",
	"Супер! Настоящий чемпион! 🏆",
	"Здорово! Труд окупается! ✨",
}

// bonusMessages — похвала за повторные выполнения в тот же день.
var bonusMessages = []string{
	"Ещё одно? Вот это энергия! ⚡",
	"Бонусный подход засчитан! 🎯",
	"Сверх плана — уважение! 🙌",
	"Перевыполнение нормы! 📈",
}

// DailyMotivation возвращает фразу дня: floor(millis / сутки) mod n.
func DailyMotivation(date Date) string {
	day := date.EpochMillis() / msPerDay
	n := int64(len(motivationalMessages))
	idx := day % n
	if idx < 0 {
		idx += n
	}
	return motivationalMessages[idx]
}

// SuccessMessage выбирает случайную похвалу. Первое выполнение дня
// (полные 10 очков) хвалим иначе, чем бонусные подходы.
func SuccessMessage(pointsAwarded int, rnd RandomSource) string {
	pool := bonusMessages
	if pointsAwarded >= PointsForPosition(0) {
		pool = firstOfDayMessages
	}
	return pool[rnd.Intn(len(pool))]
}
