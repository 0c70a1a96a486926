// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nsokolov/studypulse-bot/internal/domain/entities"
)

const (
	msgWelcome = "Привет! Я помогу вам заниматься регулярно: выберите интересы, настройте напоминания и отмечайте свои занятия."

	msgHelp = "Доступные команды:\n\n" +
		"/start — начать работу с ботом\n" +
		"/interests — выбрать интересы (например: /interests 1,3,5)\n" +
		"/reminder — настроить напоминания (например: /reminder 2, /reminder off)\n" +
		"/progress — показать статистику занятий\n" +
		"/config — показать настройки\n" +
		"/cancel — отменить текущий диалог\n" +
		"/help — помощь"

	msgUnknownCommand = "Неизвестная команда. Посмотрите /help."
	msgNoDialogHint   = "Я вас не понял. Посмотрите /help или используйте команды."
	msgDialogBusy     = "Сначала завершите текущий диалог или отправьте /cancel."
	msgCancelled      = "Диалог отменён."
	msgNothingCancel  = "Нет активного диалога."
	msgInternalError  = "Что-то пошло не так. Попробуйте позже."
	msgStartFirst     = "Пожалуйста, сначала используйте команду /start."

	msgAskInterests       = "Отправьте номера интересов через запятую (например: 1,3,5)."
	msgInterestsSaved     = "Ваши интересы сохранены!"
	msgInterestsParseHint = "Пожалуйста, отправьте номера через запятую (например: 1,3,5)."

	msgAskInterval        = "Как часто напоминать о занятиях? Отправьте число дней от 1 до 7."
	msgIntervalNotNumber  = "Это не похоже на число. Отправьте число дней от 1 до 7."
	msgIntervalOutOfRange = "Интервал должен быть от 1 до 7 дней."
	msgReminderDisabled   = "Напоминания выключены."

	msgReminderPrompt   = "Время заниматься! 📚 Какую тему вы изучали?"
	msgTopicEmpty       = "Тема не может быть пустой. Напишите её одним сообщением."
	msgTopicTooLong     = "Слишком длинное название темы (до 200 символов). Попробуйте короче."
	msgAskDuration      = "Сколько минут вы занимались?"
	msgDurationNotNum   = "Это не похоже на число. Отправьте количество минут, например: 30."
	msgDurationOutRange = "Количество минут должно быть от 1 до 1440."
)

func formatCatalog(catalog []string) string {
	var b strings.Builder
	b.WriteString("Доступные интересы:\n\n")
	for i, label := range catalog {
		fmt.Fprintf(&b, "%d. %s\n", i+1, label)
	}
	return b.String()
}

func formatInterests(labels []string) string {
	if len(labels) == 0 {
		return "Интересы не выбраны. Используйте /interests для выбора."
	}
	var b strings.Builder
	b.WriteString("Ваши интересы:\n")
	for i, label := range labels {
		fmt.Fprintf(&b, "%d. %s\n", i+1, label)
	}
	return b.String()
}

func formatInvalidIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return fmt.Sprintf("Некорректные номера интересов: %s. Попробуйте снова.", strings.Join(parts, ", "))
}

func formatReminderConfigured(setting *entities.ReminderSetting) string {
	if setting.NextDueAt == nil {
		return fmt.Sprintf("Напоминания включены: раз в %d дн.", setting.IntervalDays)
	}
	return fmt.Sprintf(
		"Напоминания включены: раз в %d дн.\nСледующее напоминание: %s.",
		setting.IntervalDays,
		setting.NextDueAt.Format("02.01.2006 15:04"),
	)
}

func formatConfig(user *entities.User, interests []string, setting *entities.ReminderSetting) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Ваши настройки:</b>\n\n")
	fmt.Fprintf(&b, "<b>Telegram ID:</b> %d\n", user.ID)
	fmt.Fprintf(&b, "<b>Имя:</b> %s\n", orDash(user.FirstName))
	fmt.Fprintf(&b, "<b>Фамилия:</b> %s\n", orDash(user.LastName))
	fmt.Fprintf(&b, "<b>Username:</b> @%s\n", orDash(user.Username))
	if user.IsActive {
		b.WriteString("<b>Статус:</b> активен\n\n")
	} else {
		b.WriteString("<b>Статус:</b> неактивен\n\n")
	}

	b.WriteString(formatInterests(interests))

	b.WriteString("\n")
	switch {
	case setting == nil:
		b.WriteString("Напоминания не настроены. Используйте /reminder.")
	case !setting.IsEnabled:
		b.WriteString("Напоминания выключены.")
	default:
		fmt.Fprintf(&b, "Напоминания: раз в %d дн.", setting.IntervalDays)
		if setting.NextDueAt != nil {
			fmt.Fprintf(&b, " Следующее: %s.", setting.NextDueAt.Format("02.01.2006 15:04"))
		}
	}

	return b.String()
}

func formatStats(stats *entities.ProgressStats) string {
	return fmt.Sprintf(
		"📊 Всего занятий: %d\nВсего минут: %d",
		stats.TotalEntries,
		stats.TotalMinutes,
	)
}

func formatRecorded(entry *entities.StudyProgressEntry, stats *entities.ProgressStats, motivation string) string {
	return fmt.Sprintf(
		"Записано: «%s», %d мин.\n\n%s\n\n%s",
		entry.Topic,
		entry.DurationMinutes,
		formatStats(stats),
		motivation,
	)
}

func formatRecent(entries []*entities.StudyProgressEntry) string {
	if len(entries) == 0 {
		return "Занятий пока не записано."
	}
	var b strings.Builder
	b.WriteString("Последние занятия:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "— %s: %s, %d мин.\n",
			e.CreatedAt.Format("02.01"),
			e.Topic,
			e.DurationMinutes,
		)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "не указано"
	}
	return s
}

// newHTMLMessage creates a message with HTML parse mode.
func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

// mainKeyboard is the inline keyboard attached to /start and /help replies.
func mainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 Помощь", "help"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки", "config"),
		),
	)
}
