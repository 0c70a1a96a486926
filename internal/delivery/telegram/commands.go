package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/dialog"
	"github.com/nsokolov/studypulse-bot/internal/infra/postgres/repository"
	"github.com/nsokolov/studypulse-bot/internal/service"
)

const recentEntriesShown = 5

func (h *Handler) handleCommand(ctx context.Context, m *tgbotapi.Message) {
	userID := m.From.ID
	chatID := m.Chat.ID
	args := strings.TrimSpace(m.CommandArguments())

	switch m.Command() {
	case "start":
		msg := newHTMLMessage(chatID, msgWelcome)
		msg.ReplyMarkup = mainKeyboard()
		h.send(msg)
		h.send(newHTMLMessage(chatID, msgHelp))

	case "help":
		msg := newHTMLMessage(chatID, msgHelp)
		msg.ReplyMarkup = mainKeyboard()
		h.send(msg)

	case "config":
		h.sendConfig(ctx, userID, chatID)

	case "interests":
		h.handleInterestsCommand(ctx, userID, chatID, args)

	case "reminder":
		h.handleReminderCommand(ctx, userID, chatID, args)

	case "progress":
		h.handleProgressCommand(ctx, userID, chatID)

	case "cancel":
		if _, active := h.registry.Active(userID); !active {
			h.send(newHTMLMessage(chatID, msgNothingCancel))
			return
		}
		h.registry.Cancel(userID)
		h.send(newHTMLMessage(chatID, msgCancelled))

	default:
		h.send(newHTMLMessage(chatID, msgUnknownCommand))
	}
}

// handleInterestsCommand saves interests one-shot when indices are given,
// otherwise shows the catalog and opens the selection dialog.
func (h *Handler) handleInterestsCommand(ctx context.Context, userID, chatID int64, args string) {
	if args != "" {
		h.saveInterests(ctx, userID, chatID, args)
		return
	}

	current, err := h.interestService.List(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list interests",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		h.send(newHTMLMessage(chatID, msgInternalError))
		return
	}
	if len(current) > 0 {
		h.send(newHTMLMessage(chatID, formatInterests(current)))
	}

	if _, err := h.registry.Begin(userID, dialog.KindInterestSelection); err != nil {
		h.send(newHTMLMessage(chatID, msgDialogBusy))
		return
	}

	h.send(newHTMLMessage(chatID, formatCatalog(h.interestService.Catalog())))
	h.send(newHTMLMessage(chatID, msgAskInterests))
}

// saveInterests parses "1,3,5" style input and persists the selection.
// Returns an error when the input must be retried.
func (h *Handler) saveInterests(ctx context.Context, userID, chatID int64, input string) error {
	indices, err := parseIndices(input)
	if err != nil {
		h.send(newHTMLMessage(chatID, msgInterestsParseHint))
		return err
	}

	labels, err := h.interestService.Save(ctx, userID, indices)
	if err != nil {
		var invalid *service.InvalidIndexError
		switch {
		case errors.As(err, &invalid):
			h.send(newHTMLMessage(chatID, formatInvalidIndices(invalid.Indices)))
		case errors.Is(err, service.ErrNoIndices):
			h.send(newHTMLMessage(chatID, msgInterestsParseHint))
		default:
			h.logger.Error("failed to save interests",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			h.send(newHTMLMessage(chatID, msgInternalError))
		}
		return err
	}

	h.send(newHTMLMessage(chatID, msgInterestsSaved))
	h.send(newHTMLMessage(chatID, formatInterests(labels)))
	return nil
}

// handleReminderCommand configures the reminder one-shot when an argument
// is given ("off" disables), otherwise opens the interval dialog.
func (h *Handler) handleReminderCommand(ctx context.Context, userID, chatID int64, args string) {
	switch {
	case strings.EqualFold(args, "off"):
		if err := h.reminderService.Disable(ctx, userID); err != nil {
			h.logger.Error("failed to disable reminder",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			h.send(newHTMLMessage(chatID, msgInternalError))
			return
		}
		h.send(newHTMLMessage(chatID, msgReminderDisabled))

	case args != "":
		h.configureReminder(ctx, userID, chatID, args)

	default:
		if _, err := h.registry.Begin(userID, dialog.KindReminderInterval); err != nil {
			h.send(newHTMLMessage(chatID, msgDialogBusy))
			return
		}
		h.send(newHTMLMessage(chatID, msgAskInterval))
	}
}

// configureReminder parses the interval argument and persists the setting.
// Returns an error when the input must be retried.
func (h *Handler) configureReminder(ctx context.Context, userID, chatID int64, input string) error {
	days, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		h.send(newHTMLMessage(chatID, msgIntervalNotNumber))
		return err
	}

	setting, err := h.reminderService.Configure(ctx, userID, days)
	if err != nil {
		if errors.Is(err, service.ErrIntervalOutOfRange) {
			h.send(newHTMLMessage(chatID, msgIntervalOutOfRange))
		} else {
			h.logger.Error("failed to configure reminder",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			h.send(newHTMLMessage(chatID, msgInternalError))
		}
		return err
	}

	h.send(newHTMLMessage(chatID, formatReminderConfigured(setting)))
	return nil
}

func (h *Handler) handleProgressCommand(ctx context.Context, userID, chatID int64) {
	stats, err := h.progressService.Stats(ctx, userID)
	if err != nil {
		h.logger.Error("failed to get progress stats",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		h.send(newHTMLMessage(chatID, msgInternalError))
		return
	}

	recent, err := h.progressService.Recent(ctx, userID, recentEntriesShown)
	if err != nil {
		h.logger.Error("failed to get recent progress",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		h.send(newHTMLMessage(chatID, msgInternalError))
		return
	}

	h.send(newHTMLMessage(chatID, formatStats(stats)+"\n\n"+formatRecent(recent)))
}

func (h *Handler) sendConfig(ctx context.Context, userID, chatID int64) {
	user, err := h.userService.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			h.send(newHTMLMessage(chatID, msgStartFirst))
			return
		}
		h.logger.Error("failed to get user",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		h.send(newHTMLMessage(chatID, msgInternalError))
		return
	}

	interests, err := h.interestService.List(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list interests",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		h.send(newHTMLMessage(chatID, msgInternalError))
		return
	}

	setting, err := h.reminderService.Get(ctx, userID)
	if err != nil {
		h.logger.Error("failed to get reminder setting",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		h.send(newHTMLMessage(chatID, msgInternalError))
		return
	}

	msg := newHTMLMessage(chatID, formatConfig(user, interests, setting))
	msg.ReplyMarkup = mainKeyboard()
	h.send(msg)
}

// parseIndices splits "1,3, 5" style input into integers.
func parseIndices(input string) ([]int, error) {
	parts := strings.Split(strings.ReplaceAll(input, " ", ""), ",")

	var indices []int
	for _, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		indices = append(indices, n)
	}

	return indices, nil
}
