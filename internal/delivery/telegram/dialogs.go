package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/dialog"
	"github.com/nsokolov/studypulse-bot/internal/service"
)

// registerDialogs wires one handler per dialog state variant into the
// registry. Every handler replies to the user itself; a returned error
// only tells the registry to keep the state for a retry.
func (h *Handler) registerDialogs() {
	h.registry.Register(dialog.KindInterestSelection, h.interestSelectionStep)
	h.registry.Register(dialog.KindReminderInterval, h.reminderIntervalStep)
	h.registry.Register(dialog.KindProgressTopic, h.progressTopicStep)
	h.registry.Register(dialog.KindProgressDuration, h.progressDurationStep)
}

func (h *Handler) interestSelectionStep(ctx context.Context, userID int64, _ dialog.State, input string) (*dialog.State, error) {
	chatID := h.chatIDFor(ctx, userID)
	if err := h.saveInterests(ctx, userID, chatID, input); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *Handler) reminderIntervalStep(ctx context.Context, userID int64, _ dialog.State, input string) (*dialog.State, error) {
	chatID := h.chatIDFor(ctx, userID)
	if err := h.configureReminder(ctx, userID, chatID, input); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *Handler) progressTopicStep(ctx context.Context, userID int64, _ dialog.State, input string) (*dialog.State, error) {
	chatID := h.chatIDFor(ctx, userID)

	topic, err := h.progressService.ValidateTopic(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTopicEmpty):
			h.send(newHTMLMessage(chatID, msgTopicEmpty))
		case errors.Is(err, service.ErrTopicTooLong):
			h.send(newHTMLMessage(chatID, msgTopicTooLong))
		default:
			h.send(newHTMLMessage(chatID, msgInternalError))
		}
		return nil, err
	}

	h.send(newHTMLMessage(chatID, msgAskDuration))
	return &dialog.State{Kind: dialog.KindProgressDuration, Topic: topic}, nil
}

func (h *Handler) progressDurationStep(ctx context.Context, userID int64, st dialog.State, input string) (*dialog.State, error) {
	chatID := h.chatIDFor(ctx, userID)

	minutes, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		h.send(newHTMLMessage(chatID, msgDurationNotNum))
		return nil, err
	}

	entry, stats, err := h.progressService.Record(ctx, userID, st.Topic, minutes)
	if err != nil {
		if errors.Is(err, service.ErrDurationOutOfRange) {
			h.send(newHTMLMessage(chatID, msgDurationOutRange))
		} else {
			h.logger.Error("failed to record study session",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			h.send(newHTMLMessage(chatID, msgInternalError))
		}
		return nil, err
	}

	h.send(newHTMLMessage(chatID, formatRecorded(entry, stats, h.progressService.Motivation())))
	h.advanceReminder(ctx, userID)

	return nil, nil
}

// advanceReminder pushes next_due forward after a completed capture. A
// missing setting or a store error is non-fatal: the session is already
// recorded, the reminder just fires again on the next scan.
func (h *Handler) advanceReminder(ctx context.Context, userID int64) {
	setting, err := h.reminderService.Get(ctx, userID)
	if err != nil || setting == nil {
		return
	}

	next := setting.NextDueFrom(time.Now())
	if _, err := h.reminderService.RecordFired(ctx, userID, next); err != nil {
		h.logger.Error("failed to advance reminder",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

// chatIDFor resolves the chat to reply in. Private chats share the user's
// ID, which also serves as the fallback when the user record is missing.
func (h *Handler) chatIDFor(ctx context.Context, userID int64) int64 {
	user, err := h.userService.Get(ctx, userID)
	if err != nil {
		return userID
	}
	return user.ChatID
}
