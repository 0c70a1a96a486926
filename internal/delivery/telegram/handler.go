package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/nsokolov/studypulse-bot/internal/dialog"
)

type Handler struct {
	bot             sender
	logger          *zap.Logger
	userService     UserService
	interestService InterestService
	reminderService ReminderService
	progressService ProgressService
	registry        DialogRegistry
}

func NewHandler(
	bot sender,
	logger *zap.Logger,
	userService UserService,
	interestService InterestService,
	reminderService ReminderService,
	progressService ProgressService,
	registry DialogRegistry,
) *Handler {
	h := &Handler{
		bot:             bot,
		logger:          logger,
		userService:     userService,
		interestService: interestService,
		reminderService: reminderService,
		progressService: progressService,
		registry:        registry,
	}
	h.registerDialogs()
	return h
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	from := update.Message.From
	if from == nil {
		return
	}
	chatID := update.Message.Chat.ID

	h.logger.Debug("update received",
		zap.Int64("chat_id", chatID),
		zap.String("text", update.Message.Text),
	)

	err := h.userService.EnsureUser(ctx, from.ID, chatID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	}

	if update.Message.IsCommand() {
		h.handleCommand(ctx, update.Message)
		return
	}

	h.handleText(ctx, from.ID, chatID, update.Message.Text)
}

// handleText routes free text to the user's active dialog. Without one
// the text is not meaningful, so the user gets a generic hint instead of
// the raw contract error.
func (h *Handler) handleText(ctx context.Context, userID, chatID int64, text string) {
	err := h.registry.Dispatch(ctx, userID, text)
	if err == nil {
		return
	}

	if errors.Is(err, dialog.ErrNoActiveDialog) {
		h.send(newHTMLMessage(chatID, msgNoDialogHint))
		return
	}

	// Dialog handlers reply to the user themselves; the error only means
	// the state was kept for a retry.
	h.logger.Debug("dialog input rejected",
		zap.Int64("user_id", userID),
		zap.Error(err),
	)
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch cb.Data {
	case "help":
		msg := newHTMLMessage(chatID, msgHelp)
		msg.ReplyMarkup = mainKeyboard()
		h.send(msg)
	case "config":
		h.sendConfig(ctx, cb.From.ID, chatID)
	}

	// Remove the user's "clock".
	answer := tgbotapi.NewCallback(cb.ID, "")
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Error("failed to answer callback", zap.Error(err))
	}
}

// SendReminderPrompt delivers the scheduler's progress-capture prompt.
// Implements the scheduler's Notifier.
func (h *Handler) SendReminderPrompt(chatID int64) error {
	_, err := h.bot.Send(newHTMLMessage(chatID, msgReminderPrompt))
	return err
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message", zap.Error(err))
	}
}
