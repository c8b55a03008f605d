package telegramnotifier

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"waterreminder/internal/core/domain/alert"
	e "waterreminder/internal/core/domain/errors"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	"waterreminder/internal/core/services"
	acknowledgealert "waterreminder/internal/core/services/acknowledge_alert"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const CallbackPrefix = "ack:"

type Bot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// Notifier posts alert notifications to a Telegram chat. The message carries
// an inline button that acknowledges the alert and is deleted on cancel.
type Notifier struct {
	log    logging.Logger
	bot    Bot
	chatID int64

	lock     sync.Mutex
	messages map[reminder.ID]int
}

func New(log logging.Logger, b Bot, chatID int64) *Notifier {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if b == nil {
		panic(e.NewNilArgumentError("b"))
	}
	return &Notifier{
		log:      log,
		bot:      b,
		chatID:   chatID,
		messages: make(map[reminder.ID]int),
	}
}

func CallbackData(reminderID reminder.ID) string {
	return CallbackPrefix + strconv.FormatInt(int64(reminderID), 10)
}

func ParseCallbackData(data string) (reminder.ID, error) {
	raw, ok := strings.CutPrefix(data, CallbackPrefix)
	if !ok {
		return 0, fmt.Errorf("unexpected callback data %q", data)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reminder ID in callback data %q: %w", data, err)
	}
	return reminder.ID(id), nil
}

func (n *Notifier) Notify(ctx context.Context, notification alert.Notification) error {
	message, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.chatID,
		Text:   fmt.Sprintf("%s\n%s", notification.Title, notification.Text),
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{
					{
						Text:         notification.ActionLabel,
						CallbackData: CallbackData(notification.ReminderID),
					},
				},
			},
		},
	})
	if err != nil {
		return err
	}

	n.lock.Lock()
	n.messages[notification.ReminderID] = message.ID
	n.lock.Unlock()

	n.log.Info(
		ctx,
		"Telegram notification sent.",
		logging.Entry("reminderID", notification.ReminderID),
		logging.Entry("messageID", message.ID),
	)
	return nil
}

func (n *Notifier) Cancel(ctx context.Context, reminderID reminder.ID) error {
	n.lock.Lock()
	messageID, ok := n.messages[reminderID]
	delete(n.messages, reminderID)
	n.lock.Unlock()

	if !ok {
		return nil
	}

	_, err := n.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: n.chatID, MessageID: messageID})
	if err != nil {
		return err
	}
	n.log.Info(
		ctx,
		"Telegram notification deleted.",
		logging.Entry("reminderID", reminderID),
		logging.Entry("messageID", messageID),
	)
	return nil
}

// CallbackHandler acknowledges the alert when the inline button is pressed.
type CallbackHandler struct {
	log     logging.Logger
	service services.Service[acknowledgealert.Input, acknowledgealert.Result]
}

func NewCallbackHandler(
	log logging.Logger,
	service services.Service[acknowledgealert.Input, acknowledgealert.Result],
) *CallbackHandler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &CallbackHandler{log: log, service: service}
}

func (h *CallbackHandler) Register(b *bot.Bot) string {
	return b.RegisterHandler(bot.HandlerTypeCallbackQueryData, CallbackPrefix, bot.MatchTypePrefix, h.Handle)
}

func (h *CallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		h.log.Warning(ctx, "Got Telegram update without callback query.")
		return
	}

	text := "Enjoy your water!"
	reminderID, err := ParseCallbackData(update.CallbackQuery.Data)
	if err == nil {
		_, err = h.service.Run(ctx, acknowledgealert.Input{ReminderID: reminderID})
	}
	if err != nil {
		logging.Error(ctx, h.log, err, logging.Entry("data", update.CallbackQuery.Data))
		text = "Could not acknowledge the reminder."
	}

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
		Text:            text,
	}); err != nil {
		logging.Error(ctx, h.log, err, logging.Entry("callbackQueryID", update.CallbackQuery.ID))
	}
}
