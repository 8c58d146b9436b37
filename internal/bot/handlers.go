package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/example/wordbot/internal/session"
)

// handleUpdate dispatches one update. Panics and errors end up as a generic
// failure message in the chat.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	chatID := chatOf(update)
	logger := b.logger.WithFields(logrus.Fields{
		"update": update.UpdateID,
		"chat":   chatID,
	})

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("panic while handling update")
			b.fail(chatID)
		}
	}()

	var err error
	switch {
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, update.CallbackQuery)
	default:
		return
	}
	if err != nil {
		logger.WithError(err).Error("failed to handle update")
		b.fail(chatID)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return nil
	}
	learner := strconv.FormatInt(message.From.ID, 10)
	chatID := message.Chat.ID

	var (
		res *session.Result
		err error
	)
	switch {
	case message.IsCommand():
		b.typing(chatID)
		res, err = b.engine.HandleCommand(ctx, learner, message.Command())
		if errors.Is(err, session.ErrUnknownCommand) {
			res, err = &session.Result{Kind: session.KindTerminal, Text: session.UnknownCommandText}, nil
		}
	case message.Text != "":
		b.typing(chatID)
		res, err = b.engine.HandleText(ctx, learner, message.Text)
	default:
		// stickers, photos and the like
		return nil
	}
	if err != nil {
		return err
	}
	return b.render(chatID, res)
}

// handleCallback answers the button press, clears the pressed keyboard so it
// cannot be used twice and resumes the flow from the button data
func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.From == nil || callback.Message == nil || callback.Message.Chat == nil {
		return fmt.Errorf("invalid callback: required fields are missing")
	}
	chatID := callback.Message.Chat.ID

	if _, err := b.client.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.WithError(err).Warn("failed to answer callback")
	}
	markup := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := b.client.Request(markup); err != nil {
		b.logger.WithError(err).Debug("failed to clear keyboard")
	}

	b.typing(chatID)
	res, err := b.engine.HandleAction(ctx, strconv.FormatInt(callback.From.ID, 10), callback.Data)
	if err != nil {
		return err
	}
	return b.render(chatID, res)
}

// render sends a Result: the notice, the text with its keyboard and finally
// the pronunciation clip. A clip that cannot be sent is not an error.
func (b *Bot) render(chatID int64, res *session.Result) error {
	if res.Notice != "" {
		if err := b.send(tgbotapi.NewMessage(chatID, res.Notice)); err != nil {
			return err
		}
	}

	msg := tgbotapi.NewMessage(chatID, res.Text)
	if len(res.Controls) > 0 {
		msg.ReplyMarkup = createKeyboard(res.Controls)
	}
	if err := b.send(msg); err != nil {
		return err
	}

	if res.AudioPath != "" {
		if err := b.send(tgbotapi.NewAudio(chatID, tgbotapi.FilePath(res.AudioPath))); err != nil {
			b.logger.WithError(err).WithField("audio", res.AudioPath).Warn("failed to send audio")
		}
	}
	return nil
}

// createKeyboard creates an inline keyboard from session controls
func createKeyboard(controls [][]session.Control) tgbotapi.InlineKeyboardMarkup {
	rows := lo.Map(controls, func(row []session.Control, _ int) []tgbotapi.InlineKeyboardButton {
		return lo.Map(row, func(c session.Control, _ int) tgbotapi.InlineKeyboardButton {
			return tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data)
		})
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.client.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.WithError(err).Debug("failed to send chat action")
	}
}

func (b *Bot) fail(chatID int64) {
	if chatID == 0 {
		return
	}
	if err := b.send(tgbotapi.NewMessage(chatID, session.FailureText)); err != nil {
		b.logger.WithError(err).Warn("failed to report failure")
	}
}

func chatOf(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
