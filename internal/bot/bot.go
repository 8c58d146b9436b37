package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/wordbot/internal/config"
	"github.com/example/wordbot/internal/session"
	"github.com/example/wordbot/pkg/models"
)

const (
	// handlerTimeout bounds the work done for one update
	handlerTimeout = 30 * time.Second

	reminderText = "⏰ Time to review your vocabulary!\n/review"
)

// Engine is the session logic the bot forwards learner events to
type Engine interface {
	HandleCommand(ctx context.Context, learnerID, name string) (*session.Result, error)
	HandleText(ctx context.Context, learnerID, text string) (*session.Result, error)
	HandleAction(ctx context.Context, learnerID, data string) (*session.Result, error)
}

// sender is the part of the Telegram API the handlers use
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram bot application
type Bot struct {
	api            *tgbotapi.BotAPI
	client         sender
	engine         Engine
	logger         logrus.FieldLogger
	pollingTimeout int
	wg             sync.WaitGroup
}

// New authorizes against the Telegram API
func New(cfg config.BotConfig, engine Engine, logger logrus.FieldLogger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram bot token is not set")
	}
	if err := tgbotapi.SetLogger(logger); err != nil {
		return nil, fmt.Errorf("unable to set telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	api.Debug = cfg.Debug
	logger.WithField("account", api.Self.UserName).Info("authorized on telegram")

	b := newBot(api, engine, logger)
	b.api = api
	b.pollingTimeout = cfg.PollingTimeout
	return b, nil
}

func newBot(client sender, engine Engine, logger logrus.FieldLogger) *Bot {
	return &Bot{
		client: client,
		engine: engine,
		logger: logger,
	}
}

// Start polls for updates until ctx is done, handling each update in its own
// goroutine. It waits for in-flight handlers before returning.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot is not connected")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.pollingTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// SendReminder delivers the daily reminder. The learner's external id is the
// Telegram user id, which is also the private chat id.
func (b *Bot) SendReminder(ctx context.Context, user models.User) error {
	chatID, err := strconv.ParseInt(user.ExternalID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram id %q: %w", user.ExternalID, err)
	}
	return b.send(tgbotapi.NewMessage(chatID, reminderText))
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	if _, err := b.client.Send(c); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
