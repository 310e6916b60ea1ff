package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mediato115/internal/bus"
	"mediato115/internal/config"
	"mediato115/internal/logging"
	"mediato115/internal/plugin"
)

// maxCallbackData is the Telegram limit for inline button callback data.
const maxCallbackData = 64

// Telegram delivers the command through a Telegram bot and renders menus as
// inline keyboards.
type Telegram struct {
	*baseChannel
	token       string
	pollTimeout int
	endpoint    string
	command     plugin.CommandSpec

	mu     sync.Mutex
	bot    *tgbotapi.BotAPI
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewTelegram builds a Telegram channel from configuration. It does not connect.
func NewTelegram(cfg config.Telegram, logger *slog.Logger) (*Telegram, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("telegram token is required")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 30
	}
	return &Telegram{
		baseChannel: newBaseChannel("telegram", cfg.AllowFrom, logger),
		token:       token,
		pollTimeout: timeout,
		endpoint:    tgbotapi.APIEndpoint,
		command:     plugin.Command(),
	}, nil
}

func (c *Telegram) Start(ctx context.Context, dispatch bus.Dispatch) error {
	c.logger.Info("starting telegram bot")
	bot, err := tgbotapi.NewBotAPIWithClient(c.token, c.endpoint, &http.Client{})
	if err != nil {
		return fmt.Errorf("connect telegram bot: %w", err)
	}

	commands := tgbotapi.NewSetMyCommands(tgbotapi.BotCommand{
		Command:     c.command.Keyword(),
		Description: c.command.Description,
	})
	if _, err := bot.Request(commands); err != nil {
		c.logger.Warn("telegram command registration failed", logging.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	updates := bot.GetUpdatesChan(u)

	loopCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.bot = bot
	c.cancel = cancel
	c.mu.Unlock()
	c.setRunning(true)
	c.logger.Info("telegram bot connected", logging.String("username", bot.Self.UserName))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-loopCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				c.handleUpdate(bot, update, dispatch)
			}
		}
	}()
	return nil
}

func (c *Telegram) Stop(ctx context.Context) error {
	c.logger.Info("stopping telegram bot")
	c.setRunning(false)
	c.mu.Lock()
	bot, cancel := c.bot, c.cancel
	c.bot, c.cancel = nil, nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if bot != nil {
		bot.StopReceivingUpdates()
	}
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop telegram bot: %w", ctx.Err())
	}
}

// Post sends n to the Telegram chat it is addressed to.
func (c *Telegram) Post(_ context.Context, n bus.Notification) error {
	c.mu.Lock()
	bot := c.bot
	c.mu.Unlock()
	if !c.IsRunning() || bot == nil {
		return errors.New("telegram bot not running")
	}
	msg, err := telegramMessage(n)
	if err != nil {
		return err
	}
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func (c *Telegram) handleUpdate(bot *tgbotapi.BotAPI, update tgbotapi.Update, dispatch bus.Dispatch) {
	if update.CallbackQuery != nil {
		if _, err := bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			c.logger.Debug("telegram callback ack failed", logging.Error(err))
		}
	}
	ev, ok := telegramEvent(update, c.command)
	if !ok {
		return
	}
	c.emit(dispatch, ev)
}

// telegramEvent converts a command message or inline button press into a bus
// event. Other updates are ignored.
func telegramEvent(update tgbotapi.Update, spec plugin.CommandSpec) (bus.Event, bool) {
	if cq := update.CallbackQuery; cq != nil {
		origin := bus.Origin{Channel: "telegram"}
		if cq.From != nil {
			origin.UserID = strconv.FormatInt(cq.From.ID, 10)
		}
		if cq.Message != nil && cq.Message.Chat != nil {
			origin.ChatID = strconv.FormatInt(cq.Message.Chat.ID, 10)
		}
		ev, ok := bus.CallbackFromPayload(cq.Data, origin)
		if !ok {
			return nil, false
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil, false
	}
	args, ok := parseCommand(msg.Text, spec.Keyword())
	if !ok {
		return nil, false
	}
	ev := bus.CommandEvent{
		Action:  spec.Action,
		Channel: "telegram",
		ChatID:  strconv.FormatInt(msg.Chat.ID, 10),
		Args:    args,
	}
	if msg.From != nil {
		ev.UserID = strconv.FormatInt(msg.From.ID, 10)
	}
	return ev, true
}

func telegramMessage(n bus.Notification) (tgbotapi.MessageConfig, error) {
	chatID, err := strconv.ParseInt(strings.TrimSpace(n.ChatID), 10, 64)
	if err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("invalid telegram chat id %q: %w", n.ChatID, err)
	}
	msg := tgbotapi.NewMessage(chatID, n.Body())
	if !n.HasButtons() {
		return msg, nil
	}
	markup, err := inlineKeyboard(n.Buttons)
	if err != nil {
		return tgbotapi.MessageConfig{}, err
	}
	msg.ReplyMarkup = markup
	return msg, nil
}

func inlineKeyboard(rows [][]bus.Button) (tgbotapi.InlineKeyboardMarkup, error) {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if len(b.Payload) > maxCallbackData {
				return tgbotapi.InlineKeyboardMarkup{}, fmt.Errorf("button %q payload exceeds %d bytes", b.Label, maxCallbackData)
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Payload))
		}
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...), nil
}
