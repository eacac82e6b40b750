package telegram

import (
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"estate-metrics/config"
	"estate-metrics/pkg/logger"
)

// Notifier pushes job summaries to a Telegram chat. With no bot token
// configured it degrades to a no-op, so pipelines run fine without it.
type Notifier struct {
	log  *logger.Logger
	bot  *tele.Bot
	chat tele.ChatID
}

func NewNotifier(cfg *config.TelegramConfig, log *logger.Logger) (*Notifier, error) {
	if cfg.BotToken == "" {
		log.Info("Telegram notifier disabled, no bot token configured")
		return &Notifier{log: log}, nil
	}

	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, err
	}

	timeout := cfg.TimeoutDuration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}

	return &Notifier{
		log:  log,
		bot:  bot,
		chat: tele.ChatID(chatID),
	}, nil
}

func (n *Notifier) Enabled() bool {
	return n.bot != nil
}

// Send delivers a plain-text message. Failures are logged, not returned; a
// missed notification must never fail the job it reports on.
func (n *Notifier) Send(text string) {
	if n.bot == nil {
		return
	}
	if _, err := n.bot.Send(n.chat, text); err != nil {
		n.log.Warn("Failed to send telegram notification", logger.ErrorField(err))
	}
}
