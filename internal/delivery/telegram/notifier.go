package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quizroom/internal/domain/entities"
)

// Sender is satisfied by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts every stored result to the admin chat.
type Notifier struct {
	bot    Sender
	chatID int64
	logger *zap.Logger
}

func NewNotifier(bot Sender, chatID int64, logger *zap.Logger) *Notifier {
	return &Notifier{bot: bot, chatID: chatID, logger: logger}
}

// NotifyResult sends the result summary. Telegram calls are not cancellable,
// so ctx is only checked before sending.
func (n *Notifier) NotifyResult(ctx context.Context, res *entities.Result, taker entities.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := newMessage(n.chatID, formatResult(res, taker))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Debug("result announced",
		zap.String("result_id", res.ID),
		zap.Int64("chat_id", n.chatID),
	)
	return nil
}
