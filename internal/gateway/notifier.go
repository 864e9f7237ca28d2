package gateway

import (
	"context"
	"fmt"

	"wishwall/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const approvedText = "Good news — your wish passed moderation and is now on the wedding site! ❤️"

// Notifier sends post-approval confirmations back to guests. It is handed to
// the moderation service, which treats delivery as best-effort.
type Notifier struct {
	bot *tgbotapi.BotAPI
}

func NewNotifier(bot *tgbotapi.BotAPI) *Notifier {
	return &Notifier{bot: bot}
}

func (n *Notifier) NotifyApproved(ctx context.Context, chatID int64, wish *models.Wish) error {
	if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, approvedText)); err != nil {
		return fmt.Errorf("failed to send approval message: %v: %w", err, models.ErrNotification)
	}
	return nil
}
