package bot

import (
	"context"

	"github.com/kapu/destiny-clan-bot-go/internal/adapter"
	"github.com/kapu/destiny-clan-bot-go/internal/domain"
)

// Notifier delivers roster notifications as chat messages.
type Notifier struct {
	sender    MessageSender
	formatter *adapter.ResponseFormatter
}

func NewNotifier(sender MessageSender, formatter *adapter.ResponseFormatter) *Notifier {
	return &Notifier{sender: sender, formatter: formatter}
}

func (n *Notifier) Send(ctx context.Context, target domain.ChannelID, notification domain.Notification) error {
	return n.sender.SendMessage(ctx, string(target), n.formatter.FormatNotification(notification))
}
