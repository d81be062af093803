package notificator

import (
	"runtime/debug"

	"github.com/pythocooks/onlyagents-backend/internal/models"
	"github.com/pythocooks/onlyagents-backend/pkg/logger"
)

// Notificator forwards accepted payment events to the operations channel.
// Everything here is best-effort: a delivery failure never touches the
// recorded payment.
type Notificator struct {
	logger *logger.Logger

	TelegramNotificator *TelegramNotificator
}

func NewNotificator(logger *logger.Logger, telNotif *TelegramNotificator) *Notificator {
	return &Notificator{logger: logger, TelegramNotificator: telNotif}
}

// safeCall runs a function with panic recovery
func (n *Notificator) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

func (n *Notificator) PaymentAccepted(event *models.PaymentEvent) {
	if n.TelegramNotificator == nil {
		return
	}
	message := event.String()
	n.safeCall(func() { n.TelegramNotificator.SendNotification(message) }, "telegramNotification")
}
