package tui

import (
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"
)

const appTitle = "shopfloor"

// Notifier surfaces an event outside the terminal.
type Notifier interface {
	Notify(title, message string) error
}

// desktopNotifier sends a desktop notification.
type desktopNotifier struct {
	log *zap.Logger
}

func (n desktopNotifier) Notify(title, message string) error {
	if err := beeep.Notify(title, message, ""); err != nil {
		n.log.Debug("failed to send notification", zap.Error(err))
		return err
	}
	return nil
}
