//go:build !linux

package notify

import "log/slog"

func platformNotifier(*slog.Logger, Notifier) Notifier {
	return nil
}
