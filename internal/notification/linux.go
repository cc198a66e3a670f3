package notification

import (
	"fmt"
	"os/exec"

	"github.com/dooshek/factreader/internal/logger"
	"github.com/godbus/dbus/v5"
)

const (
	notificationsService   = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"
	notificationTimeout    = int32(5000)
)

type linuxNotifier struct{}

func newLinuxNotifier() platformNotifier {
	return &linuxNotifier{}
}

func (n *linuxNotifier) send(title, message string) error {
	logger.Debugf("Sending notification: %s - %s", title, message)

	err := sendDBus(title, message)
	if err == nil {
		return nil
	}
	logger.Debugf("D-Bus notification failed, trying notify-send: %v", err)

	if err := exec.Command("notify-send", "--app-name", appName, title, message).Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

func sendDBus(title, message string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	obj := conn.Object(notificationsService, dbus.ObjectPath(notificationsPath))
	call := obj.Call(notificationsInterface+".Notify", 0,
		appName,                   // app_name
		uint32(0),                 // replaces_id
		"",                        // app_icon
		title,                     // summary
		message,                   // body
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		notificationTimeout,       // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("notify call failed: %w", call.Err)
	}
	return nil
}
