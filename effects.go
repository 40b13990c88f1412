package sessiongate

import "context"

// Navigator moves the visitor to another screen.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) { f(ctx, path) }

// NotificationLevel classifies a user-facing notice.
type NotificationLevel uint8

const (
	LevelInfo NotificationLevel = iota
	LevelSuccess
	LevelError
)

func (l NotificationLevel) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient message shown to the visitor.
type Notification struct {
	Level   NotificationLevel
	Message string
}

// Notifier surfaces notifications to the visitor.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

type noopNavigator struct{}

func (noopNavigator) Navigate(context.Context, string) {}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) {}

// NoopNavigator ignores navigation requests.
var NoopNavigator Navigator = noopNavigator{}

// NoopNotifier drops notifications.
var NoopNotifier Notifier = noopNotifier{}
