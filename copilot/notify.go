package copilot

// NotifyLevel classifies a user notification.
type NotifyLevel uint8

const (
	NotifyInfo NotifyLevel = iota
	NotifyError
)

// Notifier shows short, transient messages to the user.
type Notifier interface {
	Notify(level NotifyLevel, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level NotifyLevel, message string)

func (f NotifierFunc) Notify(level NotifyLevel, message string) { f(level, message) }

type nopNotifier struct{}

func (nopNotifier) Notify(NotifyLevel, string) {}

const (
	msgRunning = "Running prompt"
	msgDone    = "Done!"
	// Shown when an inline answer can no longer be placed.
	msgTargetEdited = "Copilot: text changed while the prompt was running, answer discarded"
)
