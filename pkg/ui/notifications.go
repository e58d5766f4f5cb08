package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	cmd := exec.Command("notify-send", title, message)
	return cmd.Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("VexRank").Show($toast)
	`, title, message)

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	return cmd.Run()
}

// Notifier delivers run events according to the configured notification type:
// "terminal" prints to the console, "desktop" additionally raises a platform
// toast, "none" drops everything. Unknown types behave like "terminal".
type Notifier struct {
	sender NotificationSender
	silent bool
}

// NewNotifier creates a Notifier for the given notification type. The desktop
// sender is picked per platform; on platforms without one the desktop type
// degrades to terminal output.
func NewNotifier(kind string) *Notifier {
	n := &Notifier{}

	switch kind {
	case "none":
		n.silent = true
		return n
	case "desktop":
		switch runtime.GOOS {
		case "linux":
			n.sender = &LinuxNotificationSender{}
		case "darwin":
			n.sender = &MacOSNotificationSender{}
		case "windows":
			n.sender = &WindowsNotificationSender{}
		}
	}

	return n
}

// SendNotification delivers an informational event, like a rate-limit pause.
func (n *Notifier) SendNotification(title, message string) {
	n.deliver(title, message, Cyan(title)+": "+Yellow(message))
}

// SendError delivers a run failure. Errors print even in quiet mode, matching
// PrintError.
func (n *Notifier) SendError(title, message string) {
	if n.silent {
		return
	}
	fmt.Printf("\n%s: %s\n", Red(title), Red(message))
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}

// SendSuccess delivers a run completion.
func (n *Notifier) SendSuccess(title, message string) {
	n.deliver(title, message, Green(title)+": "+Green(message))
}

// deliver prints the colored line unless suppressed and raises the toast when
// a desktop sender is configured. Toast failures are ignored; a missing
// notification daemon must not fail the run.
func (n *Notifier) deliver(title, message, line string) {
	if n.silent {
		return
	}
	if !quietMode {
		fmt.Printf("\n%s\n", line)
	}
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}
