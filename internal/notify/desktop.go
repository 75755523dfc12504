package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

type Sender interface {
	Send(title, body string) error
}

type ExecSender struct{}

func (ExecSender) Send(title, body string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", "--urgency=critical", title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(body), escapeAppleScript(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

// Desktop mirrors non-placeholder posts of the wrapped Surface to the OS
// notification center. Delivery failures are logged and never surface to the
// caller.
type Desktop struct {
	Surface
	sender Sender
	logger *zap.Logger
}

func NewDesktop(inner Surface, sender Sender, logger *zap.Logger) *Desktop {
	if sender == nil {
		sender = ExecSender{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Desktop{Surface: inner, sender: sender, logger: logger}
}

func (d *Desktop) StartForeground(id int64, c Content) error {
	if err := d.Surface.StartForeground(id, c); err != nil {
		return err
	}
	d.mirror(id, c)
	return nil
}

func (d *Desktop) Update(id int64, c Content) error {
	if err := d.Surface.Update(id, c); err != nil {
		return err
	}
	d.mirror(id, c)
	return nil
}

func (d *Desktop) mirror(id int64, c Content) {
	if c.Placeholder {
		return
	}
	if err := d.sender.Send(c.Title, c.Text); err != nil {
		d.logger.Warn("desktop notification failed", zap.Int64("alarm_id", id), zap.Error(err))
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
