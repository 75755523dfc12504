package notify

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Toaster shows a short, transient confirmation to the user.
type Toaster interface {
	Toast(msg string)
}

type LogToaster struct {
	Logger *zap.Logger
}

func (t LogToaster) Toast(msg string) {
	if t.Logger == nil {
		return
	}
	t.Logger.Info("toast", zap.String("message", msg))
}

type WriterToaster struct {
	W io.Writer
}

func (t WriterToaster) Toast(msg string) {
	fmt.Fprintln(t.W, msg)
}

// Toasters fans a toast out to every member.
type Toasters []Toaster

func (ts Toasters) Toast(msg string) {
	for _, t := range ts {
		if t != nil {
			t.Toast(msg)
		}
	}
}
