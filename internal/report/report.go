package report

import (
	"fmt"
	"io"

	charmlog "github.com/charmbracelet/log"
)

// Reporter is the observability dependency handed to every pipeline stage.
// Stages never touch process-wide logger state; they receive a Reporter and
// call it for operation lifecycle, progress and failure events.
type Reporter interface {
	Start(op string)
	Complete(op string)
	Progress(current, total int, op string)
	Error(msg string, err error)
	Warn(msg string)
	Debug(msg string)
}

// Console reports to a terminal via a leveled logger.
type Console struct {
	l *charmlog.Logger
}

// NewConsole returns a Console writing to w. With verbose set, Debug lines
// are emitted as well.
func NewConsole(w io.Writer, verbose bool) *Console {
	opts := charmlog.Options{ReportTimestamp: true}
	if verbose {
		opts.Level = charmlog.DebugLevel
	}
	return &Console{l: charmlog.NewWithOptions(w, opts)}
}

func (c *Console) Start(op string) {
	c.l.Info("started", "op", op)
}

func (c *Console) Complete(op string) {
	c.l.Info("complete", "op", op)
}

func (c *Console) Progress(current, total int, op string) {
	c.l.Info(op, "progress", fmt.Sprintf("%d/%d", current, total))
}

func (c *Console) Error(msg string, err error) {
	if err != nil {
		c.l.Error(msg, "err", err)
		return
	}
	c.l.Error(msg)
}

func (c *Console) Warn(msg string) {
	c.l.Warn(msg)
}

func (c *Console) Debug(msg string) {
	c.l.Debug(msg)
}
