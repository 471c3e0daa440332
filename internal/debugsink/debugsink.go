// Package debugsink implements the core's debug sink collaborator: an
// append-only, structured event log tagged by category and dsignal.
//
// The sink is a narrow capability set, Log and Raise, passed into a
// Domain at construction time. The core never keeps its own global
// logging state.
package debugsink

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/tirouscoded/yama/internal/dsignal"
)

// Category tags the subsystem an event originated from.
type Category string

const (
	CategoryInstall     Category = "install"
	CategoryImport      Category = "import"
	CategoryVerify      Category = "verify"
	CategoryInstantiate Category = "instantiate"
	CategoryDomain      Category = "domain"
)

// Event is one append-only record.
type Event struct {
	Category Category
	Signal   dsignal.Signal // empty for plain log events
	Message  string
}

// Sink is the capability set the core's collaborators are given.
// Log records an informational event; Raise records a failure event
// tagged with its dsignal. Neither call may block or panic.
type Sink interface {
	Log(cat Category, format string, args ...any)
	Raise(cat Category, sig dsignal.Signal, format string, args ...any)
}

// Buffer is an in-memory sink; tests construct one and assert against
// its Events slice.
type Buffer struct {
	mu     sync.Mutex
	Events []Event
}

// NewBuffer creates an empty in-memory sink.
func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) Log(cat Category, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, Event{Category: cat, Message: fmt.Sprintf(format, args...)})
}

func (b *Buffer) Raise(cat Category, sig dsignal.Signal, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, Event{Category: cat, Signal: sig, Message: fmt.Sprintf(format, args...)})
}

// RaisedSignals returns the dsignals raised so far, in order.
func (b *Buffer) RaisedSignals() []dsignal.Signal {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []dsignal.Signal
	for _, e := range b.Events {
		if e.Signal != "" {
			out = append(out, e.Signal)
		}
	}
	return out
}

// Console writes tinted lines to w: the category tag in cyan and, for
// raised events, the dsignal in bold red.
type Console struct {
	w      io.Writer
	mu     sync.Mutex
	cat    func(string) string
	sig    func(string) string
	msg    func(string) string
}

// NewConsole creates a colorized console sink writing to w.
func NewConsole(w io.Writer) *Console {
	catFn := color.New(color.FgCyan).SprintFunc()
	sigFn := color.New(color.FgRed, color.Bold).SprintFunc()
	msgFn := color.New(color.Faint).SprintFunc()
	return &Console{
		w:   w,
		cat: func(s string) string { return catFn(s) },
		sig: func(s string) string { return sigFn(s) },
		msg: func(s string) string { return msgFn(s) },
	}
}

func (c *Console) Log(cat Category, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%s] %s\n", c.cat(string(cat)), fmt.Sprintf(format, args...))
}

func (c *Console) Raise(cat Category, sig dsignal.Signal, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[%s] %s: %s\n", c.cat(string(cat)), c.sig(string(sig)), fmt.Sprintf(format, args...))
}

// Noop discards every event; useful as a default when the caller
// doesn't care to observe the sink.
type Noop struct{}

func (Noop) Log(Category, string, ...any)                   {}
func (Noop) Raise(Category, dsignal.Signal, string, ...any) {}
