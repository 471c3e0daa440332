package debugsink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tirouscoded/yama/internal/dsignal"
)

func TestBufferLogAppendsPlainEvent(t *testing.T) {
	b := NewBuffer()
	b.Log(CategoryInstall, "installed %q", "app")

	if len(b.Events) != 1 {
		t.Fatalf("len(Events) = %d, want 1", len(b.Events))
	}
	e := b.Events[0]
	if e.Category != CategoryInstall || e.Signal != "" || e.Message != `installed "app"` {
		t.Errorf("got %+v, want {install  installed \"app\"}", e)
	}
}

func TestBufferRaiseAppendsSignalTaggedEvent(t *testing.T) {
	b := NewBuffer()
	b.Raise(CategoryImport, dsignal.ImportModuleNotFound, "no such module %q", "ghost")

	signals := b.RaisedSignals()
	if len(signals) != 1 || signals[0] != dsignal.ImportModuleNotFound {
		t.Errorf("RaisedSignals() = %v, want [%v]", signals, dsignal.ImportModuleNotFound)
	}
}

func TestRaisedSignalsIgnoresPlainLogEvents(t *testing.T) {
	b := NewBuffer()
	b.Log(CategoryDomain, "just an informational note")
	b.Raise(CategoryVerify, dsignal.VerifFailed, "bad")

	signals := b.RaisedSignals()
	if len(signals) != 1 || signals[0] != dsignal.VerifFailed {
		t.Errorf("RaisedSignals() = %v, want only the one raised signal", signals)
	}
}

func TestConsoleLogWritesCategoryAndMessage(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Log(CategoryInstantiate, "built %d types", 3)

	out := buf.String()
	if !strings.Contains(out, "instantiate") || !strings.Contains(out, "built 3 types") {
		t.Errorf("Console.Log output = %q, missing category or message", out)
	}
}

func TestConsoleRaiseWritesSignal(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Raise(CategoryVerify, dsignal.VerifFailed, "bad type")

	out := buf.String()
	if !strings.Contains(out, string(dsignal.VerifFailed)) || !strings.Contains(out, "bad type") {
		t.Errorf("Console.Raise output = %q, missing signal or message", out)
	}
}

func TestNoopDiscardsEverything(t *testing.T) {
	var n Noop
	// Must not panic; there's nothing else observable about a Noop sink.
	n.Log(CategoryDomain, "anything")
	n.Raise(CategoryDomain, dsignal.VerifFailed, "anything")
}
