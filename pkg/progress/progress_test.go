package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinter_RendersPercentage(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, "Working", 4)
	p.Add(1)

	if !strings.Contains(buf.String(), "Working  25.00% completed.") {
		t.Errorf("Output = %q", buf.String())
	}

	p.Add(3)

	if !strings.Contains(buf.String(), "Working  100.00% completed.") {
		t.Errorf("Output = %q", buf.String())
	}
}

func TestPrinter_OverwritesWithCarriageReturn(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, "Working", 2)
	p.Add(1)
	p.Add(1)

	out := buf.String()
	if strings.Count(out, "\r") != 2 {
		t.Errorf("Expected one carriage return per render, got %q", out)
	}

	if strings.Contains(out, "\n") {
		t.Error("Renders should not emit newlines before Finish")
	}
}

func TestPrinter_Finish(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, "Working", 10)
	p.Add(3)
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "100.00% completed.") {
		t.Errorf("Finish did not reach 100%%: %q", out)
	}

	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestPrinter_ClampsOvershoot(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, "Working", 3)
	p.Add(5)

	if p.Current() != 3 {
		t.Errorf("Current = %d, want clamped to 3", p.Current())
	}
}

func TestPrinter_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer

	p := NewPrinter(&buf, "Working", 0)
	p.Finish()

	if !strings.Contains(buf.String(), "100.00% completed.") {
		t.Errorf("Output = %q", buf.String())
	}
}

func TestPrinter_NilWriter(t *testing.T) {
	p := NewPrinter(nil, "Working", 5)

	// Must not panic and must still track progress.
	p.Add(2)
	p.Finish()

	if p.Current() != 5 {
		t.Errorf("Current = %d, want 5", p.Current())
	}
}
