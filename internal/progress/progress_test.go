package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestBar_ProgressIsMonotonic(t *testing.T) {
	var buf bytes.Buffer
	b := New(Options{Writer: &buf, Description: "Сжатие"})

	b.SetProgress(30)
	b.SetProgress(10)
	if got := b.Percent(); got != 30 {
		t.Errorf("Percent() = %d, want 30", got)
	}

	b.SetProgress(250)
	if got := b.Percent(); got != 100 {
		t.Errorf("Percent() = %d, want 100", got)
	}
	b.Finish()

	if buf.Len() == 0 {
		t.Error("bar should render to writer")
	}
}

func TestBar_Disabled(t *testing.T) {
	var buf bytes.Buffer
	b := New(Options{Writer: &buf, Disabled: true})

	b.SetStatus("Загрузка...")
	b.SetProgress(50)
	b.Finish()

	if !b.IsDisabled() {
		t.Error("IsDisabled() = false")
	}
	if b.Status() != "Загрузка..." || b.Percent() != 50 {
		t.Errorf("state = %q %d", b.Status(), b.Percent())
	}
	if buf.Len() != 0 {
		t.Errorf("disabled bar wrote %q", buf.String())
	}

	b.WriteMessage("готово %d\n", 1)
	if !strings.Contains(buf.String(), "готово 1") {
		t.Errorf("WriteMessage() output = %q", buf.String())
	}
}
