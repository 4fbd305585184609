package advice

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"tracescope/internal/goals"
	"tracescope/internal/point"
	"tracescope/internal/testkit"
)

func modifiedPoint() point.ExecutionPoint {
	p := testkit.Step(3, testkit.L("a", 3), testkit.L("b", 7))
	return goals.Apply(&p, []goals.Goal{
		{Name: "a", NewValue: goals.IntOf(5)},
		{Name: "b", NewValue: goals.NaN()},
	})
}

func TestWriter_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, point.FormatJSON, nil)
	w.GetAdvice(modifiedPoint())
	w.GetAdvice(modifiedPoint())
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if w.Count() != 2 {
		t.Fatalf("Count = %d", w.Count())
	}

	sc := bufio.NewScanner(&buf)
	lines := 0
	for sc.Scan() {
		lines++
		var rec struct {
			Event string `json:"event"`
			Line  int    `json:"line"`
			Stack []struct {
				Names  []string       `json:"ordered_varnames"`
				Locals map[string]any `json:"encoded_locals"`
			} `json:"stack_to_render"`
		}
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		if rec.Event != "step_line" || rec.Line != 3 || len(rec.Stack) != 1 {
			t.Fatalf("record = %+v", rec)
		}
		if rec.Stack[0].Locals["a"] != float64(5) || rec.Stack[0].Locals["b"] != nil {
			t.Errorf("locals = %v", rec.Stack[0].Locals)
		}
	}
	if lines != 2 {
		t.Errorf("lines = %d, want 2", lines)
	}
}

func TestWriter_Msgpack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advice.msgpack")
	w, err := Open(path, point.FormatMsgpack, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.GetAdvice(modifiedPoint())
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec map[string]any
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	if rec["event"] != "step_line" {
		t.Errorf("record = %v", rec)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriter_KeepsFirstError(t *testing.T) {
	w := NewWriter(failingWriter{}, point.FormatJSON, nil)
	w.GetAdvice(modifiedPoint())
	w.GetAdvice(modifiedPoint())
	if w.Err() == nil || w.Count() != 0 {
		t.Fatalf("Err = %v, Count = %d", w.Err(), w.Count())
	}
	if err := w.Close(); err == nil {
		t.Error("Close should report the write error")
	}
}
