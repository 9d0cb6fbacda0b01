package pdf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestGenerateCodeSheet(t *testing.T) {
	sheet := CodeSheet{
		BatchID:     "01JTESTBATCH",
		GeneratedAt: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
		Codes:       []string{"ABCD1234", "EFGH5678", "IJKL9012", "MNOP3456"},
	}

	r, err := New().GenerateCodeSheet(context.Background(), sheet)
	if err != nil {
		t.Fatalf("generate code sheet: %v", err)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", body[:min(len(body), 8)])
	}
}

func TestGenerateCodeSheetRequiresCodes(t *testing.T) {
	_, err := New().GenerateCodeSheet(context.Background(), CodeSheet{})
	if !errors.Is(err, ErrNoCodes) {
		t.Fatalf("expected ErrNoCodes, got %v", err)
	}
}
