package stats

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestStatSaved(t *testing.T) {
	tests := []struct {
		name        string
		original    int64
		result      int64
		wantBytes   int64
		wantPercent float64
	}{
		{"half the size", 1000, 500, 500, 50},
		{"equal size", 1000, 1000, 0, 0},
		{"result larger than source", 1000, 1500, -500, -50},
		{"empty source divides safely", 0, 100, -100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stat{OriginalBytes: tt.original, ResultBytes: tt.result}

			if got := s.SavedBytes(); got != tt.wantBytes {
				t.Errorf("SavedBytes() = %d, want %d", got, tt.wantBytes)
			}
			if got := s.SavedPercent(); got != tt.wantPercent {
				t.Errorf("SavedPercent() = %v, want %v", got, tt.wantPercent)
			}
		})
	}
}

func TestFromFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.webp")

	if err := os.WriteFile(src, bytes.Repeat([]byte("a"), 1000), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, bytes.Repeat([]byte("b"), 500), 0644); err != nil {
		t.Fatal(err)
	}

	st, err := FromFiles(src, dst)
	if err != nil {
		t.Fatalf("FromFiles() error = %v", err)
	}
	if st.OriginalBytes != 1000 || st.ResultBytes != 500 {
		t.Errorf("FromFiles() sizes = %d/%d, want 1000/500", st.OriginalBytes, st.ResultBytes)
	}
	if st.SavedPercent() != 50 {
		t.Errorf("SavedPercent() = %v, want 50", st.SavedPercent())
	}

	if _, err := FromFiles(src, filepath.Join(dir, "missing.webp")); err == nil {
		t.Error("FromFiles() with missing output should fail")
	}
}

func TestSummary(t *testing.T) {
	var sum Summary
	sum.Add(Stat{OriginalBytes: 1000, ResultBytes: 400})
	sum.Add(Stat{OriginalBytes: 3000, ResultBytes: 1600})

	if sum.Processed != 2 {
		t.Errorf("Processed = %d, want 2", sum.Processed)
	}
	if sum.SavedBytes() != 2000 {
		t.Errorf("SavedBytes() = %d, want 2000", sum.SavedBytes())
	}
	if sum.SavedPercent() != 50 {
		t.Errorf("SavedPercent() = %v, want 50", sum.SavedPercent())
	}

	var empty Summary
	if empty.SavedPercent() != 0 {
		t.Errorf("empty Summary SavedPercent() = %v, want 0", empty.SavedPercent())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.bytes); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
