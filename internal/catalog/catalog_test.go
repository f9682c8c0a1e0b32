package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tessro/jukebox/internal/core"
)

func sampleTrack() core.Track {
	return core.Track{
		ID:              "cat",
		Name:            "Cat",
		Author:          "C418",
		Lore:            []string{"Volume Alpha"},
		DurationSeconds: 185,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		track   core.Track
		wantErr string
	}{
		{"valid", sampleTrack(), ""},
		{"missing id", core.Track{Name: "x"}, "id is required"},
		{"bad id", core.Track{ID: "Has Space", Name: "x"}, "must be lowercase"},
		{"missing name", core.Track{ID: "x"}, "name is required"},
		{"negative duration", core.Track{ID: "x", Name: "x", DurationSeconds: -1}, "negative"},
		{"bad style", core.Track{ID: "x", Name: "x", Style: "jazz"}, "unknown style"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tt.track
			err := Validate(&tr)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				if tr.Style != core.DefaultStyle {
					t.Errorf("Style = %q, want %q", tr.Style, core.DefaultStyle)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	if err := s.Put(sampleTrack()); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(core.Track{ID: "blocks", Name: "Blocks", Author: "C418", Style: "blocks"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	tr, ok := s.Track("cat")
	if !ok {
		t.Fatal("Track(cat) not found")
	}
	if tr.Name != "Cat" || tr.DurationSeconds != 185 || len(tr.Lore) != 1 || tr.Style != "cat" {
		t.Errorf("Track(cat) = %+v", tr)
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "blocks" {
		t.Errorf("List() = %+v, want blocks then cat", list)
	}

	ok, err = s.Delete("cat")
	if err != nil || !ok {
		t.Fatalf("Delete(cat) = %v, %v", ok, err)
	}
	ok, err = s.Delete("cat")
	if err != nil || ok {
		t.Errorf("second Delete(cat) = %v, %v, want false", ok, err)
	}
	if _, ok := s.Track("cat"); ok {
		t.Error("Track(cat) found after delete")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestJSONStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "discs.json")
	s, err := OpenJSON(path)
	if err != nil {
		t.Fatalf("OpenJSON() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("catalog file not created: %v", err)
	}
	exerciseStore(t, s)

	reopened, err := OpenJSON(path)
	if err != nil {
		t.Fatalf("OpenJSON() reopen error = %v", err)
	}
	if _, ok := reopened.Track("blocks"); !ok {
		t.Error("Track(blocks) missing after reopen")
	}
}

func TestJSONStoreReadsDurationSeconds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discs.json")
	data := `[{"id":"x","name":"X","author":"A","lore":[],"durationSeconds":42}]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenJSON(path)
	if err != nil {
		t.Fatalf("OpenJSON() error = %v", err)
	}
	tr, ok := s.Track("x")
	if !ok {
		t.Fatal("Track(x) not found")
	}
	if tr.DurationSeconds != 42 || tr.Style != core.DefaultStyle {
		t.Errorf("Track(x) = %+v", tr)
	}
}

func TestJSONStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenJSON(path); err == nil {
		t.Error("OpenJSON() error = nil, want parse error")
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "discs.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("mongo", "x"); err == nil {
		t.Error("Open() error = nil, want unknown driver")
	}
}

func TestProbeRejectsNonMP3(t *testing.T) {
	if _, err := ProbeMP3(bytes.NewReader(nil)); err == nil {
		t.Error("ProbeMP3() error = nil, want decode error")
	}
}

func TestRemoveAudio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.ogg")
	if err := os.WriteFile(path, []byte("ogg"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveAudio(dir, "cat"); err != nil {
		t.Fatalf("RemoveAudio() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("audio file still present")
	}
}

func TestImportAudio(t *testing.T) {
	src := filepath.Join(t.TempDir(), "upload.ogg")
	if err := os.WriteFile(src, []byte("oggdata"), 0644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "audio")

	n, err := ImportAudio(dir, "cat", src)
	if err != nil {
		t.Fatalf("ImportAudio() error = %v", err)
	}
	if n != 7 {
		t.Errorf("ImportAudio() = %d bytes, want 7", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "cat.ogg")); err != nil {
		t.Errorf("imported file missing: %v", err)
	}

	if _, err := ImportAudio(dir, "cat", filepath.Join(dir, "cat.wav")); err == nil {
		t.Error("ImportAudio(.wav) error = nil, want unsupported format")
	}
}
