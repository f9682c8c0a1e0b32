package tail

import (
	"strings"
	"testing"
	"time"

	"github.com/tessro/jukebox/internal/core"
)

func sampleNotice() core.Notice {
	loc := core.Location{World: "world", X: 1, Y: 64, Z: 2}
	return core.Notice{
		Kind:     core.NoticeDeviceStarted,
		Time:     time.Date(2024, 1, 1, 12, 30, 5, 0, time.UTC),
		Location: &loc,
		TrackID:  "cat",
		Name:     "Cat",
		Author:   "C418",
	}
}

func TestFormatLine(t *testing.T) {
	f := NewFormatter(WithEmoji(false), WithTimestamp(true))
	got := f.Format(sampleNotice())
	want := "12:30:05 Now playing at world(1,64,2): Cat by C418"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestFormatTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Kind}} {{.Track}} {{.Location}}"))
	got := f.Format(sampleNotice())
	if got != "device_started cat world(1,64,2)" {
		t.Errorf("Format() = %q", got)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		notice core.Notice
		want   string
	}{
		{core.Notice{Kind: core.NoticeRegionEntered, Player: "alice", Region: "spawn", Name: "X", Author: "Y"}, "alice entered spawn: X by Y"},
		{core.Notice{Kind: core.NoticeRegionLeft, Player: "alice", Region: "spawn"}, "alice left spawn"},
		{core.Notice{Kind: core.NoticeLoopToggled, Looping: true}, "Looping enabled"},
		{core.Notice{Kind: core.NoticeDeviceStopped, TrackID: "cat", Reason: "finished"}, "Stopped: cat (finished)"},
	}
	for _, tt := range tests {
		if got := Describe(tt.notice); got != tt.want {
			t.Errorf("Describe(%s) = %q, want %q", tt.notice.Kind, got, tt.want)
		}
	}
}

func TestFormatColorKeepsText(t *testing.T) {
	f := NewFormatter(WithEmoji(false), WithColor("latte"))
	if got := f.Format(sampleNotice()); !strings.Contains(got, "Cat by C418") {
		t.Errorf("Format() = %q, want description text", got)
	}
}
