package core

import (
	"fmt"
	"time"
)

// NoticeKind names a session lifecycle change.
type NoticeKind int

const (
	NoticeDeviceStarted NoticeKind = iota
	NoticeDeviceLooped
	NoticeDeviceStopped
	NoticeMarkersRespawned
	NoticeLoopToggled
	NoticeRegionEntered
	NoticeRegionLooped
	NoticeRegionLeft
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeDeviceStarted:
		return "device_started"
	case NoticeDeviceLooped:
		return "device_looped"
	case NoticeDeviceStopped:
		return "device_stopped"
	case NoticeMarkersRespawned:
		return "markers_respawned"
	case NoticeLoopToggled:
		return "loop_toggled"
	case NoticeRegionEntered:
		return "region_entered"
	case NoticeRegionLooped:
		return "region_looped"
	case NoticeRegionLeft:
		return "region_left"
	default:
		return "unknown"
	}
}

// Notice reports a session lifecycle change to observers.
type Notice struct {
	Kind     NoticeKind
	Time     time.Time
	Location *Location
	Player   PlayerID
	Region   string
	TrackID  string
	Name     string
	Author   string
	Looping  bool
	Reason   string
}

// Observer receives notices. It is called on the simulation thread.
type Observer func(Notice)

// MarshalText encodes the kind by name.
func (k NoticeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *NoticeKind) UnmarshalText(text []byte) error {
	for c := NoticeDeviceStarted; c <= NoticeRegionLeft; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown notice kind %q", text)
}
