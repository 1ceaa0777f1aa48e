package slideshow

import (
	"fmt"
	"time"
)

// MinTransitionTime is the shortest interval between automatic transitions.
const MinTransitionTime = 5 * time.Second

// SettingsSource is anything that can report the playback preferences.
// config.AppConfig satisfies it.
type SettingsSource interface {
	TransitionTime() time.Duration
	PhotoSizing() int
	Shuffle() bool
	SkipBadAspect() bool
}

// Settings is a snapshot of the playback preferences taken when a session
// is created.
type Settings struct {
	TransitionTime time.Duration
	Sizing         SizingMode
	Shuffle        bool
	SkipBadAspect  bool
}

// SettingsFrom snapshots src. An unknown sizing falls back to Letterbox and
// is reported as an error alongside the usable settings.
func SettingsFrom(src SettingsSource) (Settings, error) {
	s := Settings{
		TransitionTime: max(src.TransitionTime(), MinTransitionTime),
		Shuffle:        src.Shuffle(),
		SkipBadAspect:  src.SkipBadAspect(),
	}
	sizing, err := ParseSizing(src.PhotoSizing())
	s.Sizing = sizing
	if err != nil {
		return s, fmt.Errorf("photo sizing preference: %w", err)
	}
	return s, nil
}
