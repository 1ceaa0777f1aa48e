package config

import (
	"time"

	"fyne.io/fyne/v2"
)

// Preference keys for the slideshow settings.
const (
	TransitionTimeKey = "transition_time" // seconds between photo changes
	PhotoSizingKey    = "photo_sizing"    // 0 letterbox, 1 cover, 2 frame, 3 stretch, 4 random
	ShuffleKey        = "shuffle"
	SkipKey           = "skip" // skip photos with a bad aspect ratio when cropping or stretching
	APIEnabledKey     = "api_enabled"
	HotkeysEnabledKey = "hotkeys_enabled"
)

// Defaults used when a preference has never been written.
const (
	DefaultTransitionTime = 30
	MinTransitionTime     = 5
)

// AppConfig holds the application-wide configuration
type AppConfig struct {
	prefs fyne.Preferences
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	return &AppConfig{prefs: p}
}

// TransitionTime returns the dwell time between photo changes.
func (c *AppConfig) TransitionTime() time.Duration {
	secs := c.prefs.IntWithFallback(TransitionTimeKey, DefaultTransitionTime)
	if secs < MinTransitionTime {
		secs = MinTransitionTime
	}
	return time.Duration(secs) * time.Second
}

// SetTransitionTime stores the dwell time in whole seconds.
func (c *AppConfig) SetTransitionTime(d time.Duration) {
	c.prefs.SetInt(TransitionTimeKey, int(d/time.Second))
}

// PhotoSizing returns the raw sizing enum. Validation happens where it is consumed.
func (c *AppConfig) PhotoSizing() int {
	return c.prefs.IntWithFallback(PhotoSizingKey, 0)
}

// SetPhotoSizing stores the sizing enum.
func (c *AppConfig) SetPhotoSizing(mode int) {
	c.prefs.SetInt(PhotoSizingKey, mode)
}

// Shuffle reports whether the photo order is randomized per session.
func (c *AppConfig) Shuffle() bool {
	return c.prefs.BoolWithFallback(ShuffleKey, true)
}

// SetShuffle sets whether the photo order is randomized per session.
func (c *AppConfig) SetShuffle(enabled bool) {
	c.prefs.SetBool(ShuffleKey, enabled)
}

// SkipBadAspect reports whether photos that would be badly cropped are dropped.
func (c *AppConfig) SkipBadAspect() bool {
	return c.prefs.BoolWithFallback(SkipKey, false)
}

// SetSkipBadAspect sets the bad aspect filter.
func (c *AppConfig) SetSkipBadAspect(enabled bool) {
	c.prefs.SetBool(SkipKey, enabled)
}

// GetAPIEnabled returns whether the local control server should run
func (c *AppConfig) GetAPIEnabled() bool {
	return c.prefs.BoolWithFallback(APIEnabledKey, true)
}

// SetAPIEnabled sets whether the local control server should run
func (c *AppConfig) SetAPIEnabled(enabled bool) {
	c.prefs.SetBool(APIEnabledKey, enabled)
}

// GetHotkeysEnabled returns whether global hotkeys are registered
func (c *AppConfig) GetHotkeysEnabled() bool {
	return c.prefs.BoolWithFallback(HotkeysEnabledKey, false)
}

// SetHotkeysEnabled sets whether global hotkeys are registered
func (c *AppConfig) SetHotkeysEnabled(enabled bool) {
	c.prefs.SetBool(HotkeysEnabledKey, enabled)
}
