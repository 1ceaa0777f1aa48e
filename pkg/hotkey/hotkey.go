// Package hotkey registers global shortcuts that drive the slideshow while
// the screensaver window does not have focus.
package hotkey

import (
	"context"
	"time"

	"github.com/dixieflatline76/PhotoSaver/util/log"
	"golang.design/x/hotkey"
)

// Debounce is the pause after each handled key press.
const Debounce = 200 * time.Millisecond

// Controller receives the navigation commands.
type Controller interface {
	Forward()
	Back()
	TogglePause()
}

type binding struct {
	name   string
	key    hotkey.Key
	action func(Controller)
}

// bindings maps Ctrl+Alt (Cmd+Option on macOS) arrows to commands.
func bindings() []binding {
	return []binding{
		{"Next Photo", keyRight, Controller.Forward},
		{"Previous Photo", keyLeft, Controller.Back},
		{"Pause/Resume Slideshow", keyUp, Controller.TogglePause},
	}
}

// StartListeners registers the shortcuts and dispatches presses to ctrl until
// ctx is done, when they are unregistered again.
func StartListeners(ctx context.Context, ctrl Controller) {
	if !HasAccessibility() {
		log.Println("[Hotkey] accessibility permission missing, global shortcuts may not fire")
	}
	for _, b := range bindings() {
		hk := hotkey.New([]hotkey.Modifier{modCtrl, modAlt}, b.key)
		if err := hk.Register(); err != nil {
			log.Printf("Failed to register hotkey %s: %v", b.name, err)
			continue
		}
		log.Printf("Registered hotkey: %s", b.name)
		go listen(ctx, hk.Keydown(), b, ctrl, func() {
			if err := hk.Unregister(); err != nil {
				log.Debugf("[Hotkey] unregister %s: %v", b.name, err)
			}
		})
	}
}

func listen(ctx context.Context, keydown <-chan hotkey.Event, b binding, ctrl Controller, unregister func()) {
	defer unregister()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-keydown:
			if !ok {
				return
			}
			log.Debugf("Hotkey pressed: %s", b.name)
			b.action(ctrl)
			time.Sleep(Debounce)
		}
	}
}
