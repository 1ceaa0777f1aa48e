// Package display is the fyne window that shows slideshow frames.
package display

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/dixieflatline76/PhotoSaver/util/log"
)

// Controller receives the navigation keys.
type Controller interface {
	Forward()
	Back()
	TogglePause()
}

// Action is what a key press does in the screensaver window.
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBack
	ActionTogglePause
	ActionClose
)

// ActionForKey maps a key to its action. In preview mode only Escape closes
// the window; as a screensaver any other key does.
func ActionForKey(key fyne.KeyName, preview bool) Action {
	switch key {
	case fyne.KeyRight:
		return ActionForward
	case fyne.KeyLeft:
		return ActionBack
	case fyne.KeySpace:
		return ActionTogglePause
	case fyne.KeyEscape:
		return ActionClose
	}
	if preview {
		return ActionNone
	}
	return ActionClose
}

// Window shows frames full screen and implements render.Presenter.
type Window struct {
	win     fyne.Window
	image   *canvas.Image
	caption *widget.Label
	preview bool

	mu   sync.Mutex
	ctrl Controller

	// OnClose runs when a key asks the window to close.
	OnClose func()
}

// NewWindow creates the slideshow window. A preview window is not full
// screen and ignores stray keys.
func NewWindow(app fyne.App, title string, preview bool) *Window {
	w := &Window{
		win:     app.NewWindow(title),
		image:   canvas.NewImageFromImage(nil),
		caption: widget.NewLabel(""),
		preview: preview,
	}
	w.image.FillMode = canvas.ImageFillContain
	w.image.ScaleMode = canvas.ImageScaleSmooth
	w.caption.Alignment = fyne.TextAlignTrailing
	w.caption.TextStyle = fyne.TextStyle{Italic: true}

	bottom := container.NewHBox(layout.NewSpacer(), w.caption)
	w.win.SetContent(container.NewStack(w.image, container.NewBorder(nil, bottom, nil, nil)))
	w.win.SetPadded(false)
	if preview {
		w.win.Resize(fyne.NewSize(960, 540))
		w.win.CenterOnScreen()
	} else {
		w.win.SetFullScreen(true)
	}
	w.win.Canvas().SetOnTypedKey(w.onKey)
	return w
}

// SetController sets where navigation keys go.
func (w *Window) SetController(ctrl Controller) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctrl = ctrl
}

func (w *Window) onKey(ev *fyne.KeyEvent) {
	w.mu.Lock()
	ctrl := w.ctrl
	w.mu.Unlock()

	action := ActionForKey(ev.Name, w.preview)
	if ctrl == nil && action != ActionClose {
		return
	}
	switch action {
	case ActionForward:
		ctrl.Forward()
	case ActionBack:
		ctrl.Back()
	case ActionTogglePause:
		ctrl.TogglePause()
	case ActionClose:
		log.Debugf("Closing on key %s", ev.Name)
		if w.OnClose != nil {
			w.OnClose()
		}
	}
}

// ShowAndRun shows the window and runs the fyne event loop.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

// Open shows the window without running the event loop. Call it on the
// fyne goroutine.
func (w *Window) Open() {
	w.win.Show()
}

// Close closes the window.
func (w *Window) Close() {
	fyne.Do(w.win.Close)
}

// PixelSize returns the drawable size in device pixels, or ok false before
// the window has been laid out.
func (w *Window) PixelSize() (image.Point, bool) {
	c := w.win.Canvas()
	size := c.Size()
	scale := c.Scale()
	px := image.Pt(int(size.Width*scale), int(size.Height*scale))
	return px, px.X > 0 && px.Y > 0
}

// Show replaces the visible frame.
func (w *Window) Show(frame image.Image, caption string) {
	fyne.Do(func() {
		w.image.Image = frame
		w.image.Refresh()
		w.caption.SetText(caption)
	})
}

// SetCaption updates the caption of the visible frame.
func (w *Window) SetCaption(caption string) {
	fyne.Do(func() {
		w.caption.SetText(caption)
	})
}

// ShowMessage replaces the frame with a text message.
func (w *Window) ShowMessage(text string) {
	size, ok := w.PixelSize()
	if !ok {
		size = image.Point{}
	}
	w.Show(MessageImage(size, text), "")
}
