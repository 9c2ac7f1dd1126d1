package window

import "errors"

// ErrUnsupported is returned by detectors that cannot provide a piece of
// information on the current display server.
var ErrUnsupported = errors.New("not supported by this display server")

// ErrNoFocusedWindow means nothing has focus, e.g. an empty workspace.
var ErrNoFocusedWindow = errors.New("no focused window")

// WindowInfo represents information about the currently focused window
type WindowInfo struct {
	AppName       string
	WindowTitle   string
	ProcessName   string
	DisplayServer string // "x11" or "wayland"
}

// MousePosition is the pointer location in root window coordinates
type MousePosition struct {
	X int
	Y int
}

// Equal reports whether both positions point at the same pixel.
func (p *MousePosition) Equal(o *MousePosition) bool {
	if p == nil || o == nil {
		return false
	}
	return p.X == o.X && p.Y == o.Y
}

// Detector is the interface that all window polling implementations must satisfy
type Detector interface {
	// GetFocusedWindow returns information about the currently focused window
	GetFocusedWindow() (*WindowInfo, error)

	// GetMousePosition returns the current pointer position
	GetMousePosition() (*MousePosition, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type ("x11" or "wayland")
	GetDisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}
