package detector

import (
	"fmt"
	"os"

	"github.com/RustingSword/time-tracker/pkg/integrations/wayland"
	"github.com/RustingSword/time-tracker/pkg/integrations/x11"
	"github.com/RustingSword/time-tracker/pkg/window"
)

// Constructors for each backend, replaced in tests.
var (
	newWayland = func() window.Detector {
		return wayland.NewDetector()
	}
	newX11 = func() (window.Detector, error) {
		det, err := x11.NewDetector()
		if err != nil {
			return nil, err
		}
		return det, nil
	}
)

// New returns the poller matching the running display server. Wayland
// sessions fall back to X11 (XWayland) when the compositor has no IPC client.
func New() (window.Detector, error) {
	displayServer := DetectDisplayServer()

	if displayServer == "wayland" {
		det := newWayland()
		if det.IsAvailable() {
			return det, nil
		}
	}

	if os.Getenv("DISPLAY") != "" {
		return newX11()
	}

	return nil, fmt.Errorf("no supported display server detected (%s)", displayServer)
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
