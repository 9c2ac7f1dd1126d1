package x11

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/RustingSword/time-tracker/pkg/integrations/process"
	"github.com/RustingSword/time-tracker/pkg/window"
)

const unknownApp = "Unknown"

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// Detector implements window.Detector on top of a single X11 connection
type Detector struct {
	mu    sync.Mutex
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom

	// resolvePID is swapped in tests
	resolvePID func(pid int32) (string, error)
}

// NewDetector connects to the X server named by $DISPLAY
func NewDetector() (*Detector, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	d := &Detector{
		conn:       conn,
		root:       xproto.Setup(conn).DefaultScreen(conn).Root,
		atoms:      make(map[string]xproto.Atom, len(atomNames)),
		resolvePID: process.Name,
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		d.atoms[name] = reply.Atom
	}

	return d, nil
}

// IsAvailable reports whether the X connection is open
func (d *Detector) IsAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

// GetDisplayServer returns "x11"
func (d *Detector) GetDisplayServer() string {
	return "x11"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil, errors.New("x11 connection is closed")
	}

	win, err := d.activeWindow()
	if err != nil {
		return nil, err
	}

	_, class := splitWMClass(d.property(win, d.atoms["WM_CLASS"], xproto.AtomString, 256))

	processName := ""
	if pid := d.windowPID(win); pid != 0 {
		if name, err := d.resolvePID(int32(pid)); err == nil {
			processName = name
		}
	}

	appName := class
	if appName == "" {
		appName = processName
	}
	if appName == "" {
		appName = unknownApp
	}

	return &window.WindowInfo{
		AppName:       appName,
		WindowTitle:   d.windowName(win),
		ProcessName:   processName,
		DisplayServer: "x11",
	}, nil
}

// GetMousePosition queries the pointer on the root window
func (d *Detector) GetMousePosition() (*window.MousePosition, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil, errors.New("x11 connection is closed")
	}

	reply, err := xproto.QueryPointer(d.conn, d.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query pointer: %w", err)
	}

	return &window.MousePosition{X: int(reply.RootX), Y: int(reply.RootY)}, nil
}

// Close releases the X connection
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
	return nil
}

func (d *Detector) property(win xproto.Window, atom, atomType xproto.Atom, length uint32) []byte {
	reply, err := xproto.GetProperty(d.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil || reply == nil {
		return nil
	}
	return reply.Value
}

// activeWindow prefers _NET_ACTIVE_WINDOW and falls back to the input focus,
// retrying briefly because window managers update the property asynchronously.
func (d *Detector) activeWindow() (xproto.Window, error) {
	for i := 0; i < 5; i++ {
		data := d.property(d.root, d.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
		if len(data) >= 4 {
			win := xproto.Window(binary.LittleEndian.Uint32(data))
			if win != 0 && d.hasName(win) {
				return win, nil
			}
		}

		if focus, err := xproto.GetInputFocus(d.conn).Reply(); err == nil {
			win := focus.Focus
			if win != 0 && win != d.root {
				top := d.topLevel(win)
				if top != 0 && d.hasName(top) {
					return top, nil
				}
			}
		}

		time.Sleep(20 * time.Millisecond)
	}

	return 0, window.ErrNoFocusedWindow
}

func (d *Detector) topLevel(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(d.conn, win).Reply()
		if err != nil || reply.Parent == d.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (d *Detector) hasName(win xproto.Window) bool {
	if len(d.property(win, d.atoms["_NET_WM_NAME"], d.atoms["UTF8_STRING"], 1)) > 0 {
		return true
	}
	return len(d.property(win, d.atoms["WM_NAME"], xproto.AtomString, 1)) > 0
}

func (d *Detector) windowName(win xproto.Window) string {
	if data := d.property(win, d.atoms["_NET_WM_NAME"], d.atoms["UTF8_STRING"], 256); len(data) > 0 {
		return trimNull(data)
	}
	return trimNull(d.property(win, d.atoms["WM_NAME"], xproto.AtomString, 256))
}

func (d *Detector) windowPID(win xproto.Window) uint32 {
	data := d.property(win, d.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if len(data) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(data)
}

func trimNull(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

// splitWMClass decodes the WM_CLASS property, two NUL-terminated strings
// holding the instance and class names.
func splitWMClass(data []byte) (instance, class string) {
	if len(data) == 0 {
		return "", ""
	}

	parts := strings.Split(trimNull(data), "\x00")
	instance = parts[0]
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}
