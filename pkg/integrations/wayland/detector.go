package wayland

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/RustingSword/time-tracker/pkg/integrations/process"
	"github.com/RustingSword/time-tracker/pkg/window"
)

const (
	compositorSway     = "sway"
	compositorHyprland = "hyprland"
	compositorUnknown  = "unknown"
)

// Detector implements window.Detector for wlroots compositors that expose
// an IPC client (swaymsg, hyprctl)
type Detector struct {
	compositor  string
	hasSwaymsg  bool
	hasHyprctl  bool
	run         func(name string, args ...string) ([]byte, error)
	processName func(pid int32) (string, error)
}

// NewDetector creates a new Wayland detector
func NewDetector() *Detector {
	d := &Detector{
		run:         runCommand,
		processName: process.Name,
	}
	d.hasSwaymsg = commandExists("swaymsg")
	d.hasHyprctl = commandExists("hyprctl")
	d.compositor = detectCompositor()
	return d
}

func runCommand(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// detectCompositor relies on the IPC socket variables each compositor exports
func detectCompositor() string {
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return compositorHyprland
	}
	if os.Getenv("SWAYSOCK") != "" {
		return compositorSway
	}

	for proc, name := range map[string]string{"Hyprland": compositorHyprland, "sway": compositorSway} {
		if err := exec.Command("pgrep", "-x", proc).Run(); err == nil {
			return name
		}
	}
	return compositorUnknown
}

// IsAvailable checks if the compositor's IPC client is installed
func (d *Detector) IsAvailable() bool {
	switch d.compositor {
	case compositorSway:
		return d.hasSwaymsg
	case compositorHyprland:
		return d.hasHyprctl
	default:
		return false
	}
}

// GetDisplayServer returns "wayland"
func (d *Detector) GetDisplayServer() string {
	return "wayland"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	var (
		info *window.WindowInfo
		pid  int32
		err  error
	)

	switch d.compositor {
	case compositorSway:
		info, pid, err = d.focusedSway()
	case compositorHyprland:
		info, pid, err = d.focusedHyprland()
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
	if err != nil {
		return nil, err
	}

	if pid > 0 && d.processName != nil {
		if name, err := d.processName(pid); err == nil {
			info.ProcessName = name
		}
	}
	if info.AppName == "" {
		info.AppName = info.ProcessName
	}
	if info.AppName == "" {
		info.AppName = "Unknown"
	}
	info.DisplayServer = "wayland"
	return info, nil
}

// GetMousePosition is only exposed by Hyprland
func (d *Detector) GetMousePosition() (*window.MousePosition, error) {
	if d.compositor != compositorHyprland {
		return nil, window.ErrUnsupported
	}

	output, err := d.run("hyprctl", "-j", "cursorpos")
	if err != nil {
		return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
	}

	var pos struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := json.Unmarshal(output, &pos); err != nil {
		return nil, fmt.Errorf("failed to parse cursor position: %w", err)
	}
	return &window.MousePosition{X: pos.X, Y: pos.Y}, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}

type hyprWindow struct {
	Class string `json:"class"`
	Title string `json:"title"`
	PID   int32  `json:"pid"`
}

func (d *Detector) focusedHyprland() (*window.WindowInfo, int32, error) {
	output, err := d.run("hyprctl", "-j", "activewindow")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute hyprctl: %w", err)
	}
	return parseHyprlandWindow(output)
}

func parseHyprlandWindow(output []byte) (*window.WindowInfo, int32, error) {
	var w hyprWindow
	if err := json.Unmarshal(output, &w); err != nil {
		return nil, 0, fmt.Errorf("failed to parse hyprctl output: %w", err)
	}
	if w.Class == "" && w.Title == "" {
		return nil, 0, window.ErrNoFocusedWindow
	}
	return &window.WindowInfo{AppName: w.Class, WindowTitle: w.Title}, w.PID, nil
}

type swayNode struct {
	Name             string      `json:"name"`
	AppID            string      `json:"app_id"`
	PID              int32       `json:"pid"`
	Focused          bool        `json:"focused"`
	Type             string      `json:"type"`
	Nodes            []*swayNode `json:"nodes"`
	FloatingNodes    []*swayNode `json:"floating_nodes"`
	WindowProperties *struct {
		Class string `json:"class"`
	} `json:"window_properties"`
}

func (d *Detector) focusedSway() (*window.WindowInfo, int32, error) {
	output, err := d.run("swaymsg", "-t", "get_tree")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute swaymsg: %w", err)
	}
	return parseSwayTree(output)
}

func parseSwayTree(output []byte) (*window.WindowInfo, int32, error) {
	var root swayNode
	if err := json.Unmarshal(output, &root); err != nil {
		return nil, 0, fmt.Errorf("failed to parse sway tree: %w", err)
	}

	node := findFocused(&root)
	if node == nil {
		return nil, 0, window.ErrNoFocusedWindow
	}

	appName := node.AppID
	if appName == "" && node.WindowProperties != nil {
		// XWayland clients carry a WM_CLASS instead of an app_id
		appName = node.WindowProperties.Class
	}

	return &window.WindowInfo{AppName: appName, WindowTitle: node.Name}, node.PID, nil
}

func findFocused(node *swayNode) *swayNode {
	if node == nil {
		return nil
	}
	if node.Focused && (node.Type == "con" || node.Type == "floating_con") {
		return node
	}
	for _, child := range node.Nodes {
		if found := findFocused(child); found != nil {
			return found
		}
	}
	for _, child := range node.FloatingNodes {
		if found := findFocused(child); found != nil {
			return found
		}
	}
	return nil
}
