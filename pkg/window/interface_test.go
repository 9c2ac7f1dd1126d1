package window

import (
	"testing"
)

type MockDetector struct {
	windowInfo    *WindowInfo
	mouse         *MousePosition
	isAvailable   bool
	displayServer string
	closeError    error
}

func (m *MockDetector) GetFocusedWindow() (*WindowInfo, error) {
	return m.windowInfo, nil
}

func (m *MockDetector) GetMousePosition() (*MousePosition, error) {
	if m.mouse == nil {
		return nil, ErrUnsupported
	}
	return m.mouse, nil
}

func (m *MockDetector) IsAvailable() bool {
	return m.isAvailable
}

func (m *MockDetector) GetDisplayServer() string {
	return m.displayServer
}

func (m *MockDetector) Close() error {
	return m.closeError
}

func TestMockDetector(t *testing.T) {
	var _ Detector = (*MockDetector)(nil)

	mock := &MockDetector{
		windowInfo: &WindowInfo{
			AppName:       "TestApp",
			WindowTitle:   "Test Window",
			ProcessName:   "test",
			DisplayServer: "x11",
		},
		mouse:         &MousePosition{X: 10, Y: 20},
		isAvailable:   true,
		displayServer: "x11",
	}

	windowInfo, err := mock.GetFocusedWindow()
	if err != nil {
		t.Errorf("GetFocusedWindow() error: %v", err)
	}
	if windowInfo.AppName != "TestApp" {
		t.Errorf("AppName = %s, want TestApp", windowInfo.AppName)
	}

	pos, err := mock.GetMousePosition()
	if err != nil {
		t.Errorf("GetMousePosition() error: %v", err)
	}
	if pos.X != 10 || pos.Y != 20 {
		t.Errorf("GetMousePosition() = %+v, want {10 20}", pos)
	}

	if mock.GetDisplayServer() != "x11" {
		t.Errorf("GetDisplayServer() = %s, want x11", mock.GetDisplayServer())
	}

	if err := mock.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestMousePositionUnsupported(t *testing.T) {
	mock := &MockDetector{displayServer: "wayland"}

	_, err := mock.GetMousePosition()
	if err != ErrUnsupported {
		t.Errorf("GetMousePosition() error = %v, want ErrUnsupported", err)
	}
}

func TestMousePositionEqual(t *testing.T) {
	tests := []struct {
		name string
		a    *MousePosition
		b    *MousePosition
		want bool
	}{
		{"same", &MousePosition{1, 2}, &MousePosition{1, 2}, true},
		{"different x", &MousePosition{1, 2}, &MousePosition{3, 2}, false},
		{"different y", &MousePosition{1, 2}, &MousePosition{1, 5}, false},
		{"nil left", nil, &MousePosition{1, 2}, false},
		{"nil right", &MousePosition{1, 2}, nil, false},
		{"both nil", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func BenchmarkWindowInfoCreation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = WindowInfo{
			AppName:       "TestApp",
			WindowTitle:   "Test Window",
			ProcessName:   "test",
			DisplayServer: "x11",
		}
	}
}
