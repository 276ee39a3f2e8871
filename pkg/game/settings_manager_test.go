package game

import (
	"os"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"
)

// openTestGdata 在临时 HOME 下打开 gdata 存储
func openTestGdata(t *testing.T, appName string) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return m
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	if settings == nil {
		t.Fatal("DefaultSettings() returned nil")
	}
	if settings.DurationMs != 0 || settings.CornerSize != 0 {
		t.Errorf("defaults should not override config: %+v", settings)
	}
	if settings.ShowDebug || settings.Fullscreen {
		t.Errorf("debug and fullscreen should be off by default: %+v", settings)
	}
	if settings.Duration() != 0 {
		t.Errorf("Duration(): got %v, want 0", settings.Duration())
	}
}

func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil)
	if sm.GetSettings() == nil {
		t.Fatal("GetSettings() returned nil in degraded mode")
	}

	sm.SetShowDebug(true)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
	if !sm.GetSettings().ShowDebug {
		t.Error("in-memory setting lost in degraded mode")
	}
}

func TestSettingsLoadSave(t *testing.T) {
	gdataManager := openTestGdata(t, "test_flipbook_settings")

	sm1 := NewSettingsManager(gdataManager)
	sm1.SetShowDebug(true)
	sm1.SetFullscreen(true)
	sm1.SetDuration(450 * time.Millisecond)
	sm1.SetCornerSize(80)
	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2 := NewSettingsManager(gdataManager)
	got := sm2.GetSettings()
	if !got.ShowDebug {
		t.Error("Loaded ShowDebug: got false, want true")
	}
	if !got.Fullscreen {
		t.Error("Loaded Fullscreen: got false, want true")
	}
	if got.Duration() != 450*time.Millisecond {
		t.Errorf("Loaded Duration: got %v, want 450ms", got.Duration())
	}
	if got.CornerSize != 80 {
		t.Errorf("Loaded CornerSize: got %v, want 80", got.CornerSize)
	}
}

func TestSettingsLoadCorrupted(t *testing.T) {
	gdataManager := openTestGdata(t, "test_flipbook_settings_corrupted")

	if err := gdataManager.SaveObjectProp(settingsObject, settingsProperty, []byte("showDebug: [not a bool")); err != nil {
		t.Fatalf("SaveObjectProp: %v", err)
	}

	sm := NewSettingsManager(gdataManager)
	if sm.GetSettings().ShowDebug {
		t.Error("corrupted settings should fall back to defaults")
	}
	if err := sm.Load(); err == nil {
		t.Error("Load() should report the unmarshal error")
	}
}

func TestSettingsOverridesClamp(t *testing.T) {
	sm := NewSettingsManager(nil)

	tests := []struct {
		name       string
		duration   time.Duration
		corner     float64
		wantMs     int
		wantCorner float64
	}{
		{"positive values", 300 * time.Millisecond, 60, 300, 60},
		{"zero clears override", 0, 0, 0, 0},
		{"negative clears override", -time.Second, -5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm.SetDuration(tt.duration)
			sm.SetCornerSize(tt.corner)
			s := sm.GetSettings()
			if s.DurationMs != tt.wantMs {
				t.Errorf("DurationMs: got %d, want %d", s.DurationMs, tt.wantMs)
			}
			if s.CornerSize != tt.wantCorner {
				t.Errorf("CornerSize: got %v, want %v", s.CornerSize, tt.wantCorner)
			}
		})
	}
}
