package status

import "testing"

func TestUnknownSentinels(t *testing.T) {
	var src Unknown
	if level, charging := src.BatteryStatus(); level != -1 || charging {
		t.Errorf("BatteryStatus() = %d, %v, want -1, false", level, charging)
	}
	if got := src.NetworkStatus(); got != "unknown" {
		t.Errorf("NetworkStatus() = %q, want unknown", got)
	}
	if got := src.Volume(); got != -1 {
		t.Errorf("Volume() = %d, want -1", got)
	}
}

func TestHostReadouts(t *testing.T) {
	src := NewHost()

	if level, _ := src.BatteryStatus(); level != -1 {
		t.Errorf("BatteryStatus() level = %d, want -1", level)
	}
	if got := src.Volume(); got != -1 {
		t.Errorf("Volume() = %d, want -1", got)
	}

	switch got := src.NetworkStatus(); got {
	case "connected", "disconnected", "unknown":
	default:
		t.Errorf("NetworkStatus() = %q, want connected/disconnected/unknown", got)
	}
}
