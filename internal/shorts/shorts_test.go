package shorts

import "testing"

func TestDetector_Title(t *testing.T) {
	d := New()
	tests := []struct {
		title string
		want  bool
	}{
		{"Funny cat #shorts", true},
		{"Funny cat #Shorts", true},
		{"#SHORTS compilation", true},
		{"Shorts are fun", false},
		{"Full concert", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := d.Title(tt.title); got != tt.want {
			t.Errorf("Title(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestDetector_Aspect(t *testing.T) {
	d := New()
	tests := []struct {
		w, h int
		want bool
	}{
		{480, 360, false},
		{360, 480, true},
		{480, 480, true},
		{0, 0, false},
		{-1, 10, false},
	}
	for _, tt := range tests {
		if got := d.Aspect(tt.w, tt.h); got != tt.want {
			t.Errorf("Aspect(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestDetector_Disabled(t *testing.T) {
	d := &Detector{Disabled: true}
	if d.IsShort("clip #shorts", 360, 640) {
		t.Error("disabled detector should accept everything")
	}
}

func TestDetector_CustomMarker(t *testing.T) {
	d := &Detector{Marker: "#vertical"}
	if !d.Title("dance #Vertical") {
		t.Error("custom marker should match")
	}
	if d.Title("dance #shorts") {
		t.Error("default marker should not match when a custom one is set")
	}
}
