package utils

import (
	"testing"
	"time"
)

func TestCoalesceString(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"empty slice", []string{}, ""},
		{"all empty", []string{"", "", ""}, ""},
		{"config wins over fallback", []string{"redis:6379", "localhost:6379"}, "redis:6379"},
		{"fallback when config empty", []string{"", "localhost:6379"}, "localhost:6379"},
		{"single", []string{"x"}, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoalesceString(tt.in...)
			if got != tt.want {
				t.Errorf("CoalesceString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		s    string
		def  time.Duration
		want time.Duration
	}{
		{"empty uses default", "", 30 * time.Second, 30 * time.Second},
		{"valid overrides", "1m", 30 * time.Second, time.Minute},
		{"garbage uses default", "soon", 30 * time.Second, 30 * time.Second},
		{"zero uses default", "0s", 30 * time.Second, 30 * time.Second},
		{"negative uses default", "-5s", 30 * time.Second, 30 * time.Second},
		{"zero default passes through", "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Duration(tt.s, tt.def)
			if got != tt.want {
				t.Errorf("Duration(%q, %v) = %v, want %v", tt.s, tt.def, got, tt.want)
			}
		})
	}
}
