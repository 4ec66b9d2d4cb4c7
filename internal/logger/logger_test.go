package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		wantLevel     logrus.Level
		wantJSON      bool
	}{
		{"debug", "json", logrus.DebugLevel, true},
		{"warn", "text", logrus.WarnLevel, false},
		{"loud", "", logrus.InfoLevel, false},
	}
	for _, tt := range tests {
		log := New(tt.level, tt.format)
		if log.Level != tt.wantLevel {
			t.Errorf("New(%q).Level = %v, want %v", tt.level, log.Level, tt.wantLevel)
		}
		if _, isJSON := log.Formatter.(*logrus.JSONFormatter); isJSON != tt.wantJSON {
			t.Errorf("New(%q, %q) json formatter = %v", tt.level, tt.format, isJSON)
		}
	}
}
