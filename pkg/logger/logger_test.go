package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/Muharom433/SIMPELUNYbackup-sub005/config"
)

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := NewLogger(&config.LogConfig{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("NewLogger(%s) 应成功: %v", format, err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("%s: 期望 debug 级别启用", format)
		}
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	if _, err := NewLogger(&config.LogConfig{Level: "loud", Format: "json"}); err == nil {
		t.Fatal("期望无效级别报错")
	}
}
