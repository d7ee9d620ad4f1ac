package gelf

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestCoreSendsGELF(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	core, err := New(pc.LocalAddr().String(), "ontohin", zapcore.InfoLevel)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer core.Close()

	logger := zap.New(core).With(zap.String("service", "pipeline"))
	logger.Warn("export failed", zap.String("form_id", "42"))
	logger.Debug("dropped")

	buf := make([]byte, 8192)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg map[string]any
	if err := json.Unmarshal(buf[:n], &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg["short_message"] != "export failed" {
		t.Fatalf("unexpected short_message %v", msg["short_message"])
	}
	if lvl, _ := msg["level"].(float64); int(lvl) != 4 {
		t.Fatalf("expected level 4, got %v", msg["level"])
	}
	if msg["_form_id"] != "42" || msg["_service"] != "ontohin" {
		t.Fatalf("missing fields: %v", msg)
	}
}

func TestSyslogLevel(t *testing.T) {
	cases := map[zapcore.Level]int{
		zapcore.DebugLevel: 7,
		zapcore.InfoLevel:  6,
		zapcore.WarnLevel:  4,
		zapcore.ErrorLevel: 3,
		zapcore.FatalLevel: 2,
	}
	for lvl, want := range cases {
		if got := syslogLevel(lvl); got != want {
			t.Errorf("%s: expected %d, got %d", lvl, want, got)
		}
	}
}
