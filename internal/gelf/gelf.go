package gelf

import (
	"encoding/json"
	"net"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
)

// Core is a zapcore.Core that ships every entry as a GELF 1.1 message over
// UDP. Delivery is fire-and-forget: send errors are swallowed so that a
// missing collector never breaks logging.
type Core struct {
	zapcore.LevelEnabler
	conn     net.Conn
	hostname string
	service  string
	fields   []zapcore.Field
}

// New dials addr (e.g. "172.17.0.1:12201") and returns a core enabled at level.
func New(addr, service string, level zapcore.LevelEnabler) (*Core, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}

	return &Core{LevelEnabler: level, conn: conn, hostname: hostname, service: service}, nil
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(append([]zapcore.Field{}, c.fields...), fields...)
	return &clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	payload, err := json.Marshal(c.message(ent, fields))
	if err != nil {
		return nil
	}
	c.conn.Write(payload)
	return nil
}

func (c *Core) Sync() error { return nil }

// Close releases the UDP socket.
func (c *Core) Close() error { return c.conn.Close() }

func (c *Core) message(ent zapcore.Entry, fields []zapcore.Field) map[string]any {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	msg := map[string]any{
		"version":       "1.1",
		"host":          c.hostname,
		"short_message": ent.Message,
		"timestamp":     float64(ent.Time.UnixNano()) / float64(time.Second),
		"level":         syslogLevel(ent.Level),
		"_service":      c.service,
	}
	if ent.LoggerName != "" {
		msg["_logger"] = ent.LoggerName
	}
	for k, v := range enc.Fields {
		// GELF reserves "_id"; never clobber our own additional fields.
		if _, taken := msg["_"+k]; taken || k == "id" {
			k = "field_" + k
		}
		msg["_"+k] = v
	}
	return msg
}

// syslogLevel maps zap levels onto the syslog severities GELF expects.
func syslogLevel(l zapcore.Level) int {
	switch {
	case l >= zapcore.DPanicLevel:
		return 2
	case l == zapcore.ErrorLevel:
		return 3
	case l == zapcore.WarnLevel:
		return 4
	case l == zapcore.InfoLevel:
		return 6
	default:
		return 7
	}
}
