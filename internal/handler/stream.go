package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const heartbeatEvery = 25 * time.Second

// stream writes every value from ch as a server-sent "snapshot" event
// until ch closes or the client goes away.
func stream[T any](w http.ResponseWriter, r *http.Request, log *zap.Logger, ch <-chan T) {
	rc := http.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Warn("event stream not flushable", zap.Error(err))
		return
	}

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case v, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(v)
			if err != nil {
				log.Error("encode snapshot", zap.Error(err))
				return
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
