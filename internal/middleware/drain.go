package middleware

import (
	"context"
	"net/http"
)

// Drain ends long-lived responses such as event streams once the server
// starts shutting down. http.Server.Shutdown waits for active requests
// but never cancels them, so an open stream would hold it until its
// deadline.
type Drain struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func NewDrain() *Drain {
	ctx, cancel := context.WithCancel(context.Background())
	return &Drain{ctx: ctx, cancel: cancel}
}

// Start cancels every request wrapped by Handler. It is meant for
// http.Server.RegisterOnShutdown.
func (d *Drain) Start() { d.cancel() }

func (d *Drain) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		stop := context.AfterFunc(d.ctx, cancel)
		defer stop()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
