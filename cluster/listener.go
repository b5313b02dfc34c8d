//go:build !js

package cluster

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/coder/websocket"
)

// Listener hands websocket connections accepted by its HTTP handler to the
// coordinator.
type Listener struct {
	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

func NewListener(ctx context.Context) *Listener {
	ctx, cancel := context.WithCancel(ctx)
	return &Listener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler upgrades the request and waits until the connection is accepted.
// Connections nobody accepts before Close are turned away.
func (l *Listener) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Println(err)
			return
		}

		select {
		case l.ch <- c:
		case <-l.ctx.Done():
			c.Close(websocket.StatusTryAgainLater, "coordinator is not accepting workers")
		}
	}
}

// Accept returns the next connection.
func (l *Listener) Accept(ctx context.Context) (*websocket.Conn, error) {
	select {
	case c := <-l.ch:
		return c, nil
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *Listener) Close() error {
	l.cancel()
	return nil
}

// Serve runs an HTTP server exposing l on /ws until ctx is done. If static is
// not empty its files are served on / (the wasm worker page).
func Serve(ctx context.Context, ln net.Listener, l *Listener, static string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", l.Handler())
	if static != "" {
		mux.Handle("/", http.FileServer(http.Dir(static)))
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
