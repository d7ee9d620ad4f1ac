package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ontohin26/ontohin/internal/oxidb"
	"go.uber.org/zap"
)

const (
	dialTimeout       = 5 * time.Second
	keepaliveInterval = 10 * time.Second
)

// Pool is a round-robin connection pool for OxiDB with auto-reconnect.
type Pool struct {
	host    string
	port    int
	log     *zap.Logger
	clients []*oxidb.Client
	mu      []sync.RWMutex
	idx     uint64
	stop    chan struct{}
	once    sync.Once
}

// NewPool creates a pool of size OxiDB connections and starts the
// keepalive loop.
func NewPool(host string, port, size int, log *zap.Logger) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		host:    host,
		port:    port,
		log:     log.Named("oxidb-pool"),
		clients: make([]*oxidb.Client, size),
		mu:      make([]sync.RWMutex, size),
		stop:    make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		c, err := oxidb.Connect(host, port, dialTimeout)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = c
	}
	go p.keepalive()
	return p, nil
}

// Get returns the next client in round-robin order.
func (p *Pool) Get() *oxidb.Client {
	n := atomic.AddUint64(&p.idx, 1)
	i := int(n % uint64(len(p.clients)))
	p.mu[i].RLock()
	defer p.mu[i].RUnlock()
	return p.clients[i]
}

// Size reports the number of connections in the pool.
func (p *Pool) Size() int { return len(p.clients) }

func (p *Pool) reconnect(i int) {
	p.mu[i].Lock()
	defer p.mu[i].Unlock()
	if p.clients[i] != nil {
		p.clients[i].Close()
	}
	c, err := oxidb.Connect(p.host, p.port, dialTimeout)
	if err != nil {
		p.log.Warn("reconnect failed", zap.Int("client", i), zap.Error(err))
		return
	}
	p.clients[i] = c
}

func (p *Pool) client(i int) *oxidb.Client {
	p.mu[i].RLock()
	defer p.mu[i].RUnlock()
	return p.clients[i]
}

// keepalive pings every connection so the server never drops an idle one.
func (p *Pool) keepalive() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			for i := range p.clients {
				ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
				_, err := p.client(i).Ping(ctx)
				cancel()
				if err != nil {
					p.log.Warn("ping failed, reconnecting", zap.Int("client", i), zap.Error(err))
					p.reconnect(i)
				}
			}
		}
	}
}

// Close stops the keepalive loop and closes all connections.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.stop)
		for i := range p.clients {
			if c := p.client(i); c != nil {
				c.Close()
			}
		}
	})
}
