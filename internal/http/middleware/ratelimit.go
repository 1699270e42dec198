package middleware

import (
	"sync"
	"time"
)

type clientInfo struct {
	start time.Time
	count int64
}

// localWindows is the in-process fixed window counter used when Redis is not
// configured. Counts are per replica.
type localWindows struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	now     func() time.Time
}

func newLocalWindows() *localWindows {
	return &localWindows{clients: make(map[string]*clientInfo), now: time.Now}
}

var local = newLocalWindows()

// incr returns the hit count of key in the current window.
func (l *localWindows) incr(key string, window time.Duration) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) >= window {
		if len(l.clients) > 10000 {
			l.evict(now, window)
		}
		l.clients[key] = &clientInfo{start: now, count: 1}
		return 1
	}
	ci.count++
	return ci.count
}

func (l *localWindows) evict(now time.Time, window time.Duration) {
	for k, ci := range l.clients {
		if now.Sub(ci.start) >= window {
			delete(l.clients, k)
		}
	}
}

func (l *localWindows) reset() {
	l.mu.Lock()
	l.clients = make(map[string]*clientInfo)
	l.mu.Unlock()
}
