package sqlmap

import (
	"container/list"
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
	"go.uber.org/atomic"
)

type preparer func(ctx context.Context, query string) (*sqlx.Stmt, error)

// stmtCache implements a per-connection LRU cache of prepared statements.
type stmtCache struct {
	cap    int
	mu     sync.Mutex
	ll     *list.List               // front = most recently used
	m      map[string]*list.Element // sql -> element
	hits   atomic.Uint64
	misses atomic.Uint64
}

type stmtEntry struct {
	key  string
	stmt *sqlx.Stmt
}

func newStmtCache(capacity int) *stmtCache {
	if capacity < 0 {
		capacity = 0
	}
	return &stmtCache{cap: capacity, ll: list.New(), m: make(map[string]*list.Element)}
}

// getOrPrepare returns a statement for query. The bool reports whether the cache owns it.
func (c *stmtCache) getOrPrepare(ctx context.Context, prepare preparer, query string) (*sqlx.Stmt, bool, error) {
	if c == nil || c.cap == 0 {
		st, err := prepare(ctx, query)
		return st, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.m[query]; ok {
		c.ll.MoveToFront(ele)
		c.hits.Inc()
		return ele.Value.(*stmtEntry).stmt, true, nil
	}
	st, err := prepare(ctx, query)
	if err != nil {
		return nil, false, err
	}
	c.misses.Inc()
	c.m[query] = c.ll.PushFront(&stmtEntry{key: query, stmt: st})
	if c.ll.Len() > c.cap {
		c.evictLRU()
	}
	return st, true, nil
}

func (c *stmtCache) evictLRU() {
	back := c.ll.Back()
	if back == nil {
		return
	}
	c.ll.Remove(back)
	e := back.Value.(*stmtEntry)
	delete(c.m, e.key)
	_ = e.stmt.Close()
}

func (c *stmtCache) closeAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var result error
	for e := c.ll.Front(); e != nil; e = e.Next() {
		if err := e.Value.(*stmtEntry).stmt.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.ll.Init()
	clear(c.m)
	return result
}

func (c *stmtCache) stats() (hits, misses uint64, size int) {
	if c == nil {
		return 0, 0, 0
	}
	c.mu.Lock()
	size = c.ll.Len()
	c.mu.Unlock()
	return c.hits.Load(), c.misses.Load(), size
}
