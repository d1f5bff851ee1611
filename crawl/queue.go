package crawl

// Queue is a bounded BFS frontier that never yields a URL twice.
// Once limit URLs have been accepted further additions are dropped.
type Queue struct {
	items []string
	seen  map[string]struct{}
	next  int
	limit int
}

// NewQueue creates an empty Queue holding at most limit URLs (0 = unbounded).
func NewQueue(limit int) *Queue {
	return &Queue{seen: make(map[string]struct{}), limit: limit}
}

// Add enqueues url unless it was seen before or the queue is full.
// It reports whether the URL was accepted.
func (q *Queue) Add(url string) bool {
	if _, ok := q.seen[url]; ok {
		return false
	}
	if q.limit > 0 && len(q.items) >= q.limit {
		return false
	}
	q.seen[url] = struct{}{}
	q.items = append(q.items, url)
	return true
}

// HasNext reports whether unprocessed URLs remain.
func (q *Queue) HasNext() bool {
	return q.next < len(q.items)
}

// Next returns the next unprocessed URL.
func (q *Queue) Next() string {
	u := q.items[q.next]
	q.next++
	return u
}

// Len is the number of accepted URLs.
func (q *Queue) Len() int {
	return len(q.items)
}

// All returns every accepted URL in BFS order.
func (q *Queue) All() []string {
	return q.items
}
