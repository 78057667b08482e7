package scanner

// WorkItem represents a single unit of work for the worker pool.
type WorkItem struct {
	Index   int // position in the sequential scan order
	Request Request
}
