package scanner

// ScanResult holds the outcome of a single work item. Exactly one of
// Response and Error is set.
type ScanResult struct {
	Index    int
	Response *Response
	Error    error
}
