package catalog

import "errors"

// ErrNotFound covers both an unparseable identity and an upstream that
// returned no record for a requested id. It is terminal: callers render a
// not-found page, they do not retry.
var ErrNotFound = errors.New("record not found")
