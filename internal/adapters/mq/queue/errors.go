package queue

import "errors"

// ErrFull reports that a job was rejected because the queue is at capacity.
var ErrFull = errors.New("queue is full")
