package domain

import "time"

// Record is one deletable item seen by a sweep.
type Record struct {
	Key string
	// Timestamp is the instant compared against the cutoff. The zero value
	// means the record carries no timestamp and is never eligible.
	Timestamp time.Time
}

// Group is a set of records that share a delete scope, such as the messages
// of one chat room.
type Group struct {
	ID      string
	Records []Record
}
