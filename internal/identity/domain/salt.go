package domain

import "time"

// SaltEntry is one rotation bucket.
type SaltEntry struct {
	ID          int64
	BucketID    string
	Salt        string
	LastUpdated time.Time
}

// SaltSnapshot is an immutable view of the salt store. Entries keep the order they were
// loaded in, since bucket selection indexes into it.
type SaltSnapshot struct {
	FirstLevelSalt string
	Entries        []SaltEntry
}
