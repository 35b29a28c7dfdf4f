package kv

// Store a key-value cache holding query results
type Store interface {
	GetSet(key string, getValue func(key string) (any, error)) (any, error)
	Clear()
	Stats() Stats
}

// Stats cache hit and miss counters since the last Clear
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}
