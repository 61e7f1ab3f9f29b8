// Package dict is a small insertion-ordered string-to-string map, used
// to carry the key=value results of multi-key control-protocol replies
// (GETINFO, GETCONF, MAPADDRESS) back to callers without forcing them
// through a slice of pairs.
package dict

// Dict is an insertion-ordered string-to-string map.
type Dict struct {
	keys   []string
	values map[string]string
}

// New creates an empty Dict.
func New() *Dict {
	return &Dict{values: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (d *Dict) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Put inserts or overwrites key's value, preserving key's original
// position if it already existed.
func (d *Dict) Put(key, value string) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// ForEach calls consumer for every entry in insertion order, stopping
// early if consumer returns false.
func (d *Dict) ForEach(consumer func(key, value string) bool) {
	for _, k := range d.keys {
		if !consumer(k, d.values[k]) {
			return
		}
	}
}
