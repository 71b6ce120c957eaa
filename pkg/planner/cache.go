package planner

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/dsnet/compress/bzip2"
)

// PlaceCache memoizes place-detail lookups by reference id. ids are stable,
// immutable-content keys, so entries are never evicted or invalidated.
type PlaceCache struct {
	mu      sync.RWMutex
	entries map[string]PlaceDetail
}

func NewPlaceCache() *PlaceCache {
	return &PlaceCache{
		entries: make(map[string]PlaceDetail),
	}
}

func (c *PlaceCache) Get(refID string) (PlaceDetail, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	detail, ok := c.entries[refID]
	return detail, ok
}

func (c *PlaceCache) Put(refID string, detail PlaceDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[refID] = detail
}

func (c *PlaceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *PlaceCache) WriteSnapshot(w io.Writer) error {
	bz, err := bzip2.NewWriter(w, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	bw := bufio.NewWriter(bz)

	c.mu.RLock()
	err = json.NewEncoder(bw).Encode(c.entries)
	c.mu.RUnlock()
	if err != nil {
		return err
	}
	return bw.Flush()
}

func (c *PlaceCache) ReadSnapshot(r io.Reader) error {
	bz, err := bzip2.NewReader(r, nil)
	if err != nil {
		return err
	}

	entries := make(map[string]PlaceDetail)
	if err := json.NewDecoder(bufio.NewReader(bz)).Decode(&entries); err != nil {
		return err
	}

	c.mu.Lock()
	for k, v := range entries {
		c.entries[k] = v
	}
	c.mu.Unlock()
	return nil
}

func (c *PlaceCache) SaveFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.WriteSnapshot(f)
}

func (c *PlaceCache) LoadFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return c.ReadSnapshot(f)
}
