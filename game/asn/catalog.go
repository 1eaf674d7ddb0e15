package asn

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Catalog is an ordered, read-only list of ASNs
type Catalog struct {
	asns  []ASN
	index map[string]int
}

// NewCatalog builds a catalog, rejecting invalid or duplicate entries
func NewCatalog(asns []ASN) (*Catalog, error) {
	c := &Catalog{
		asns:  make([]ASN, 0, len(asns)),
		index: make(map[string]int, len(asns)),
	}
	containers := make(map[string]bool, len(asns))

	for i, a := range asns {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("asn %d: %w", i, err)
		}
		if a.ASNNumber == "" {
			return nil, fmt.Errorf("asn %d: %w: asn_number is required", i, ErrInvalidASN)
		}
		if _, dup := c.index[a.ASNNumber]; dup {
			return nil, fmt.Errorf("asn %d: %w: duplicate asn_number %s", i, ErrInvalidASN, a.ASNNumber)
		}
		if containers[a.ContainerNumber] {
			return nil, fmt.Errorf("asn %d: %w: duplicate container_number %s", i, ErrInvalidASN, a.ContainerNumber)
		}
		containers[a.ContainerNumber] = true
		c.index[a.ASNNumber] = len(c.asns)
		c.asns = append(c.asns, a)
	}

	return c, nil
}

// LoadCatalog reads a JSON array of ASNs from path
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asn file: %w", err)
	}

	var asns []ASN
	if err := json.Unmarshal(data, &asns); err != nil {
		return nil, fmt.Errorf("failed to parse asn file: %w", err)
	}

	return NewCatalog(asns)
}

// All returns a copy of the catalog in order
func (c *Catalog) All() []ASN {
	out := make([]ASN, len(c.asns))
	copy(out, c.asns)
	return out
}

// Len returns the number of ASNs
func (c *Catalog) Len() int {
	return len(c.asns)
}

// Get looks up an ASN by number
func (c *Catalog) Get(number string) (ASN, error) {
	i, ok := c.index[number]
	if !ok {
		return ASN{}, fmt.Errorf("%w: %s", ErrASNNotFound, number)
	}
	return c.asns[i], nil
}

// Available returns ASNs whose numbers are not in used, in catalog order
func (c *Catalog) Available(used map[string]bool) []ASN {
	out := make([]ASN, 0, len(c.asns))
	for _, a := range c.asns {
		if !used[a.ASNNumber] {
			out = append(out, a)
		}
	}
	return out
}

// Dispenser hands out catalog ASNs one at a time and remembers which are in use
type Dispenser struct {
	catalog *Catalog
	used    map[string]bool
	mu      sync.Mutex
}

// NewDispenser creates a dispenser over catalog
func NewDispenser(catalog *Catalog) *Dispenser {
	return &Dispenser{
		catalog: catalog,
		used:    make(map[string]bool),
	}
}

// Next returns the first unused ASN and marks it used
func (d *Dispenser) Next() (ASN, error) {
	return d.NextWhere(nil)
}

// NextWhere returns the first unused ASN accepted by ok and marks it used.
// A nil ok accepts every ASN.
func (d *Dispenser) NextWhere(ok func(ASN) bool) (ASN, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range d.catalog.asns {
		if d.used[a.ASNNumber] || (ok != nil && !ok(a)) {
			continue
		}
		d.used[a.ASNNumber] = true
		return a, nil
	}
	return ASN{}, ErrExhausted
}

// Peek returns the first unused ASN without marking it
func (d *Dispenser) Peek() (ASN, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, a := range d.catalog.asns {
		if !d.used[a.ASNNumber] {
			return a, true
		}
	}
	return ASN{}, false
}

// Take marks a specific ASN used and returns it
func (d *Dispenser) Take(number string) (ASN, error) {
	a, err := d.catalog.Get(number)
	if err != nil {
		return ASN{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.used[number] {
		return ASN{}, fmt.Errorf("%w: %s is already in use", ErrInvalidASN, number)
	}
	d.used[number] = true
	return a, nil
}

// Release returns an ASN to the pool. Unknown numbers are ignored.
func (d *Dispenser) Release(number string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.used, number)
}

// ReleaseContainer releases whichever catalog ASN carries containerNumber
func (d *Dispenser) ReleaseContainer(containerNumber string) {
	for _, a := range d.catalog.asns {
		if strings.EqualFold(a.ContainerNumber, containerNumber) {
			d.Release(a.ASNNumber)
			return
		}
	}
}

// Available lists the unused ASNs
func (d *Dispenser) Available() []ASN {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.Available(d.used)
}

// UsedCount returns how many ASNs are currently handed out
func (d *Dispenser) UsedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.used)
}
