package result

// Cursor walks a DocumentIterator in storage order, converting hits as it
// goes. Usage mirrors database/sql.Rows:
//
//	c := it.Cursor()
//	for c.Next() {
//		use(c.Key(), c.Document())
//	}
//	if err := c.Err(); err != nil { ... }
//
// The offsets are captured when the pass starts. Offsets unset during the
// pass are skipped; offsets added during the pass are not visited.
type Cursor struct {
	it   *DocumentIterator
	keys []Key
	pos  int
	key  Key
	doc  any
	err  error
	live bool
}

// Next advances to the next offset. It returns false when the pass is over
// or a conversion failed; check Err to tell them apart.
func (c *Cursor) Next() bool {
	if c.err != nil {
		return false
	}
	if !c.live {
		c.keys = c.it.Keys()
		c.pos = 0
		c.live = true
	}

	for c.pos < len(c.keys) {
		k := c.keys[c.pos]
		c.pos++

		e, ok := c.it.entries.Get(k)
		if !ok {
			continue
		}
		doc, err := c.it.materialize(k, e)
		if err != nil {
			c.err = err
			c.key, c.doc = k, nil
			return false
		}
		c.key, c.doc = k, doc
		return true
	}

	c.key, c.doc = Key{}, nil
	return false
}

// Key returns the current offset.
func (c *Cursor) Key() Key { return c.key }

// Document returns the domain object at the current offset.
func (c *Cursor) Document() any { return c.doc }

// Err returns the conversion error that stopped the pass, if any.
func (c *Cursor) Err() error { return c.err }

// Reset rewinds the cursor; the next call to Next starts a new pass.
func (c *Cursor) Reset() {
	*c = Cursor{it: c.it}
}
