package persistent

// Transaction coordinates atomic updates across any number of
// persistent containers. It records each container's version count on
// registration; if the transaction fails, Release rewinds every
// container to that count and discards the versions produced in
// between.
//
//	tx := NewTransaction(m, l)
//	defer tx.Release()
//	tx.Run(func() error {
//		...
//	})
type Transaction struct {
	containers []Versioned
	versions   []int
	failed     bool
	released   bool
}

// NewTransaction returns a transaction over the given containers. Nil
// containers are ignored.
func NewTransaction(containers ...Versioned) *Transaction {
	t := &Transaction{}
	for _, c := range containers {
		t.Add(c)
	}
	return t
}

// Add registers another container. Its rollback point is its version
// count at the time of the call.
func (t *Transaction) Add(c Versioned) {
	if c == nil {
		return
	}
	t.containers = append(t.containers, c)
	t.versions = append(t.versions, c.LastVersion())
}

// Run executes action, reporting whether it succeeded. An error return
// or a panic marks the transaction failed; the panic is absorbed.
func (t *Transaction) Run(action func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			t.failed = true
			ok = false
		}
	}()
	if err := action(); err != nil {
		t.failed = true
		return false
	}
	return true
}

// Release rolls every container back to its registration-time version
// when the transaction failed, erasing the versions the failed action
// produced. It does nothing on success and is safe to call more than
// once; pair it with defer right after NewTransaction.
func (t *Transaction) Release() {
	if t.released {
		return
	}
	t.released = true
	if !t.failed {
		return
	}
	for i, c := range t.containers {
		c.Undo(c.LastVersion()-t.versions[i], true)
	}
}
