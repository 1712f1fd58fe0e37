package cheader

// Ledger records which type names have been written during one Generate
// call. It only grows; a type is written at most once, at its first reference.
type Ledger struct {
	emitted map[string]struct{}
	order   []string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{emitted: make(map[string]struct{})}
}

// Has reports whether name has already been written.
func (l *Ledger) Has(name string) bool {
	_, ok := l.emitted[name]
	return ok
}

// Add records name as written.
func (l *Ledger) Add(name string) {
	if l.Has(name) {
		return
	}
	l.emitted[name] = struct{}{}
	l.order = append(l.order, name)
}

// Emitted returns the recorded names in the order they were written.
func (l *Ledger) Emitted() []string {
	names := make([]string, len(l.order))
	copy(names, l.order)
	return names
}
