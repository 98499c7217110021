package sheet

// Memory is an in-memory Document used by engine tests and callers
// that already hold tabular data. It records whether Commit or Discard
// ran so all-or-nothing behavior can be asserted.
type Memory struct {
	name      string
	records   [][]string
	patches   []DatePatch
	Committed bool
	Discarded bool
}

// NewMemory builds a Memory document from rows of raw strings; the
// first row is the header row.
func NewMemory(name string, records [][]string) *Memory {
	return &Memory{name: name, records: records}
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Headers() []string {
	if len(m.records) == 0 {
		return nil
	}
	return trimHeaders(m.records[0])
}

func (m *Memory) Rows() int { return len(m.records) }

func (m *Memory) Cell(row, col int) Value {
	if row < 1 || row > len(m.records) {
		return Value{Kind: Empty}
	}
	cells := m.records[row-1]
	if col < 1 || col > len(cells) {
		return Value{Kind: Empty}
	}
	return Classify(cells[col-1])
}

func (m *Memory) Stage(p DatePatch) {
	m.patches = append(m.patches, p)
}

func (m *Memory) Commit() error {
	for _, p := range m.patches {
		if p.Row >= 1 && p.Row <= len(m.records) {
			cells := m.records[p.Row-1]
			if p.Col >= 1 && p.Col <= len(cells) {
				cells[p.Col-1] = p.Date.Format(p.Layout)
			}
		}
	}
	m.Committed = true
	return nil
}

func (m *Memory) Discard() {
	m.patches = nil
	m.Discarded = true
}

// Record returns a copy of one 1-based row's raw cells.
func (m *Memory) Record(row int) []string {
	if row < 1 || row > len(m.records) {
		return nil
	}
	out := make([]string, len(m.records[row-1]))
	copy(out, m.records[row-1])
	return out
}

// Patches returns the currently staged mutations.
func (m *Memory) Patches() []DatePatch { return m.patches }
