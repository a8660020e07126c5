package schema

// Generated marks a column whose value the database maintains.
type Generated int

const (
	NotGenerated Generated = iota
	RowStart               // GENERATED ALWAYS AS ROW START
	RowEnd                 // GENERATED ALWAYS AS ROW END
)

// Column is one column of a table shape.
// Type is carried through unchanged from the source.
type Column struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Nullable   bool      `json:"nullable"`
	PrimaryKey bool      `json:"primaryKey,omitempty"`
	Identity   bool      `json:"identity,omitempty"`
	Generated  Generated `json:"-"`
}

// Columns is an ordered list of columns.
type Columns []Column

// Names returns the column names in order.
func (c Columns) Names() []string {
	retval := make([]string, len(c))
	for i, col := range c {
		retval[i] = col.Name
	}
	return retval
}

// Find returns the column called name.
func (c Columns) Find(name string) (Column, bool) {
	for _, col := range c {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Keys returns the names of the primary key columns in column order.
func (c Columns) Keys() []string {
	var retval []string
	for _, col := range c {
		if col.PrimaryKey {
			retval = append(retval, col.Name)
		}
	}
	return retval
}
