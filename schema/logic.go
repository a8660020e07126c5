package schema

import "time"

// SCDType is the slowly changing dimension strategy.
type SCDType int

const (
	SCDType1 SCDType = 1
	SCDType2 SCDType = 2
)

func (t SCDType) String() string {
	switch t {
	case SCDType1:
		return "Type 1"
	case SCDType2:
		return "Type 2"
	}
	return "unknown"
}

// StagingLoadLogic copies the selected columns from the source table into the staging table.
type StagingLoadLogic struct {
	ProcedureName  string
	SourceDatabase string
	SourceSchema   string
	SourceTable    string
	Columns        []string
}

// MergeLogic reconciles the temporal table with the staging table and optionally
// backdates its earliest versions to a fixed anchor.
type MergeLogic struct {
	ProcedureName string
	StagingSchema string
	StagingTable  string
	MergeColumns  []string // every non-period column, in order
	KeyColumns    []string
	UpdateColumns []string // merge columns that are not keys
	Backdate      *time.Time
}

// BuildLogic rebuilds a dimension table from the temporal history.
type BuildLogic struct {
	ProcedureName string
	SCDType       SCDType
	HistorySchema string
	HistoryTable  string
	SurrogateKey  string
	Columns       []string // selected business columns, in order
	PeriodStart   string
	PeriodEnd     string
}

// GenerationUnit is everything derived for one source table.
type GenerationUnit struct {
	Source      TableShape
	Staging     TableShape
	StagingLoad StagingLoadLogic
	Temporal    TableShape
	Merge       MergeLogic
	Dimension   TableShape
	Build       BuildLogic
}
