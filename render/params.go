package render

import (
	"strings"

	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/schema"
)

// ColumnDef is one column of a CREATE TABLE statement.
type ColumnDef struct {
	Name      string // quoted
	Type      string
	Nullable  bool
	Identity  bool
	Generated schema.Generated
}

// Definition returns the column clause, e.g. "[Id] int IDENTITY(1,1) NOT NULL".
func (c ColumnDef) Definition() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(c.Type)
	if c.Identity {
		b.WriteString(" IDENTITY(1,1)")
	}
	switch c.Generated {
	case schema.RowStart:
		b.WriteString(" GENERATED ALWAYS AS ROW START")
	case schema.RowEnd:
		b.WriteString(" GENERATED ALWAYS AS ROW END")
	}
	if c.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	return b.String()
}

// TableParams feeds the staging_table and dimension_table templates.
type TableParams struct {
	Schema         string
	Table          string
	DropFirst      bool
	Comment        string
	Columns        []ColumnDef
	PrimaryKey     []string // quoted
	ConstraintName string   // quoted
}

func (p TableParams) Qualified() string {
	return helper.QualifiedName(p.Schema, p.Table)
}

// TemporalTableParams feeds the temporal_table template.
type TemporalTableParams struct {
	TableParams
	HistorySchema string
	HistoryTable  string
	PeriodStart   string // quoted
	PeriodEnd     string // quoted
}

func (p TemporalTableParams) QualifiedHistory() string {
	return helper.QualifiedName(p.HistorySchema, p.HistoryTable)
}

// ProcedureHeader is shared by the procedure templates.
type ProcedureHeader struct {
	Schema    string
	Procedure string
	DropFirst bool
}

func (p ProcedureHeader) QualifiedProcedure() string {
	return helper.QualifiedName(p.Schema, p.Procedure)
}

// StagingLoadParams feeds the staging_load_procedure template.
type StagingLoadParams struct {
	ProcedureHeader
	Target  string
	Source  string
	Columns []string // quoted
}

// MergeParams feeds the temporal_merge_procedure template.
type MergeParams struct {
	ProcedureHeader
	Target         string
	Source         string
	HistoryTable   string
	Columns        []string // quoted
	SourceColumns  []string // src.[col]
	KeyEquality    []string // tgt.[k] = src.[k]
	UpdateEquality []string // empty when every column is a key
	PeriodStart    string
	PeriodEnd      string
	Backdate       string // anchor literal or empty
	BackdateUpdate string // run via sp_executesql once the period is dropped
}

// DimensionBuildParams feeds the dimension_scd1_procedure and dimension_scd2_procedure templates.
type DimensionBuildParams struct {
	ProcedureHeader
	Target       string
	History      string
	SurrogateKey string
	Columns      []string // quoted
	PeriodStart  string
	PeriodEnd    string
	OrderBy      []string // episode numbering order
}

func NewTableParams(s schema.TableShape, dropFirst bool) TableParams {
	p := TableParams{
		Schema:         s.Schema(),
		Table:          s.Name(),
		DropFirst:      dropFirst,
		PrimaryKey:     helper.QuoteIdents(s.PrimaryKey()),
		ConstraintName: helper.QuoteIdent("PK_" + helper.RemoveSpaces(s.Name())),
	}
	for _, c := range s.Columns() {
		p.Columns = append(p.Columns, ColumnDef{
			Name:      helper.QuoteIdent(c.Name),
			Type:      c.Type,
			Nullable:  c.Nullable,
			Identity:  c.Identity,
			Generated: c.Generated,
		})
	}
	return p
}

func NewTemporalTableParams(s schema.TableShape, dropFirst bool) TemporalTableParams {
	p := TemporalTableParams{TableParams: NewTableParams(s, dropFirst), HistorySchema: s.Schema()}
	if v := s.Versioning(); v != nil {
		p.HistoryTable = v.HistoryTable
		p.PeriodStart = helper.QuoteIdent(v.PeriodStart)
		p.PeriodEnd = helper.QuoteIdent(v.PeriodEnd)
	}
	return p
}

func NewDimensionTableParams(s schema.TableShape, scd schema.SCDType, dropFirst bool) TableParams {
	p := NewTableParams(s, dropFirst)
	p.Comment = scd.String() + " SCD"
	return p
}

func NewStagingLoadParams(stg schema.TableShape, l schema.StagingLoadLogic, dropFirst bool) StagingLoadParams {
	return StagingLoadParams{
		ProcedureHeader: ProcedureHeader{Schema: stg.Schema(), Procedure: l.ProcedureName, DropFirst: dropFirst},
		Target:          helper.QualifiedName(stg.Schema(), stg.Name()),
		Source:          helper.QualifiedName(l.SourceDatabase, l.SourceSchema, l.SourceTable),
		Columns:         helper.QuoteIdents(l.Columns),
	}
}

func NewMergeParams(hist schema.TableShape, m schema.MergeLogic, dropFirst bool) MergeParams {
	p := MergeParams{
		ProcedureHeader: ProcedureHeader{Schema: hist.Schema(), Procedure: m.ProcedureName, DropFirst: dropFirst},
		Target:          helper.QualifiedName(hist.Schema(), hist.Name()),
		Source:          helper.QualifiedName(m.StagingSchema, m.StagingTable),
		Columns:         helper.QuoteIdents(m.MergeColumns),
		KeyEquality:     helper.GenerateSliceOfColsEqualCols(m.KeyColumns, "src", "tgt"),
		UpdateEquality:  helper.GenerateSliceOfColsEqualCols(m.UpdateColumns, "src", "tgt"),
	}
	for _, c := range p.Columns {
		p.SourceColumns = append(p.SourceColumns, "src."+c)
	}
	if v := hist.Versioning(); v != nil {
		p.HistoryTable = helper.QualifiedName(hist.Schema(), v.HistoryTable)
		p.PeriodStart = helper.QuoteIdent(v.PeriodStart)
		p.PeriodEnd = helper.QuoteIdent(v.PeriodEnd)
	}
	if m.Backdate != nil {
		p.Backdate = m.Backdate.UTC().Format(constants.TimeFormatAnchor)
		p.BackdateUpdate = "UPDATE " + p.Target + " SET " + p.PeriodStart + " = @anchor;"
	}
	return p
}

func NewDimensionBuildParams(dim schema.TableShape, b schema.BuildLogic, dropFirst bool) DimensionBuildParams {
	p := DimensionBuildParams{
		ProcedureHeader: ProcedureHeader{Schema: dim.Schema(), Procedure: b.ProcedureName, DropFirst: dropFirst},
		Target:          helper.QualifiedName(dim.Schema(), dim.Name()),
		History:         helper.QualifiedName(b.HistorySchema, b.HistoryTable),
		SurrogateKey:    helper.QuoteIdent(b.SurrogateKey),
		Columns:         helper.QuoteIdents(b.Columns),
		PeriodStart:     helper.QuoteIdent(b.PeriodStart),
		PeriodEnd:       helper.QuoteIdent(b.PeriodEnd),
	}
	p.OrderBy = append([]string{p.PeriodEnd, p.PeriodStart}, p.Columns...)
	return p
}
