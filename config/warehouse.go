package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/diegoholiveira/jsonlogic"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/schema"
)

var timestampLayouts = []string{
	time.RFC3339,
	constants.TimeFormatAnchor,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp accepts RFC3339, "2006-01-02 15:04:05" or a bare date and is always held in UTC.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t.UTC()}, nil
		}
	}
	return Timestamp{}, errors.Errorf("unable to parse timestamp %q: use YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(constants.TimeFormatAnchor))
}

// TableSelection holds the per-table column choices.
// A nil list means every eligible column; an empty list is rejected.
type TableSelection struct {
	StagingColumns []string `json:"stagingColumns,omitempty"`
	SCDColumns     []string `json:"scdColumns,omitempty"`
	PrimaryKeys    []string `json:"primaryKeys,omitempty"`
}

// WarehouseConfig is the settings provider for one generation run.
type WarehouseConfig struct {
	SourceDatabase        string                    `json:"sourceDatabase,omitempty"`
	SourceSchema          string                    `json:"sourceSchema,omitempty"`
	StagingSchema         string                    `json:"stagingSchema" errorTxt:"stagingSchema" mandatory:"yes"`
	HistorySchema         string                    `json:"historySchema" errorTxt:"historySchema" mandatory:"yes"`
	DimensionSchema       string                    `json:"dimensionSchema" errorTxt:"dimensionSchema" mandatory:"yes"`
	DimensionIDColumnName string                    `json:"dimensionIdColumnName" errorTxt:"dimensionIdColumnName" mandatory:"yes"`
	DropFirst             bool                      `json:"dropFirst"`
	BackdateHistTo        *Timestamp                `json:"backdateHistTo,omitempty"`
	SCDType               string                    `json:"scdType"`
	Tables                map[string]TableSelection `json:"tables,omitempty"`
	OutputDir             string                    `json:"outputDir,omitempty"`
	Concurrency           int                       `json:"concurrency,omitempty"`
	TableFilter           string                    `json:"tableFilter,omitempty"`
}

// NewWarehouseConfig returns the defaults used when no settings file exists.
func NewWarehouseConfig() *WarehouseConfig {
	return &WarehouseConfig{
		SourceSchema:          "dbo",
		StagingSchema:         "stg",
		HistorySchema:         "hist",
		DimensionSchema:       "dim",
		DimensionIDColumnName: constants.DefaultDimensionIDColumnName,
		SCDType:               constants.SCDType1,
		Concurrency:           constants.DefaultConcurrency,
	}
}

// LoadWarehouseConfig reads YAML (or JSON) settings from fileName over the defaults.
func LoadWarehouseConfig(fileName string) (*WarehouseConfig, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read warehouse config %v", fileName)
	}
	return ParseWarehouseConfig(b)
}

// ParseWarehouseConfig decodes YAML (or JSON) settings over the defaults.
func ParseWarehouseConfig(b []byte) (*WarehouseConfig, error) {
	c := NewWarehouseConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrap(err, "unable to parse warehouse config")
	}
	return c, nil
}

// SCD returns the configured dimension strategy.
func (c *WarehouseConfig) SCD() schema.SCDType {
	t, _ := ParseSCDType(c.SCDType)
	return t
}

// ParseSCDType accepts "Type 1", "type1", "1" and the same for Type 2.
func ParseSCDType(s string) (schema.SCDType, error) {
	switch strings.ToLower(helper.RemoveSpaces(s)) {
	case "", "type1", "1", "scd1":
		return schema.SCDType1, nil
	case "type2", "2", "scd2":
		return schema.SCDType2, nil
	}
	return schema.SCDType1, &ConfigurationError{Rule: "scdType must be one of \"Type 1\" or \"Type 2\", got " + s}
}

// Backdate returns the anchor truncated to whole seconds, or nil when backdating is off.
func (c *WarehouseConfig) Backdate() *time.Time {
	if c.BackdateHistTo == nil || c.BackdateHistTo.IsZero() {
		return nil
	}
	t := c.BackdateHistTo.UTC().Truncate(time.Second)
	return &t
}

// Selection returns the column choices for table with repeated names removed.
func (c *WarehouseConfig) Selection(table string) TableSelection {
	if c.Tables == nil {
		return TableSelection{}
	}
	s := c.Tables[table]
	return TableSelection{
		StagingColumns: helper.DistinctStrings(s.StagingColumns),
		SCDColumns:     helper.DistinctStrings(s.SCDColumns),
		PrimaryKeys:    helper.DistinctStrings(s.PrimaryKeys),
	}
}

// Workers returns the table concurrency with the default applied.
func (c *WarehouseConfig) Workers() int {
	if c.Concurrency <= 0 {
		return constants.DefaultConcurrency
	}
	return c.Concurrency
}

// Validate checks the run-wide settings and the column selections that can be checked without a source.
func (c *WarehouseConfig) Validate() error {
	if err := helper.ValidateStructIsPopulated(c); err != nil {
		return &ConfigurationError{Rule: err.Error()}
	}
	schemas := map[string]string{}
	for k, v := range map[string]string{
		"sourceSchema":    c.SourceSchema,
		"stagingSchema":   c.StagingSchema,
		"historySchema":   c.HistorySchema,
		"dimensionSchema": c.DimensionSchema,
	} {
		if v == "" {
			continue
		}
		if other, ok := schemas[strings.ToLower(v)]; ok {
			return &ConfigurationError{Rule: "schema " + v + " is used by both " + other + " and " + k}
		}
		schemas[strings.ToLower(v)] = k
	}
	if isPeriodColumn(c.DimensionIDColumnName) {
		return &ConfigurationError{Rule: "dimensionIdColumnName must not be " + c.DimensionIDColumnName}
	}
	if _, err := ParseSCDType(c.SCDType); err != nil {
		return err
	}
	if c.Concurrency < 0 {
		return &ConfigurationError{Rule: "concurrency must not be negative"}
	}
	if c.TableFilter != "" && !jsonlogic.IsValid(strings.NewReader(c.TableFilter)) {
		return &ConfigurationError{Rule: "tableFilter is not a valid JSON Logic rule"}
	}
	for table, sel := range c.Tables {
		if sel.StagingColumns != nil && len(sel.StagingColumns) == 0 {
			return &ConfigurationError{Table: table, Rule: "stagingColumns is empty"}
		}
		if sel.SCDColumns != nil && len(sel.SCDColumns) == 0 {
			return &ConfigurationError{Table: table, Rule: "scdColumns is empty"}
		}
		for _, col := range sel.SCDColumns {
			if isPeriodColumn(col) {
				return &ConfigurationError{Table: table, Rule: "scdColumns must not include period column " + col}
			}
			if strings.EqualFold(col, c.DimensionIDColumnName) {
				return &ConfigurationError{Table: table, Rule: "scdColumns must not include surrogate key column " + col}
			}
		}
		for _, col := range sel.StagingColumns {
			if isPeriodColumn(col) {
				return &ConfigurationError{Table: table, Rule: "stagingColumns must not include period column " + col}
			}
		}
	}
	return nil
}

func isPeriodColumn(name string) bool {
	return strings.EqualFold(name, constants.ValidFromColumnName) || strings.EqualFold(name, constants.ValidToColumnName)
}
