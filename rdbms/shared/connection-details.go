package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/makedw/constants"
	"github.com/xo/dburl"
)

// ConnectionDetails is intended to hold credentials for a logical database connection.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"database type" mandatory:"yes" yaml:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"database logical name" mandatory:"yes" yaml:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data"`
}

// String redacts passwords and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := make([]string, 0, len(c.Data)+1)
	x = append(x, fmt.Sprintf("  type = %v", c.Type))
	if v, ok := c.Data[DefaultDsnConnectionKeyNames.Dsn]; ok {
		x = append(x, fmt.Sprintf("  dsn = %v", RedactDsn(c.Type, v)))
		return strings.Join(x, "\n")
	}
	keys := make([]string, 0, len(c.Data))
	for k := range c.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Data[k]
		if strings.EqualFold(k, "password") {
			v = "xxxxx"
		}
		x = append(x, fmt.Sprintf("  %v = %v", k, v))
	}
	return strings.Join(x, "\n")
}

// RedactDsn hides the password in dsn.
// Netezza DSNs use their own format so are handled explicitly.
func RedactDsn(connectionType string, dsn string) string {
	switch connectionType {
	case constants.ConnectionTypeNetezza:
		return NetezzaConnectionDetails{Dsn: dsn}.String()
	default:
		u, err := dburl.Parse(dsn)
		if err != nil {
			return "<unparseable DSN>"
		}
		return u.Redacted()
	}
}

