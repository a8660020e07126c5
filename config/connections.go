package config

import (
	"fmt"
	"strings"

	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/rdbms/shared"
)

// GetConnectionType returns the type saved with connectionName.
// Return an error if the key doesn't exist.
func (c *File) GetConnectionType(connectionName string) (connectionType string, err error) {
	if strings.ToLower(connectionName) == constants.ConnectionTypeStdout {
		return constants.ConnectionTypeStdout, nil
	}
	genericConn, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return "", err
	}
	return genericConn.Type, nil
}

// GetConnectionDetails fetches generic connection details from the File c using the connectionName to do the lookup.
// If the connection is not found the an error is produced.
func (c *File) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	genericConn := &shared.ConnectionDetails{}
	if err := c.Get(connectionName, genericConn); err != nil {
		return nil, err
	}
	if genericConn.Type == "" {
		return nil, fmt.Errorf("connection %q is not configured: use 'config connections add' to create it", connectionName)
	}
	return genericConn, nil
}

func (c *File) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d := shared.ConnectionDetails{}
	err := c.Get(connectionName, &d)
	return d, err
}
