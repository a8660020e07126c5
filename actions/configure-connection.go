package actions

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/rdbms"
	"github.com/relloyd/makedw/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile  KeyValueStore
	LogicalName string
	Type        string
	ConnDetails ConnectionValidator // one of DsnConnectionDetails, SnowflakeConnectionDetails, NetezzaConnectionDetails, AwsS3Bucket
	Force       bool
	Out         io.Writer
}

func (c *ConnectionConfig) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	// Setup the basics ready to be persisted below.
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if err := helper.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	// Validate connection name.
	if strings.Index(cfg.LogicalName, ".") > 0 {
		return fmt.Errorf("connection name cannot contain period characters '.' as they're used to split sources e.g. <connection>[.<schema>]")
	}
	// Validate DSN and metadata based on connection type.
	if err := cfg.ConnDetails.Parse(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	scheme, err := cfg.ConnDetails.GetScheme()
	if err != nil {
		return err
	}
	if scheme != cfg.Type && rdbms.IsSupportedConnection(scheme) {
		return fmt.Errorf("connection string is for %q but a %q connection was requested", scheme, cfg.Type)
	}
	cfg.ConnDetails.GetMap(connection.Data)
	// Check for an existing saved connection.
	tmpConn := &shared.ConnectionDetails{}
	err = cfg.ConfigFile.Get(cfg.LogicalName, tmpConn)
	if err != nil { // if there is an error finding the connection...
		var keyNotFound config.KeyNotFoundError
		var fileNotFound config.FileNotFoundError
		if !errors.As(err, &keyNotFound) && !errors.As(err, &fileNotFound) { // if the error is real...
			return err
		}
	} else if tmpConn.LogicalName != "" && !cfg.Force { // else if the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	}
	// Set config (creates the file if missing).
	err = cfg.ConfigFile.Set(cfg.LogicalName, &connection)
	if err != nil {
		return fmt.Errorf("error writing connections config file after adding: %v", err)
	}
	fmt.Fprintf(cfg.out(), "Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if cfg.LogicalName == "" {
		return fmt.Errorf("missing value for connection name")
	}
	err := cfg.ConfigFile.Delete(cfg.LogicalName)
	if err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	fmt.Fprintf(cfg.out(), "Connection %q removed\n", cfg.LogicalName)
	return nil
}

// ConnectionLister is satisfied by *config.File.
type ConnectionLister interface {
	GetAllKeys() ([]string, error)
	GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error)
}

// RunConnectionList prints every saved connection with passwords redacted.
func RunConnectionList(c ConnectionLister, out io.Writer) error {
	keys, err := c.GetAllKeys()
	if err != nil {
		var fileNotFound config.FileNotFoundError
		if errors.As(err, &fileNotFound) {
			fmt.Fprintln(out, "No connections found")
			return nil
		}
		return err
	}
	sort.Strings(keys)
	for _, k := range keys {
		d, err := c.GetConnectionDetails(k)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%v:\n%v\n", k, d)
	}
	return nil
}
