package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/makedw/actions"
	"github.com/relloyd/makedw/aws/s3"
	"github.com/relloyd/makedw/config"
	c "github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/helper"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/rdbms"
	"github.com/relloyd/makedw/rdbms/shared"
	"github.com/xo/dburl"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by makedw's actions.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarTwelveFactorMode      = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand               = c.EnvVarPrefix + "_" + "COMMAND"
	envVarSourceSchema          = c.EnvVarPrefix + "_" + "SOURCE_SCHEMA"
	envVarLogLevel              = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	defaultConnectionNameSource = "SOURCE"
	defaultConnectionNameOutput = "OUTPUT"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:      "",
		envVarSourceSchema: "",
		// Source
		helper.GetTypeEnvVarName(defaultConnectionNameSource): "",
		helper.GetDsnEnvVarName(defaultConnectionNameSource):  "",
		// Output
		helper.GetTypeEnvVarName(defaultConnectionNameOutput):   "",
		helper.GetDsnEnvVarName(defaultConnectionNameOutput):    "",
		helper.GetRegionEnvVarName(defaultConnectionNameOutput): "",
		// Misc
		envVarLogLevel: "",
	}
	twelveFactorVarsSensitive = map[string]string{ // used to flag some of the above variables as being sensitive.
		helper.GetDsnEnvVarName(defaultConnectionNameSource): "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(src string, output string)
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	"generate": {
		setupFunc: func(src string, output string) {
			generateSource = src
			if output != "" {
				generateCfg.Output = output
			}
		},
		runnerFunc: runGenerate,
	},
}

func getConnectionLoader() actions.ConnectionLoader {
	if twelveFactorMode {
		return &TwelveFactorConnections{}
	}
	return config.Connections
}

func getConnectionStore() actions.KeyValueStore {
	if twelveFactorMode {
		fmt.Printf("Error: connections cannot be configured when %v is set (supply them using %v instead)",
			envVarTwelveFactorMode,
			helper.GetDsnEnvVarName("<connection-name>"))
		os.Exit(1)
	}
	return config.Connections
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn") // fetch logLevel from env as this is not a persistent flag.
	log := logger.NewLogger(c.ServiceName, logLevel, stackDumpOnPanic)
	log.Info("makedw is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		// Save it and log it.
		twelveFactorVars[k] = os.Getenv(k)
		if _, sensitive := twelveFactorVarsSensitive[k]; !sensitive {
			log.Debug(k, "=", twelveFactorVars[k])
		} else {
			log.Debug(k, "=", "<obfuscated>")
		}
	}
	action := strings.ToLower(strings.TrimSpace(twelveFactorVars[envVarCommand]))
	if action == "" {
		action = "generate"
	}
	a, ok := acts[action]
	if !ok {
		err = fmt.Errorf("invalid command %q", twelveFactorVars[envVarCommand])
		log.Error(err.Error())
		return
	}
	// Setup the connection strings as Cobra would have done with flags.
	src := ""
	if twelveFactorVars[helper.GetDsnEnvVarName(defaultConnectionNameSource)] != "" {
		src = defaultConnectionNameSource
		if s := twelveFactorVars[envVarSourceSchema]; s != "" {
			src = src + "." + s // e.g. SOURCE.dbo
		}
	}
	output := ""
	if twelveFactorVars[helper.GetDsnEnvVarName(defaultConnectionNameOutput)] != "" {
		output = defaultConnectionNameOutput
	}
	a.setupFunc(src, output)
	// Run the action.
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}

type TwelveFactorConnections struct{} // implements interfaces in module, actions.

// LoadConnection reads MDW_<NAME>_DSN and MDW_<NAME>_TYPE, plus MDW_<NAME>_S3_REGION for buckets,
// mimicking a connection saved in the connections file.
func (t *TwelveFactorConnections) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	var vDsn, vType string
	if err := helper.ReadValueFromEnv(helper.GetDsnEnvVarName(connectionName), &vDsn); err != nil { // if we cannot find the DSN in the environment...
		return shared.ConnectionDetails{}, err
	}
	if err := helper.ReadValueFromEnv(helper.GetTypeEnvVarName(connectionName), &vType); err != nil { // if we can't read the type from the environment...
		return shared.ConnectionDetails{}, err
	}
	vType = strings.TrimSpace(strings.ToLower(vType)) // sanitise vType.
	var d shared.Details
	switch vType {
	case c.ConnectionTypeSnowflake:
		d = rdbms.SnowflakeConnectionDetails{Dsn: vDsn}
	case c.ConnectionTypeNetezza:
		d = shared.NetezzaConnectionDetails{Dsn: vDsn}
	case c.ConnectionTypeS3:
		var vRegion string
		if err := helper.ReadValueFromEnv(helper.GetRegionEnvVarName(connectionName), &vRegion); err != nil {
			return shared.ConnectionDetails{}, err
		}
		b, err := s3.ParseDSN(vDsn, vRegion)
		if err != nil {
			return shared.ConnectionDetails{}, err
		}
		d = &b
	default:
		if !rdbms.IsSupportedConnection(vType) {
			return shared.ConnectionDetails{}, fmt.Errorf("unsupported connection type %q for connection %v", vType, connectionName)
		}
		if _, err := dburl.Parse(vDsn); err != nil { // if the DSN was invalid...
			return shared.ConnectionDetails{}, err
		}
		d = &shared.DsnConnectionDetails{Dsn: vDsn}
	}
	if err := d.Parse(); err != nil {
		return shared.ConnectionDetails{}, err
	}
	return shared.ConnectionDetails{
		Type:        vType,
		LogicalName: connectionName,
		Data:        d.GetMap(nil),
	}, nil
}
