package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/relloyd/makedw/aws/s3"
	s3mocks "github.com/relloyd/makedw/aws/s3/mocks"
	"github.com/relloyd/makedw/config"
	"github.com/relloyd/makedw/constants"
	"github.com/relloyd/makedw/logger"
	"github.com/relloyd/makedw/output"
	"github.com/relloyd/makedw/rdbms/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connLoader map[string]shared.ConnectionDetails

func (c connLoader) LoadConnection(name string) (shared.ConnectionDetails, error) {
	d, ok := c[name]
	if !ok {
		return shared.ConnectionDetails{}, config.KeyNotFoundError{}
	}
	return d, nil
}

func TestWarehouseConfigOverrides(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "wh.yaml")
	require.NoError(t, os.WriteFile(fileName, []byte("stagingSchema: landing\nscdType: Type 1\n"), 0600))
	cfg := &GenerateConfig{
		ConfigFile:  fileName,
		Source:      ConnectionObject{ConnectionObject: "sales.crm"},
		SCDType:     "2",
		DropFirst:   true,
		BackdateTo:  "2020-01-01",
		Concurrency: 2,
		Output:      "-",
	}
	wh, err := cfg.warehouseConfig()
	require.NoError(t, err)
	assert.Equal(t, "landing", wh.StagingSchema)
	assert.Equal(t, "crm", wh.SourceSchema)
	assert.Equal(t, "2", wh.SCDType)
	assert.True(t, wh.DropFirst)
	require.NotNil(t, wh.Backdate())
	assert.Equal(t, 2020, wh.Backdate().Year())
	assert.Equal(t, 2, wh.Workers())
	assert.Equal(t, constants.OutputStdout, wh.OutputDir)
}

func TestWarehouseConfigMissingFiles(t *testing.T) {
	// The default file may be absent.
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	wh, err := (&GenerateConfig{ConfigFile: constants.DefaultWarehouseConfigFile}).warehouseConfig()
	require.NoError(t, err)
	assert.Equal(t, "stg", wh.StagingSchema)

	_, err = (&GenerateConfig{ConfigFile: filepath.Join(dir, "nope.yaml")}).warehouseConfig()
	assert.Error(t, err)

	_, err = (&GenerateConfig{BackdateTo: "not a time"}).warehouseConfig()
	assert.True(t, errors.Is(err, config.ErrConfiguration))
}

func TestLoadDefinitionsObject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	ctx := context.Background()
	g := s3mocks.NewMockGetter(ctrl)
	g.EXPECT().Get(ctx, "defs/tables.yaml").Return([]byte(`
tables:
  - name: Customer
    columns:
      - {name: Id, type: int, primaryKey: true}
      - {name: Name, type: nvarchar(50), nullable: true}
`), nil)
	s, err := loadDefinitionsObject(ctx, g, "defs/tables.yaml")
	require.NoError(t, err)
	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer"}, tables)

	g.EXPECT().Get(ctx, "missing.yaml").Return(nil, s3.ErrKeyNotFound)
	_, err = loadDefinitionsObject(ctx, g, "missing.yaml")
	assert.True(t, errors.Is(err, s3.ErrKeyNotFound))
}

func TestIntrospectorNeedsSource(t *testing.T) {
	cfg := &GenerateConfig{}
	_, closer, err := cfg.introspector(context.Background(), logger.Discard(), config.NewWarehouseConfig())
	closer()
	assert.Error(t, err)

	cfg = &GenerateConfig{
		Source:      ConnectionObject{ConnectionObject: "bucket"},
		Connections: connLoader{"bucket": {Type: constants.ConnectionTypeS3, LogicalName: "bucket"}},
	}
	_, closer, err = cfg.introspector(context.Background(), logger.Discard(), config.NewWarehouseConfig())
	closer()
	assert.Error(t, err)
}

func TestWriterResolution(t *testing.T) {
	log := logger.Discard()
	wh := config.NewWarehouseConfig()

	wh.OutputDir = constants.OutputStdout
	w, err := (&GenerateConfig{}).writer(log, wh)
	require.NoError(t, err)
	assert.IsType(t, &output.StdoutWriter{}, w)

	wh.OutputDir = t.TempDir()
	w, err = (&GenerateConfig{}).writer(log, wh)
	require.NoError(t, err)
	assert.IsType(t, &output.LocalWriter{}, w)

	wh.OutputDir = "archive"
	conns := connLoader{"archive": {
		Type:        constants.ConnectionTypeS3,
		LogicalName: "archive",
		Data:        map[string]string{"name": "my-bucket", "prefix": "dw", "region": "eu-west-2"},
	}}
	w, err = (&GenerateConfig{Connections: conns}).writer(log, wh)
	require.NoError(t, err)
	assert.IsType(t, &output.S3Writer{}, w)
}

func TestTableList(t *testing.T) {
	tables, err := (&GenerateConfig{Tables: `Customer, "Order Line"`}).tableList()
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer", "Order Line"}, tables)

	tables, err = (&GenerateConfig{}).tableList()
	require.NoError(t, err)
	assert.Empty(t, tables)

	for _, s := range []string{`Customer,Or"der`, `Customer, "Order Line" ,Product`, ` , `} {
		_, err = (&GenerateConfig{Tables: s}).tableList()
		assert.True(t, errors.Is(err, config.ErrConfiguration), s)
	}
}
