package deploy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetcare/vetdb/pkg/deploy"
	"github.com/vetcare/vetdb/pkg/history"
	"github.com/vetcare/vetdb/pkg/migration"
	"github.com/vetcare/vetdb/pkg/schema"
)

func TestCheckScript(t *testing.T) {
	assert := assert.New(t)
	full := schema.RecreateScript().SQL()
	assert.Empty(deploy.CheckScript(full, schema.TableNames()))

	missing := deploy.CheckScript("CREATE TYPE x", []string{"pets"})
	assert.Contains(missing, "DROP TABLE IF EXISTS")
	assert.Contains(missing, `CREATE TABLE IF NOT EXISTS "pets"`)
	assert.NotContains(missing, "CREATE TYPE")
}

func TestValidateUnit(t *testing.T) {
	reg, err := history.Registry()
	require.NoError(t, err)
	assert.NoError(t, deploy.ValidateUnit(reg, history.BootstrapName))

	err = deploy.ValidateUnit(reg, "1799999999999-Nope")
	assert.Error(t, err)

	// units built from procedures carry no static script
	units := history.Units()
	err = deploy.ValidateUnit(reg, units[3].Name())
	assert.Error(t, err)
	_, ok := migration.HasScript(units[3])
	assert.False(t, ok)
}
