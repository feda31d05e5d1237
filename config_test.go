package swp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func (suite *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.T().TempDir(), "swp.toml")
	suite.NoError(os.WriteFile(path, []byte(content), 0644))
	return path
}

func (suite *ConfigTestSuite) TestDefaultsMatchSimulationBaseline() {
	cfg := DefaultConfig()
	suite.NoError(cfg.Validate())
	suite.Equal("127.0.0.1", cfg.DataHost)
	suite.Equal(9000, cfg.DataPort)
	suite.Equal(9001, cfg.AckPort)
	suite.Equal(int64(12), cfg.Seed)
	suite.Equal(5, cfg.MaxRetries)
	suite.Equal(time.Second, cfg.Timeout())
	suite.Equal(0.15, cfg.Data.LossProbability)
	suite.Equal(0.08, cfg.Ack.LossProbability)
	suite.Equal(300*time.Millisecond, cfg.Data.DelayMin())
	suite.Equal(40*time.Millisecond, cfg.Ack.DelayMax())
}

func (suite *ConfigTestSuite) TestLoadOverridesDefaults() {
	path := suite.writeConfig(`
seed = 99
max_retries = 3
data_port = 7000

[data]
loss_probability = 0.5
delay_min_ms = 10
delay_max_ms = 20
`)
	cfg, err := LoadConfig(path)
	suite.NoError(err)
	suite.Equal(int64(99), cfg.Seed)
	suite.Equal(3, cfg.MaxRetries)
	suite.Equal(7000, cfg.DataPort)
	suite.Equal(0.5, cfg.Data.LossProbability)
	suite.Equal(10*time.Millisecond, cfg.Data.DelayMin())

	// untouched sections keep their defaults
	suite.Equal(0.08, cfg.Ack.LossProbability)
	suite.Equal(9001, cfg.AckPort)
}

func (suite *ConfigTestSuite) TestLoadRejectsInvalidValues() {
	for name, content := range map[string]string{
		"loss above one":   "[data]\nloss_probability = 1.5\n",
		"negative delay":   "[ack]\ndelay_min_ms = -1\n",
		"inverted bounds":  "[data]\ndelay_min_ms = 50\ndelay_max_ms = 10\n",
		"zero retries":     "max_retries = 0\n",
		"negative timeout": "timeout_ms = -5\n",
	} {
		_, err := LoadConfig(suite.writeConfig(content))
		suite.Error(err, name)
	}
}

func (suite *ConfigTestSuite) TestLoadMissingFile() {
	_, err := LoadConfig(filepath.Join(suite.T().TempDir(), "absent.toml"))
	suite.Error(err)
}

func TestConfig(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
