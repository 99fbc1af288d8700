package config

import (
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"

	"github.com/aquasecurity/epss-sorter/utils"
)

const (
	defaultAPIURL   = "https://api.first.org/data/v1/epss"
	defaultLogLevel = "info"

	configFileEnv = "EPSS_SORTER_CONFIG"
	apiURLEnv     = "EPSS_API_URL"
	outputDirEnv  = "EPSS_OUTPUT_DIR"
	logLevelEnv   = "EPSS_LOG_LEVEL"
)

type Config struct {
	APIURL    string `yaml:"api_url"`
	OutputDir string `yaml:"output_dir"`
	LogLevel  string `yaml:"log_level"`
	NoBanner  bool   `yaml:"no_banner"`
}

func Default() Config {
	return Config{
		APIURL:    defaultAPIURL,
		OutputDir: ".",
		LogLevel:  defaultLogLevel,
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// $EPSS_SORTER_CONFIG, and finally individual environment variables.
func Load(fs afero.Fs) (Config, error) {
	c := Default()

	if path := utils.LookupEnv(configFileEnv, ""); path != "" {
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, xerrors.Errorf("unable to read config file: %w", err)
		}
		if err = yaml.UnmarshalStrict(b, &c); err != nil {
			return Config{}, xerrors.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	c.APIURL = utils.LookupEnv(apiURLEnv, c.APIURL)
	c.OutputDir = utils.LookupEnv(outputDirEnv, c.OutputDir)
	c.LogLevel = utils.LookupEnv(logLevelEnv, c.LogLevel)

	if c.APIURL == "" {
		return Config{}, xerrors.New("api_url must not be empty")
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return c, nil
}
