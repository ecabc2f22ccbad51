package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config defines the command's configuration.
type Config struct {
	Model string    `json:"model,omitempty" toml:"model"`
	Seed  int       `json:"seed,omitempty" toml:"seed"`
	Log   bool      `json:"log,omitempty" toml:"log"`
	NB    NBConfig  `json:"nb" toml:"nb"`
	GMM   GMMConfig `json:"gmm" toml:"gmm"`
	HMM   HMMConfig `json:"hmm" toml:"hmm"`
	BN    BNConfig  `json:"bn" toml:"bn"`
}

// NBConfig holds the settings for naive Bayes training.
type NBConfig struct {
	Distribution string `json:"distribution" toml:"distribution"` // normal, exponential, uniform or mvn
}

// GMMConfig holds the settings for mixture model training.
type GMMConfig struct {
	Distribution  string  `json:"distribution" toml:"distribution"`
	Components    int     `json:"components" toml:"components"`
	MaxIterations int     `json:"maxIterations" toml:"maxIterations"`
	StopThreshold float64 `json:"stopThreshold" toml:"stopThreshold"`
	Normalize     bool    `json:"normalize" toml:"normalize"`
}

// HMMConfig holds the settings for Baum-Welch training.
type HMMConfig struct {
	MaxIterations int     `json:"maxIterations" toml:"maxIterations"`
	StopThreshold float64 `json:"stopThreshold" toml:"stopThreshold"`
	Pseudocount   float64 `json:"pseudocount" toml:"pseudocount"`
}

// BNConfig holds the settings for network parameter learning.
type BNConfig struct {
	Pseudocount float64 `json:"pseudocount" toml:"pseudocount"`
}

// Defaults sets the zero settings to their default values.
func (c *Config) Defaults() {
	if c.Model == "" {
		c.Model = "bayeskit.json.gz"
	}
	if c.NB.Distribution == "" {
		c.NB.Distribution = "normal"
	}
	if c.GMM.Distribution == "" {
		c.GMM.Distribution = "mvn"
	}
	if c.GMM.Components == 0 {
		c.GMM.Components = 2
	}
}

// UpdateInConfig updates the value in dest with val if the according
// value is not the zero-type for the underlying type.  Dest must be a
// pointer type to either string, int, float64 or bool.  Otherwise the
// function panics.
func UpdateInConfig(dest, val interface{}) {
	switch dest := dest.(type) {
	case *string:
		if v := val.(string); v != "" {
			*dest = v
		}
	case *int:
		if v := val.(int); v != 0 {
			*dest = v
		}
	case *float64:
		if v := val.(float64); v != 0 {
			*dest = v
		}
	case *bool:
		if v := val.(bool); v {
			*dest = v
		}
	default:
		panic("bad type")
	}
}

// ReadConfig loads the settings for the bayeskit commands.  An empty
// source yields the zero configuration.  A source enclosed in braces
// is decoded as inline json.  Otherwise source names a file that is
// decoded as toml if it ends in .toml and as json in all other cases.
func ReadConfig(source string) (*Config, error) {
	var c Config
	switch {
	case source == "":
		return &c, nil
	case strings.HasPrefix(source, "{") && strings.HasSuffix(source, "}"):
		if err := json.Unmarshal([]byte(source), &c); err != nil {
			return nil, fmt.Errorf("read config: inline: %v", err)
		}
		return &c, nil
	}
	in, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("read config: %v", err)
	}
	defer in.Close()
	if filepath.Ext(source) == ".toml" {
		_, err = toml.NewDecoder(in).Decode(&c)
	} else {
		err = json.NewDecoder(in).Decode(&c)
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %v", source, err)
	}
	return &c, nil
}
