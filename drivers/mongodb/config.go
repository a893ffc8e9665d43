package driver

import (
	"fmt"
	"strings"

	"github.com/datazip-inc/dskit/utils"
)

// Config describes how to reach a MongoDB deployment. A full connection
// string in ConnectionURI takes precedence over the discrete fields.
type Config struct {
	ConnectionURI  string   `json:"uri" mapstructure:"uri" yaml:"uri"`
	Hosts          []string `json:"hosts" mapstructure:"hosts" yaml:"hosts"`
	Database       string   `json:"database" mapstructure:"database" yaml:"database" validate:"required"`
	AuthDB         string   `json:"authdb" mapstructure:"authdb" yaml:"authdb"`
	Username       string   `json:"username" mapstructure:"username" yaml:"username"`
	Password       string   `json:"password" mapstructure:"password" yaml:"password"`
	ReplicaSet     string   `json:"replica_set" mapstructure:"replica_set" yaml:"replica_set"`
	ReadPreference string   `json:"read_preference" mapstructure:"read_preference" yaml:"read_preference"`
	Srv            bool     `json:"srv" mapstructure:"srv" yaml:"srv"`
}

func (c *Config) URI() string {
	if c.ConnectionURI != "" {
		return c.ConnectionURI
	}

	connectionPrefix := utils.Ternary(c.Srv, "mongodb+srv", "mongodb").(string)
	options := fmt.Sprintf("?authSource=%s", utils.Ternary(c.AuthDB == "", "admin", c.AuthDB).(string))

	if c.ReplicaSet != "" {
		if c.ReadPreference == "" {
			c.ReadPreference = "secondaryPreferred"
		}
		options = fmt.Sprintf("%s&replicaSet=%s&readPreference=%s", options, c.ReplicaSet, c.ReadPreference)
	}

	auth := ""
	if c.Username != "" {
		auth = utils.Ternary(c.Password != "", c.Username+":"+c.Password+"@", c.Username+"@").(string)
	}

	return fmt.Sprintf(
		"%s://%s%s/%s",
		connectionPrefix, auth, strings.Join(c.Hosts, ","), options,
	)
}

func (c *Config) Validate() error {
	if c.ConnectionURI == "" && len(c.Hosts) == 0 {
		return fmt.Errorf("either uri or hosts must be provided")
	}
	if c.ConnectionURI != "" && !strings.HasPrefix(c.ConnectionURI, "mongodb://") && !strings.HasPrefix(c.ConnectionURI, "mongodb+srv://") {
		return fmt.Errorf("uri must start with mongodb:// or mongodb+srv://")
	}
	return utils.Validate(c)
}
