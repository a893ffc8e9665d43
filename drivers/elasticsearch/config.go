package driver

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/datazip-inc/dskit/utils"
)

// Config holds Elasticsearch connection configuration. Host accepts
// "http://host:port", "host:port" or a bare host combined with Port.
type Config struct {
	Host     string `json:"host" mapstructure:"host" yaml:"host" validate:"required"`
	Port     int    `json:"port" mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Username string `json:"username" mapstructure:"username" yaml:"username"`
	Password string `json:"password" mapstructure:"password" yaml:"password"`
	APIKey   string `json:"api_key" mapstructure:"api_key" yaml:"api_key"`
	UseSSL   bool   `json:"use_ssl" mapstructure:"use_ssl" yaml:"use_ssl"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("empty host name")
	}

	if strings.HasPrefix(strings.TrimSpace(c.Host), "https://") && !c.UseSSL {
		return fmt.Errorf("https host requires use_ssl: %s", c.Host)
	}

	if c.Username != "" && c.Password == "" {
		return fmt.Errorf("password is required when username is provided")
	}

	return utils.Validate(c)
}

// Address returns the normalized base URL of the cluster
func (c *Config) Address() (string, error) {
	host := strings.TrimRight(strings.TrimSpace(c.Host), "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = utils.Ternary(c.UseSSL, "https://", "http://").(string) + host
	}

	address, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %s: %s", c.Host, err)
	}
	if address.Hostname() == "" {
		return "", fmt.Errorf("invalid host %s: missing host name", c.Host)
	}

	if address.Port() == "" && c.Port > 0 {
		address.Host = net.JoinHostPort(address.Hostname(), strconv.Itoa(c.Port))
	}
	return address.String(), nil
}
