package driver

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"maps"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/datazip-inc/dskit/constants"
	"github.com/datazip-inc/dskit/utils"
	"github.com/datazip-inc/dskit/utils/logger"
)

// Config represents the configuration for connecting to a MySQL database
type Config struct {
	Host             string            `json:"host" mapstructure:"host" yaml:"host"`
	Port             int               `json:"port" mapstructure:"port" yaml:"port" validate:"gte=1,lte=65535"`
	Username         string            `json:"username" mapstructure:"username" yaml:"username" validate:"required"`
	Password         string            `json:"password" mapstructure:"password" yaml:"password"`
	Database         string            `json:"database" mapstructure:"database" yaml:"database" validate:"required"`
	Charset          string            `json:"charset" mapstructure:"charset" yaml:"charset"`
	Autocommit       *bool             `json:"autocommit,omitempty" mapstructure:"autocommit" yaml:"autocommit,omitempty"`
	JDBCURLParams    map[string]string `json:"jdbc_url_params" mapstructure:"jdbc_url_params" yaml:"jdbc_url_params"`
	SSLConfiguration *utils.SSLConfig  `json:"ssl" mapstructure:"ssl" yaml:"ssl"`
}

// URI generates the connection URI for the MySQL database
func (c *Config) URI() (string, error) {
	// Set default port if not specified
	if c.Port == 0 {
		c.Port = constants.MySQLDefaultPort
	}
	hostStr := c.Host
	if c.Host == "" {
		hostStr = "localhost"
	}

	cfg := mysql.Config{
		User:                 c.Username,
		Passwd:               c.Password,
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%d", hostStr, c.Port),
		DBName:               c.Database,
		AllowNativePasswords: true,
		ParseTime:            true,
		Params: map[string]string{
			"charset":    utils.Ternary(c.Charset == "", constants.MySQLDefaultCharset, c.Charset).(string),
			"autocommit": utils.Ternary(c.autocommit(), "1", "0").(string),
		},
	}

	if c.SSLConfiguration != nil {
		switch c.SSLConfiguration.Mode {
		case utils.SSLModeDisable:
			cfg.TLSConfig = "false"
		case utils.SSLModeRequire, utils.SSLModeVerifyCA, utils.SSLModeVerifyFull:
			tlsConfig, err := c.buildTLSConfig()
			if err != nil {
				return "", fmt.Errorf("failed to build TLS config: %s", err)
			}

			tlsConfigName := "mysql_" + utils.ULID()
			if err := mysql.RegisterTLSConfig(tlsConfigName, tlsConfig); err != nil {
				return "", fmt.Errorf("failed to register TLS config: %s", err)
			}
			cfg.TLSConfig = tlsConfigName
		}
	}

	// extra params are passed through to the driver and win over the defaults above
	maps.Copy(cfg.Params, c.JDBCURLParams)

	return cfg.FormatDSN(), nil
}

func (c *Config) autocommit() bool {
	return c.Autocommit == nil || *c.Autocommit
}

// buildTLSConfig builds a custom TLS configuration for certificate-based SSL
func (c *Config) buildTLSConfig() (*tls.Config, error) {
	// 'require' encrypts the connection without verifying the server identity
	// #nosec G402 -- InsecureSkipVerify is intentional for 'require' mode
	if c.SSLConfiguration.Mode == utils.SSLModeRequire {
		return &tls.Config{
			InsecureSkipVerify: true, // #nosec G402
			MinVersion:         tls.VersionTLS12,
		}, nil
	}

	rootCertPool := x509.NewCertPool()
	if c.SSLConfiguration.ServerCA != "" {
		if ok := rootCertPool.AppendCertsFromPEM([]byte(c.SSLConfiguration.ServerCA)); !ok {
			return nil, fmt.Errorf("failed to append CA certificate")
		}
	}

	tlsConfig := &tls.Config{
		RootCAs:    rootCertPool,
		MinVersion: tls.VersionTLS12,
	}

	// verify-ca checks the certificate chain but not the hostname
	if c.SSLConfiguration.Mode == utils.SSLModeVerifyCA {
		tlsConfig.InsecureSkipVerify = true
		tlsConfig.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return fmt.Errorf("no server certificate provided")
			}
			cert, err := x509.ParseCertificate(rawCerts[0])
			if err != nil {
				return fmt.Errorf("failed to parse server certificate: %w", err)
			}

			intermediates := x509.NewCertPool()
			for i := 1; i < len(rawCerts); i++ {
				intermediateCert, err := x509.ParseCertificate(rawCerts[i])
				if err != nil {
					logger.Warnf("failed to parse intermediate certificate at position %d: %v", i, err)
					continue
				}
				intermediates.AddCert(intermediateCert)
			}

			opts := x509.VerifyOptions{
				Roots:         rootCertPool,
				Intermediates: intermediates,
			}
			if _, err := cert.Verify(opts); err != nil {
				return fmt.Errorf("failed to verify server certificate against CA: %w", err)
			}
			return nil
		}
	} else {
		tlsConfig.ServerName = c.Host
	}

	if c.SSLConfiguration.ClientCert != "" && c.SSLConfiguration.ClientKey != "" {
		cert, err := tls.X509KeyPair([]byte(c.SSLConfiguration.ClientCert), []byte(c.SSLConfiguration.ClientKey))
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate and key: %s", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Validate checks the configuration for any missing or invalid fields
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("empty host name")
	} else if strings.HasPrefix(c.Host, "http://") || strings.HasPrefix(c.Host, "https://") {
		return fmt.Errorf("host should not contain http or https: %s", c.Host)
	}

	if c.Port == 0 {
		c.Port = constants.MySQLDefaultPort
	}
	if c.Charset == "" {
		c.Charset = constants.MySQLDefaultCharset
	}

	if c.SSLConfiguration != nil {
		if err := c.SSLConfiguration.Validate(); err != nil {
			return fmt.Errorf("failed to validate SSL config: %s", err)
		}
	}

	return utils.Validate(c)
}
