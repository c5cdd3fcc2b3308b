// Package config loads the YAML configuration shared by the fleetml
// daemons (superlink, supernode, superexec). Adapted from the
// teacher's config package, which follows the same
// os.ReadFile/yaml.Unmarshal/defaults-on-ENOENT shape for its CLI
// context file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Transport selects which ConnectionClient variant a SuperNode dials
// SuperLink with.
type Transport string

const (
	TransportGRPC        Transport = "grpc"
	TransportGRPCAdapter Transport = "grpc-adapter"
	TransportREST        Transport = "rest"
)

// SuperLink configures the coordination fabric's server process.
type SuperLink struct {
	ListenAddress   string        `yaml:"listen_address"`
	StorePath       string        `yaml:"store_path"` // empty means in-memory
	FabDir          string        `yaml:"fab_dir"`
	DefaultPingSecs int64         `yaml:"default_ping_seconds"`
	NTPPool         string        `yaml:"ntp_pool"`
	NTPInterval     time.Duration `yaml:"ntp_interval"`
	NTPThreshold    time.Duration `yaml:"ntp_threshold"`
}

// SuperNode configures the node-side agent that dials into SuperLink.
type SuperNode struct {
	ServerAddress string        `yaml:"server_address"`
	Transport     Transport     `yaml:"transport"`
	MachineID     string        `yaml:"machine_id,omitempty"` // grpc-adapter routing key
	PingInterval  int64         `yaml:"ping_interval"`
	RetryMaxTries int           `yaml:"retry_max_tries"`
	RetryMaxTime  time.Duration `yaml:"retry_max_time"`
}

// ExecutorKind selects the superexec runtime: a direct host subprocess
// or a container launched through the Docker API.
type ExecutorKind string

const (
	ExecutorProcess ExecutorKind = "process"
	ExecutorDocker  ExecutorKind = "docker"
)

// SuperExec configures the process that actually runs a FAB.
type SuperExec struct {
	ListenAddress string       `yaml:"listen_address"`
	Executor      ExecutorKind `yaml:"executor"`
	DockerImage   string       `yaml:"docker_image,omitempty"`
	Namespace     string       `yaml:"namespace,omitempty"`
	HealthPort    int          `yaml:"health_port,omitempty"`
}

// Config is the top-level document read from a single YAML file; a
// given process only ever consults the section it owns.
type Config struct {
	SuperLink SuperLink `yaml:"superlink"`
	SuperNode SuperNode `yaml:"supernode"`
	SuperExec SuperExec `yaml:"superexec"`
}

// Default returns a Config with the same shape of defaults ployz's
// daemons fall back to when no file is present.
func Default() *Config {
	return &Config{
		SuperLink: SuperLink{
			ListenAddress:   "127.0.0.1:9092",
			FabDir:          "/var/lib/fleetml/fabs",
			DefaultPingSecs: 30,
			NTPPool:         "pool.ntp.org",
			NTPInterval:     5 * time.Minute,
			NTPThreshold:    250 * time.Millisecond,
		},
		SuperNode: SuperNode{
			ServerAddress: "127.0.0.1:9092",
			Transport:     TransportGRPC,
			PingInterval:  30,
			RetryMaxTries: 5,
			RetryMaxTime:  30 * time.Second,
		},
		SuperExec: SuperExec{
			ListenAddress: "127.0.0.1:9094",
			Executor:      ExecutorProcess,
			DockerImage:   "fleetml/superexec-run:latest",
		},
	}
}

// Load reads path. A missing file is not an error; it yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
