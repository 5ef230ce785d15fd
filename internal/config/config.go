// Package config defines the CLI structure and configuration for psxpad.
package config

import (
	"github.com/Alia5/psxpad/internal/cmd"
)

type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"PSXPAD_LOG_LEVEL"`
	File    string `help:"Log file path (default: none; logs only to console)" env:"PSXPAD_LOG_FILE"`
	RawFile string `help:"Raw frame log file path (default: none)" env:"PSXPAD_LOG_RAW_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Log    `embed:"" prefix:"log."`
	Config string `help:"Path to a JSON, YAML or TOML config file" type:"path" env:"PSXPAD_CONFIG"`

	Monitor   cmd.Monitor       `cmd:"" help:"Poll the controller and log its state"`
	Bridge    cmd.Bridge        `cmd:"" help:"Forward the controller to a VIIPER server as a virtual DualShock 4 or Xbox 360 pad"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration file helpers"`
}
