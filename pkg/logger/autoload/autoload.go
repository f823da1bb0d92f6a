// Package autoload configures the global logger from the environment as
// a side effect of being imported.
package autoload

import (
	configx "github.com/graphmind/pastelaria/pkg/config"
	logx "github.com/graphmind/pastelaria/pkg/logger"
)

func init() {
	cfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*cfg)
}
