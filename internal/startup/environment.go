package startup

import "github.com/vitalvas/webapi/internal/config"

// Environment is the hosting environment name.
type Environment string

const (
	Development Environment = config.EnvDevelopment
	Staging     Environment = config.EnvStaging
	Production  Environment = config.EnvProduction
)

func (e Environment) IsDevelopment() bool { return e == Development }

func (e Environment) IsStaging() bool { return e == Staging }

func (e Environment) IsProduction() bool { return e == Production }

func (e Environment) String() string { return string(e) }
