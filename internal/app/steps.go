package app

import (
	"github.com/vk/gridlaunch/internal/registry"
	"github.com/vk/gridlaunch/steps/envexport"
	"github.com/vk/gridlaunch/steps/envmodule"
	"github.com/vk/gridlaunch/steps/execprog"
	"github.com/vk/gridlaunch/steps/venv"
	"github.com/vk/gridlaunch/steps/workdir"
)

// coreSteps is the fixed set of step modules the launcher ships with.
var coreSteps = []registry.Module{
	&envmodule.Module{},
	&envexport.Module{},
	&workdir.Module{},
	&venv.Module{},
	&execprog.Module{},
}
