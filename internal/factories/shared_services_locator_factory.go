package factories

import (
	"github.com/AnotherFullstackDev/spinewire/internal/config"
	"github.com/AnotherFullstackDev/spinewire/internal/output"
	"github.com/AnotherFullstackDev/spinewire/internal/placeholders"
	"github.com/AnotherFullstackDev/spinewire/internal/prompt"
)

type SharedServicesLocator struct {
	Config              *config.Config
	ProjectDir          string
	Printer             *output.Printer
	Prompter            prompt.Prompter
	PlaceholdersService *placeholders.Service
}

func NewSharedServicesLocator(config *config.Config, projectDir string, printer *output.Printer, prompter prompt.Prompter, placeholders *placeholders.Service) *SharedServicesLocator {
	return &SharedServicesLocator{
		config,
		projectDir,
		printer,
		prompter,
		placeholders,
	}
}

func (l *SharedServicesLocator) WithConfig(config *config.Config) *SharedServicesLocator {
	return &SharedServicesLocator{
		config,
		l.ProjectDir,
		l.Printer,
		l.Prompter,
		l.PlaceholdersService,
	}
}
