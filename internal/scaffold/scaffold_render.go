package scaffold

import (
	"fmt"
	"os"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
	"github.com/AnotherFullstackDev/spinewire/internal/render"
	"gopkg.in/yaml.v3"
)

const maxTemplateDepth = 16

type renderOperation struct {
	source       string
	target       string
	validateYAML bool
}

var renderOperations = []renderOperation{
	{source: "cloudbuild.yaml", target: "cloudbuild.yaml", validateYAML: true},
	{source: "docker/Dockerfile.stub", target: "docker/Dockerfile"},
	{source: "docker/Dockerfile.base.stub", target: "docker/Dockerfile.base"},
}

func newStubRenderer() *render.Renderer {
	return render.NewRenderer(render.WithStrict(), render.WithMaxDepth(maxTemplateDepth))
}

// renderTemplates renders every template present in the project. Sources that differ from their target are removed.
func (s *Service) renderTemplates(values render.Values) error {
	for _, op := range renderOperations {
		source := s.targetPath(op.source)
		content, err := os.ReadFile(source)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("reading template %s: %w", op.source, err)
		}

		rendered, err := s.renderer.Render(string(content), values)
		if err != nil {
			return fmt.Errorf("rendering %s: %w", op.source, err)
		}

		if op.validateYAML {
			var doc map[string]any
			if err := yaml.Unmarshal([]byte(rendered), &doc); err != nil {
				return fmt.Errorf("%w - rendered %s is not valid YAML: %s", lib.BadUserInputError, op.target, err)
			}
		}

		if err := os.WriteFile(s.targetPath(op.target), []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", op.target, err)
		}
		if op.source != op.target {
			if err := os.Remove(source); err != nil {
				return fmt.Errorf("removing template %s: %w", op.source, err)
			}
		}

		s.printer.Successf("Processed: %s", op.target)
	}

	return nil
}
