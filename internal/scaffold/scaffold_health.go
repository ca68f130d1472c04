package scaffold

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AnotherFullstackDev/spinewire/internal/lib"
)

const healthRouteTemplate = `
// Health check endpoint for Cloud Run startup and liveness probes
\Illuminate\Support\Facades\Route::get('%s', \App\Http\Controllers\HealthCheckController::class)->name('health');
`

func (s *Service) copyHealthStubs(ctx context.Context, force bool) error {
	for _, op := range healthStubOperations {
		if err := s.copyStub(ctx, op, force); err != nil {
			return err
		}
	}
	return nil
}

// installHealthRoute appends the health route to routes/web.php unless the path is already routed there.
func (s *Service) installHealthRoute() error {
	routesPath := s.targetPath(lib.HealthRoutesRelativePath)

	content, err := os.ReadFile(routesPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.printer.Warningf("%s not found, skipping health route installation.", lib.HealthRoutesRelativePath)
			return nil
		}
		return fmt.Errorf("reading %s: %w", lib.HealthRoutesRelativePath, err)
	}

	if strings.Contains(string(content), "'"+s.healthPath+"'") || strings.Contains(string(content), `"`+s.healthPath+`"`) {
		s.printer.Infof("Health route already exists in %s", lib.HealthRoutesRelativePath)
		return nil
	}

	f, err := os.OpenFile(routesPath, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", lib.HealthRoutesRelativePath, err)
	}
	if _, err := fmt.Fprintf(f, healthRouteTemplate, s.healthPath); err != nil {
		_ = f.Close()
		return fmt.Errorf("appending health route: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", lib.HealthRoutesRelativePath, err)
	}

	s.printer.Successf("Added %s route to %s", s.healthPath, lib.HealthRoutesRelativePath)
	s.recordModified(lib.HealthRoutesRelativePath)
	return nil
}
