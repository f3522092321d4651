package publish

import (
	"context"
	"log/slog"
	"strings"

	"sutrasync/internal/contentapi"
	"sutrasync/internal/logging"
)

// ProjectEnsurer creates configured projects that the API does not have yet.
type ProjectEnsurer struct {
	api    API
	logger *slog.Logger
}

// NewProjectEnsurer constructs a ProjectEnsurer.
func NewProjectEnsurer(api API, logger *slog.Logger) *ProjectEnsurer {
	return &ProjectEnsurer{api: api, logger: logging.NewComponentLogger(logger, "projects")}
}

// Ensure creates every project whose name is not already listed. A failed
// listing is logged and treated as an empty list.
func (e *ProjectEnsurer) Ensure(ctx context.Context, token string, projects []contentapi.Project) ProjectReport {
	logger := logging.WithContext(ctx, e.logger)
	var report ProjectReport

	existing, err := e.api.ListProjects(ctx, token)
	if err != nil {
		logging.WarnWithContext(logger, "project listing failed", "projects_list_failed",
			logging.Int("status_code", contentapi.StatusCode(err)),
			logging.Error(err),
			logging.String(logging.FieldImpact, "every configured project will be created"),
		)
	}
	present := make(map[string]struct{}, len(existing))
	for _, project := range existing {
		present[project.Name] = struct{}{}
	}

	for _, project := range projects {
		name := strings.TrimSpace(project.Name)
		if name == "" {
			continue
		}
		if _, ok := present[name]; ok {
			report.Existing = append(report.Existing, name)
			logger.Debug("project already present", logging.String("project", name))
			continue
		}
		status, err := e.api.CreateProject(ctx, token, contentapi.Project{Name: name, Description: project.Description})
		if err != nil {
			report.Failed = append(report.Failed, name)
			logging.WarnWithContext(logger, "project create failed", "project_create_failed",
				logging.String("project", name),
				logging.Int("status_code", status),
				logging.Error(err),
			)
			continue
		}
		present[name] = struct{}{}
		report.Created = append(report.Created, name)
		logger.Info("project created", logging.String("project", name), logging.Int("status_code", status))
	}
	return report
}
