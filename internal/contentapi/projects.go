package contentapi

import (
	"context"
	"net/http"
	"net/url"
)

// Project is a top-level text grouping on the content API.
type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListProjects fetches every project the API knows about.
func (c *Client) ListProjects(ctx context.Context, token string) ([]Project, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("/projects/", nil), token, nil)
	if err != nil {
		return nil, err
	}
	var projects []Project
	if _, err := c.do(req, "list projects", &projects, http.StatusOK); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project. The name and description travel both as
// query parameters and in the JSON body.
func (c *Client) CreateProject(ctx context.Context, token string, project Project) (int, error) {
	query := url.Values{}
	query.Set("name", project.Name)
	query.Set("description", project.Description)
	req, err := c.newJSONRequest(ctx, http.MethodPost, c.endpoint("/projects", query), token, project)
	if err != nil {
		return 0, err
	}
	return c.do(req, "create project", nil, http.StatusOK, http.StatusCreated)
}
