package publish

import (
	"context"

	"sutrasync/internal/contentapi"
)

// API is the subset of the content API client used by publishing.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	CreateAdmin(ctx context.Context, profile contentapi.AdminProfile) error
	ListProjects(ctx context.Context, token string) ([]contentapi.Project, error)
	CreateProject(ctx context.Context, token string, project contentapi.Project) (int, error)
	CreateSutra(ctx context.Context, token string, ref contentapi.SutraRef, text string) (int, error)
	AddEntry(ctx context.Context, token string, ref contentapi.SutraRef, kind contentapi.EntryKind, entry contentapi.Entry) (int, error)
	UploadAudio(ctx context.Context, token string, ref contentapi.SutraRef, mode contentapi.AudioMode, path string) (int, error)
}

var _ API = (*contentapi.Client)(nil)
