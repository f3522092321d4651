package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sutrasync/internal/config"
	"sutrasync/internal/contentapi"
	"sutrasync/internal/publish"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect and provision Upanishad projects on the content API",
	}
	projectsCmd.AddCommand(newProjectsListCommand(ctx))
	projectsCmd.AddCommand(newProjectsEnsureCommand(ctx))
	return projectsCmd
}

func newProjectsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the projects the content API knows about",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.API.URL == "" {
				return errors.New("api.url is required. Set API_URL or edit the config file")
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}
			projects, err := client.ListProjects(cmd.Context(), "")
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}

			configured := make(map[string]struct{}, len(cfg.Publish.Projects))
			for _, p := range cfg.Publish.Projects {
				configured[p.Name] = struct{}{}
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects found")
				return nil
			}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				_, ok := configured[p.Name]
				rows = append(rows, []string{p.Name, p.Description, yesNo(ok)})
			}
			printTable(out, []string{"Name", "Description", "Configured"}, rows, nil)
			return nil
		},
	}
}

func newProjectsEnsureCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure",
		Short: "Create configured projects that are missing on the content API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateForPublish(); err != nil {
				return err
			}
			projects := configuredProjects(cfg)
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects configured; set UPANISHADS or [[publish.projects]]")
				return nil
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			auth := publish.NewAuthenticator(client, publish.Credentials{Email: cfg.API.Email, Password: cfg.API.Password}, logger)
			token, err := auth.ObtainToken(runCtx)
			if err != nil {
				return err
			}
			report := publish.NewProjectEnsurer(client, logger).Ensure(runCtx, token, projects)
			printProjectReport(cmd.OutOrStdout(), report)
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d project(s) could not be created", len(report.Failed))
			}
			return nil
		},
	}
}

func configuredProjects(cfg *config.Config) []contentapi.Project {
	projects := make([]contentapi.Project, 0, len(cfg.Publish.Projects))
	for _, p := range cfg.Publish.Projects {
		projects = append(projects, contentapi.Project{Name: p.Name, Description: p.Description})
	}
	return projects
}

func printProjectReport(out io.Writer, report publish.ProjectReport) {
	var rows [][]string
	for _, name := range report.Existing {
		rows = append(rows, []string{name, "already present"})
	}
	for _, name := range report.Created {
		rows = append(rows, []string{name, "created"})
	}
	for _, name := range report.Failed {
		rows = append(rows, []string{name, "failed"})
	}
	printTable(out, []string{"Project", "Result"}, rows, nil)
}
