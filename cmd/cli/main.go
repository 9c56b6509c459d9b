package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-projects/internal/config"
	"github.com/kurihiro0119/github-projects/internal/domain"
	"github.com/kurihiro0119/github-projects/pkg/client"
)

var (
	outputJSON bool
	endpoint   string
	userID     string
)

var rootCmd = &cobra.Command{
	Use:   "github-projects",
	Short: "GitHub repository to project sync tool",
	Long: `A CLI tool for synchronizing GitHub repositories with persisted projects.

It lists the repositories of the configured GitHub account, shows which
ones already have a linked project, and creates or deletes projects
individually or in bulk through the API server.`,
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List enriched repositories",
	Long:  `Display the external repository list with rendered descriptions and project linkage.`,
	Args:  cobra.NoArgs,
	RunE:  runRepos,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List persisted projects",
	Long:  `Display all projects generated from repositories.`,
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

var linkCmd = &cobra.Command{
	Use:   "link [repository-id]",
	Short: "Create a project for a repository",
	Long:  `Create a project from the repository with the given external id.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLink,
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink [project-id...]",
	Short: "Delete one or more projects",
	Long:  `Delete projects by id. With multiple ids the deletions run as a batch that tolerates partial failure.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUnlink,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create projects for all unlinked repositories",
	Long:  `Bulk-create a project for every repository that has no linked project yet.`,
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&endpoint, "api", "", "API endpoint (default from API_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "cli", "acting user id recorded on created projects")

	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getClient() (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	base := endpoint
	if base == "" {
		base = cfg.APIEndpoint
	}
	return client.NewClient(base, userID), nil
}

func runRepos(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	repos, err := c.ListRepositories()
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(repos)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Description", "Project"})
	for _, repo := range repos {
		projectID := "-"
		if repo.ProjectID != nil {
			projectID = *repo.ProjectID
		}
		table.Append([]string{
			strconv.FormatInt(repo.ID, 10),
			repo.Name,
			repo.ShortDescription,
			projectID,
		})
	}
	table.Render()
	return nil
}

func runProjects(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	projects, err := c.ListProjects()
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(projects)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Repository ID", "Created By"})
	for _, project := range projects {
		table.Append([]string{
			project.ID,
			project.Title,
			strconv.FormatInt(project.RepositoryID, 10),
			project.CreatedBy,
		})
	}
	table.Render()
	return nil
}

func runLink(cmd *cobra.Command, args []string) error {
	repoID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid repository id %q", args[0])
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	repo, err := findRepository(c, repoID)
	if err != nil {
		return err
	}

	project, err := c.CreateProject(repo)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(project)
	}
	fmt.Printf("Created project %s (%s) for repository %d\n", project.ID, project.Title, project.RepositoryID)
	return nil
}

func runUnlink(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		project, err := c.DeleteProject(args[0])
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(project)
		}
		fmt.Printf("Deleted project %s (%s)\n", project.ID, project.Title)
		return nil
	}

	deleted, meta, err := c.DeleteAllProjects(args)
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(deleted)
	}
	fmt.Printf("Deleted %d of %d projects\n", meta.Succeeded, meta.Requested)
	if meta.Partial {
		fmt.Println("Warning: some deletions failed, listed projects were removed:")
		for _, project := range deleted {
			fmt.Printf("  %s (%s)\n", project.ID, project.Title)
		}
	}
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	repos, err := c.ListRepositories()
	if err != nil {
		return err
	}

	var unlinked []*domain.Repository
	for _, repo := range repos {
		if repo.ProjectID == nil {
			unlinked = append(unlinked, repo)
		}
	}
	if len(unlinked) == 0 {
		fmt.Println("All repositories already have a linked project")
		return nil
	}

	created, meta, err := c.CreateAllProjects(unlinked)
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(created)
	}
	fmt.Printf("Created %d of %d projects\n", meta.Succeeded, meta.Requested)
	if meta.Partial {
		fmt.Println("Warning: some repositories could not be linked; re-run 'link' per repository for details")
	}
	return nil
}

func findRepository(c *client.Client, repoID int64) (*domain.Repository, error) {
	repos, err := c.ListRepositories()
	if err != nil {
		return nil, err
	}
	for _, repo := range repos {
		if repo.ID == repoID {
			return repo, nil
		}
	}
	return nil, fmt.Errorf("repository %d not found in the external listing", repoID)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
