// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"volunteer-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line in args, writing output to out.
func run(args []string, out io.Writer) error {
	cmd := newRootCmd(out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newRootCmd(out io.Writer) *cobra.Command {
	var path string

	rootCmd := &cobra.Command{
		Use:   "registry-updater",
		Short: "Maintain the activity registry describing each task type",
		Example: `  registry-updater add --id project.review.decide --displayName "Review Project" --description "Approve or reject a pending project" --category project --taskType review-project
  registry-updater update --id project.review.decide --field status --value implemented
  registry-updater validate --path configs/activity-registry.json
  registry-updater missing --taskTypes match-volunteers,review-project`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.PersistentFlags().StringVar(&path, "path", defaultRegistryPath, "Path to registry file")

	rootCmd.AddCommand(
		newAddCmd(&path),
		newUpdateCmd(&path),
		newValidateCmd(&path),
		newMissingCmd(&path),
	)
	return rootCmd
}

func newAddCmd(path *string) *cobra.Command {
	var a registry.Activity

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new activity to the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.InputSchema = map[string]interface{}{}
			a.OutputSchema = map[string]interface{}{}
			a.Timeout = "10s"

			if err := addActivity(*path, &a); err != nil {
				return fmt.Errorf("adding activity: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", a.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&a.ID, "id", "", "Activity ID (e.g., matching.volunteers.match)")
	cmd.Flags().StringVar(&a.DisplayName, "displayName", "", "Display Name (e.g., Match Volunteers)")
	cmd.Flags().StringVar(&a.Description, "description", "", "Description")
	cmd.Flags().StringVar(&a.Category, "category", "", "Category (e.g., matching)")
	cmd.Flags().StringVar(&a.TaskType, "taskType", "", "Camunda Task Type (e.g., match-volunteers)")
	cmd.Flags().StringVar(&a.Version, "version", "1.0.0", "Version")
	cmd.Flags().StringVar(&a.ImplementationStatus, "status", "planned", "Implementation Status (planned, in-progress, implemented, verified)")
	for _, name := range []string{"id", "displayName", "description", "category", "taskType"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUpdateCmd(path *string) *cobra.Command {
	var id, field, value string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update an existing activity's field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := updateActivity(*path, id, field, value); err != nil {
				return fmt.Errorf("updating activity: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", id, field, value)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Activity ID to update")
	cmd.Flags().StringVar(&field, "field", "", "Field to update (status, version, etc.)")
	cmd.Flags().StringVar(&value, "value", "", "New value for the field")
	for _, name := range []string{"id", "field", "value"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newValidateCmd(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the registry file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := validateRegistry(*path)
			if err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", n)
			return nil
		},
	}
}

func newMissingCmd(path *string) *cobra.Command {
	var taskTypes []string

	cmd := &cobra.Command{
		Use:   "missing",
		Short: "List task types that have no registry entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(*path)
			if err != nil {
				return fmt.Errorf("failed to load registry: %w", err)
			}
			missing := reg.Missing(trimAll(taskTypes))
			for _, tt := range missing {
				fmt.Fprintln(cmd.OutOrStdout(), tt)
			}
			if len(missing) > 0 {
				return fmt.Errorf("%d task types missing from registry", len(missing))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&taskTypes, "taskTypes", nil, "Comma-separated task types to look up")
	return cmd
}

func addActivity(path string, activity *registry.Activity) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{
			Version:    "1.0.0",
			Activities: []registry.Activity{},
		}
	}

	reg.Activities = append(reg.Activities, *activity)
	if err := reg.Validate(); err != nil {
		return err
	}
	return saveRegistry(reg, path)
}

func updateActivity(path, id, field, value string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	var a *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			a = &reg.Activities[i]
			break
		}
	}
	if a == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	switch field {
	case "status":
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	return saveRegistry(reg, path)
}

func validateRegistry(path string) (int, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return 0, err
	}
	if len(reg.Activities) == 0 {
		return 0, fmt.Errorf("registry contains no activities")
	}
	for _, a := range reg.Activities {
		if a.DisplayName == "" {
			return 0, fmt.Errorf("activity %s missing required field: DisplayName", a.ID)
		}
		if a.Category == "" {
			return 0, fmt.Errorf("activity %s missing required field: Category", a.ID)
		}
	}
	return len(reg.Activities), nil
}

// saveRegistry stamps LastUpdated and writes the registry as indented JSON.
func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format("2006-01-02")

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
