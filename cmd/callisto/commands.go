package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blackcoderx/callisto/pkg/core"
	"github.com/blackcoderx/callisto/pkg/storage"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config document if missing and publish it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.attachEmitter(cmd)
			doc, err := a.engine.Start(a.path)
			if err != nil {
				return err
			}
			return a.print(cmd, doc)
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the config document, creating it if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.engine.InitializeOrLoad(a.path)
			if err != nil {
				return err
			}
			return a.print(cmd, doc)
		},
	}
}

func newWorkspaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage workspaces",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add NAME",
			Short: "Add a workspace",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.mutate(cmd, func() (*storage.Document, error) {
					return a.engine.AddWorkspace(a.path, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "delete WORKSPACE_ID",
			Short: "Delete a workspace and everything in it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.mutate(cmd, func() (*storage.Document, error) {
					return a.engine.DeleteWorkspace(a.path, args[0])
				})
			},
		},
	)
	return cmd
}

func newCollectionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "collection",
		Aliases: []string{"col"},
		Short:   "Manage collections inside a workspace",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create WORKSPACE_ID NAME",
			Short: "Create a collection",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.mutate(cmd, func() (*storage.Document, error) {
					return a.engine.CreateCollection(a.path, args[0], args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "rename WORKSPACE_ID COLLECTION_ID NEW_NAME",
			Short: "Rename a collection",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.mutate(cmd, func() (*storage.Document, error) {
					return a.engine.RenameCollection(a.path, args[0], args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "delete WORKSPACE_ID COLLECTION_ID",
			Short: "Delete a collection and its requests",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.mutate(cmd, func() (*storage.Document, error) {
					return a.engine.DeleteCollection(a.path, args[0], args[1])
				})
			},
		},
	)
	return cmd
}

// requestFlags binds the mutable request fields to flags on cmd.
func requestFlags(cmd *cobra.Command, f *core.RequestFields) {
	cmd.Flags().StringVarP(&f.Name, "name", "n", "", "request name")
	cmd.Flags().StringVarP(&f.ReqType, "type", "t", "http", "request type (http, curl)")
	cmd.Flags().StringVarP(&f.Method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVar(&f.Curl, "curl", "", "curl command defining the request")
	_ = cmd.MarkFlagRequired("name")
}

func newRequestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request",
		Aliases: []string{"req"},
		Short:   "Manage saved requests inside a collection",
	}

	var createFields core.RequestFields
	create := &cobra.Command{
		Use:   "create WORKSPACE_ID COLLECTION_ID",
		Short: "Save a new request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func() (*storage.Document, error) {
				return a.engine.CreateRequest(a.path, args[0], args[1], createFields)
			})
		},
	}
	requestFlags(create, &createFields)

	var updateFields core.RequestFields
	update := &cobra.Command{
		Use:   "update WORKSPACE_ID COLLECTION_ID REQUEST_ID",
		Short: "Replace every field of a saved request",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func() (*storage.Document, error) {
				return a.engine.UpdateRequest(a.path, args[0], args[1], args[2], updateFields)
			})
		},
	}
	requestFlags(update, &updateFields)

	del := &cobra.Command{
		Use:   "delete WORKSPACE_ID COLLECTION_ID REQUEST_ID",
		Short: "Delete a saved request",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func() (*storage.Document, error) {
				return a.engine.DeleteRequest(a.path, args[0], args[1], args[2])
			})
		},
	}

	cmd.AddCommand(create, update, del, newRequestCopyCmd(a), newRequestSendCmd(a))
	return cmd
}

// parseVariables turns KEY=VALUE arguments into variables, keeping order.
func parseVariables(pairs []string) ([]storage.Variable, error) {
	vars := make([]storage.Variable, 0, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid variable %q: expected KEY=VALUE", p)
		}
		vars = append(vars, storage.Variable{Key: key, Value: value})
	}
	return vars, nil
}

// collectVariables merges variables from a YAML file with --var flags; the
// flags come last so they win on lookup.
func collectVariables(fromFile string, pairs []string) ([]storage.Variable, error) {
	vars := []storage.Variable{}
	if fromFile != "" {
		loaded, err := storage.LoadVariables(fromFile)
		if err != nil {
			return nil, err
		}
		vars = append(vars, loaded...)
	}
	flagVars, err := parseVariables(pairs)
	if err != nil {
		return nil, err
	}
	return append(vars, flagVars...), nil
}

func newEnvCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "env",
		Aliases: []string{"environment"},
		Short:   "Manage environments and their variables",
	}

	var createVars []string
	var createFile string
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := collectVariables(createFile, createVars)
			if err != nil {
				return err
			}
			return a.mutate(cmd, func() (*storage.Document, error) {
				return a.engine.CreateEnvironment(a.path, args[0], vars)
			})
		},
	}
	create.Flags().StringArrayVar(&createVars, "var", nil, "variable as KEY=VALUE (repeatable)")
	create.Flags().StringVar(&createFile, "from-file", "", "YAML file of variables")

	var updateVars []string
	var updateFile string
	update := &cobra.Command{
		Use:   "update ENVIRONMENT_ID NAME",
		Short: "Replace an environment's name and all of its variables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := collectVariables(updateFile, updateVars)
			if err != nil {
				return err
			}
			return a.mutate(cmd, func() (*storage.Document, error) {
				return a.engine.UpdateEnvironment(a.path, args[0], args[1], vars)
			})
		},
	}
	update.Flags().StringArrayVar(&updateVars, "var", nil, "variable as KEY=VALUE (repeatable)")
	update.Flags().StringVar(&updateFile, "from-file", "", "YAML file of variables")

	del := &cobra.Command{
		Use:   "delete ENVIRONMENT_ID",
		Short: "Delete an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.mutate(cmd, func() (*storage.Document, error) {
				return a.engine.DeleteEnvironment(a.path, args[0])
			})
		},
	}

	export := &cobra.Command{
		Use:   "export ENVIRONMENT_ID",
		Short: "Print an environment's variables as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.engine.Environment(a.path, args[0])
			if err != nil {
				return err
			}
			data, err := storage.MarshalVariables(env.Variables)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}

	cmd.AddCommand(create, update, del, export)
	return cmd
}

func compact(data []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return buf.String()
}
