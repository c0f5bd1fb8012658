package main

import (
	"fmt"
	"strings"

	"github.com/blackcoderx/callisto/pkg/auth"
	"github.com/blackcoderx/callisto/pkg/storage"
	"github.com/spf13/cobra"
)

// saveVariables merges vars into the environment envID and writes it back.
func (a *app) saveVariables(cmd *cobra.Command, envID string, vars ...storage.Variable) error {
	env, err := a.engine.Environment(a.path, envID)
	if err != nil {
		return err
	}
	merged := auth.SetVariables(env.Variables, vars...)
	return a.mutate(cmd, func() (*storage.Document, error) {
		return a.engine.UpdateEnvironment(a.path, env.ID, env.Name, merged)
	})
}

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Store Authorization header values as environment variables",
	}

	var basicSaveAs string
	basic := &cobra.Command{
		Use:   "basic ENVIRONMENT_ID USERNAME PASSWORD",
		Short: "Save an HTTP Basic header value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := auth.BasicHeader(args[1], args[2])
			if err != nil {
				return err
			}
			return a.saveVariables(cmd, args[0], storage.Variable{Key: basicSaveAs, Value: header})
		},
	}
	basic.Flags().StringVar(&basicSaveAs, "save-as", "auth_header", "variable name for the header value")

	var bearerSaveAs string
	bearer := &cobra.Command{
		Use:   "bearer ENVIRONMENT_ID TOKEN",
		Short: "Save a Bearer header value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := auth.BearerHeader(args[1])
			if err != nil {
				return err
			}
			return a.saveVariables(cmd, args[0], storage.Variable{Key: bearerSaveAs, Value: header})
		},
	}
	bearer.Flags().StringVar(&bearerSaveAs, "save-as", "auth_header", "variable name for the header value")

	var (
		params      auth.OAuth2Params
		tokenSaveAs string
	)
	oauth := &cobra.Command{
		Use:   "oauth2 ENVIRONMENT_ID",
		Short: "Fetch an OAuth2 access token and save it with its Bearer header",
		Long: `Runs a client_credentials or password grant against --token-url. The access
token is saved as {{<save-as>}} and the Bearer header as {{<save-as>_header}}.
Flag values may reference the environment's variables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.engine.Environment(a.path, args[0])
			if err != nil {
				return err
			}
			p := params
			p.TokenURL = storage.SubstituteVariables(p.TokenURL, env.Variables)
			p.ClientID = storage.SubstituteVariables(p.ClientID, env.Variables)
			p.ClientSecret = storage.SubstituteVariables(p.ClientSecret, env.Variables)
			p.Username = storage.SubstituteVariables(p.Username, env.Variables)
			p.Password = storage.SubstituteVariables(p.Password, env.Variables)

			token, err := auth.FetchToken(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.saveVariables(cmd, env.ID, auth.TokenVariables(tokenSaveAs, token)...)
		},
	}
	f := oauth.Flags()
	f.StringVar(&params.Flow, "flow", auth.FlowClientCredentials, "grant type (client_credentials, password)")
	f.StringVar(&params.TokenURL, "token-url", "", "token endpoint")
	f.StringVar(&params.ClientID, "client-id", "", "client identifier")
	f.StringVar(&params.ClientSecret, "client-secret", "", "client secret")
	f.StringSliceVar(&params.Scopes, "scope", nil, "requested scopes")
	f.StringVar(&params.Username, "username", "", "username (password flow)")
	f.StringVar(&params.Password, "password", "", "password (password flow)")
	f.StringVar(&tokenSaveAs, "save-as", "token", "variable name for the access token")
	_ = oauth.MarkFlagRequired("token-url")

	var showVar string
	show := &cobra.Command{
		Use:   "show ENVIRONMENT_ID",
		Short: "Decode an Authorization value stored in an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.engine.Environment(a.path, args[0])
			if err != nil {
				return err
			}
			value, ok := lookupVariable(env.Variables, showVar)
			if !ok {
				return fmt.Errorf("environment %q has no variable %q", env.Name, showVar)
			}
			scheme, _, _ := strings.Cut(value, " ")
			switch scheme {
			case "Basic":
				username, password, err := auth.DecodeBasic(value)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Scheme: Basic\nUsername: %s\nPassword: %s\n", username, password)
			case "Bearer":
				fmt.Fprintf(a.out, "Scheme: Bearer\nToken: %s\n", strings.TrimPrefix(value, "Bearer "))
			default:
				fmt.Fprintf(a.out, "Value: %s\n", value)
			}
			return nil
		},
	}
	show.Flags().StringVar(&showVar, "var", "auth_header", "variable holding the header value")

	cmd.AddCommand(basic, bearer, oauth, show)
	return cmd
}

// lookupVariable returns the last definition of key, matching substitution.
func lookupVariable(vars []storage.Variable, key string) (string, bool) {
	value, found := "", false
	for _, v := range vars {
		if v.Key == key {
			value, found = v.Value, true
		}
	}
	return value, found
}
