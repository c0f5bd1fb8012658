package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/blackcoderx/callisto/pkg/logging"
	"github.com/blackcoderx/callisto/pkg/relay"
	"github.com/blackcoderx/callisto/pkg/storage"
	"github.com/blackcoderx/callisto/pkg/ui"
	"github.com/blackcoderx/callisto/pkg/watch"
	"github.com/spf13/cobra"
)

// errNoCurl is returned when a saved request has nothing to send.
var errNoCurl = errors.New("request has no curl payload")

func newRequestCopyCmd(a *app) *cobra.Command {
	var envID string
	cmd := &cobra.Command{
		Use:   "copy WORKSPACE_ID COLLECTION_ID REQUEST_ID",
		Short: "Copy a saved request's curl command to the clipboard",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := a.resolveRequest(args[0], args[1], args[2], envID)
			if err != nil {
				return err
			}
			curl := storage.BuildCurl(spec)
			if err := clipboard.WriteAll(curl); err != nil {
				logging.Warn("CLI", "clipboard unavailable: %v", err)
				fmt.Fprintln(a.out, curl)
				return nil
			}
			fmt.Fprintln(a.out, "Copied to clipboard.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&envID, "env", "e", "", "environment whose variables are substituted")
	return cmd
}

func newRequestSendCmd(a *app) *cobra.Command {
	var envID string
	cmd := &cobra.Command{
		Use:   "send WORKSPACE_ID COLLECTION_ID REQUEST_ID",
		Short: "Send a saved request through the HTTP relay",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := a.resolveRequest(args[0], args[1], args[2], envID)
			if err != nil {
				return err
			}
			return a.send(cmd.Context(), relay.FromCurl(spec))
		},
	}
	cmd.Flags().StringVarP(&envID, "env", "e", "", "environment whose variables are substituted")
	return cmd
}

// resolveRequest parses a saved request's curl payload and applies the
// variables of envID when given.
func (a *app) resolveRequest(workspaceID, collectionID, requestID, envID string) (storage.CurlSpec, error) {
	req, err := a.engine.Request(a.path, workspaceID, collectionID, requestID)
	if err != nil {
		return storage.CurlSpec{}, err
	}
	if strings.TrimSpace(req.Curl) == "" {
		return storage.CurlSpec{}, errNoCurl
	}
	spec := storage.ParseCurl(req.Curl)
	if spec.URL == "" {
		return storage.CurlSpec{}, fmt.Errorf("no URL found in curl payload of request %s", requestID)
	}
	if envID == "" {
		return spec, nil
	}

	env, err := a.engine.Environment(a.path, envID)
	if err != nil {
		return storage.CurlSpec{}, err
	}
	if missing := storage.MissingVariables(req.Curl, env.Variables); len(missing) > 0 {
		logging.Warn("CLI", "environment %q does not define: %s", env.Name, strings.Join(missing, ", "))
	}
	return spec.Apply(env.Variables), nil
}

func (a *app) send(ctx context.Context, req relay.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}
	resp, err := a.relay.Send(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, ui.RenderResponse(resp))
	return nil
}

func newSendCmd(a *app) *cobra.Command {
	var (
		method  string
		headers []string
		body    string
	)
	cmd := &cobra.Command{
		Use:   "send URL",
		Short: "Send an ad-hoc HTTP request through the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := relay.Request{
				Method:  strings.ToUpper(method),
				URL:     args[0],
				Headers: make(map[string]string, len(headers)),
			}
			for _, h := range headers {
				key, value, ok := strings.Cut(h, ":")
				if !ok {
					return fmt.Errorf("invalid header %q: expected 'Name: value'", h)
				}
				req.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
			if cmd.Flags().Changed("body") {
				req.Body = &body
			}
			return a.send(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "header as 'Name: value' (repeatable)")
	cmd.Flags().StringVarP(&body, "body", "d", "", "request body")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Publish the config document whenever the file changes on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, cancel := a.notifier.Subscribe(8)
			defer cancel()
			go func() {
				for ev := range events {
					data, err := storage.Encode(ev.Document)
					if err != nil {
						logging.Warn("CLI", "failed to encode %s event: %v", ev.Name, err)
						continue
					}
					fmt.Fprintf(a.out, "%s %s\n", ev.Name, compact(data))
				}
			}()

			if _, err := a.engine.Start(a.path); err != nil {
				return err
			}
			return watch.New(a.path, a.engine, a.notifier, a.v.GetDuration("watch.debounce")).Run(ctx)
		},
	}
}
