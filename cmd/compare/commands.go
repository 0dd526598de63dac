package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sokinpui/maano.go/client"
	"github.com/sokinpui/maano.go/internal/color"
	"github.com/sokinpui/maano.go/model"
)

type rootOptions struct {
	server  string
	token   string
	timeout time.Duration
	noColor bool
}

func (o *rootOptions) client() client.Client {
	opts := []client.Option{client.WithTimeout(o.timeout)}
	if o.token != "" {
		opts = append(opts, client.WithToken(o.token))
	}
	return client.New(o.server, opts...)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "maano",
		Short: "Query and compare language models through a Maano server",
		Long: `maano talks to a running Maano server.

Examples:
  maano models
  maano chat gpt-4 "Explain photosynthesis"
  maano compare --models gpt-4,claude-3-sonnet,gemini-pro "What is entropy?"
  maano recommend "Help me debug my Python code"`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.Enabled = !opts.noColor
		},
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr("MAANO_SERVER", "http://localhost:8080"), "Server base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("MAANO_TOKEN"), "Bearer token for protected routes")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Request timeout")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newModelsCmd(opts),
		newChatCmd(opts),
		newCompareCmd(opts),
		newRecommendCmd(opts),
		newLoginCmd(opts),
	)
	return root
}

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			defer c.Close()

			descs, err := c.Models(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range descs {
				fmt.Fprintf(out, "%s  %s  %s\n", color.BoldString(d.ID), color.BlueString(string(d.Provider)), d.WireModel)
				if len(d.Strengths) > 0 {
					fmt.Fprintf(out, "    strengths:  %s\n", strings.Join(d.Strengths, ", "))
				}
				if len(d.Weaknesses) > 0 {
					fmt.Fprintf(out, "    weaknesses: %s\n", strings.Join(d.Weaknesses, ", "))
				}
			}
			return nil
		},
	}
}

type generationFlags struct {
	maxTokens   int
	temperature float64
}

func (g *generationFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&g.maxTokens, "max-tokens", 0, "Override the model's max tokens")
	cmd.Flags().Float64Var(&g.temperature, "temperature", 0, "Override the model's temperature")
}

// options returns nil unless a generation flag was given explicitly.
func (g *generationFlags) options(cmd *cobra.Command) *model.Options {
	var o model.Options
	set := false
	if cmd.Flags().Changed("max-tokens") {
		o.MaxTokens = &g.maxTokens
		set = true
	}
	if cmd.Flags().Changed("temperature") {
		o.Temperature = &g.temperature
		set = true
	}
	if !set {
		return nil
	}
	return &o
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var (
		gen       generationFlags
		contextID string
	)
	cmd := &cobra.Command{
		Use:   "chat <model> <message>",
		Short: "Send a message to one model",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			defer c.Close()

			req := client.ChatRequest{
				ModelID: args[0],
				Message: strings.Join(args[1:], " "),
				Options: gen.options(cmd),
			}
			if contextID != "" {
				req.ContextID = &contextID
			}

			res, err := c.Chat(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Message)
			fmt.Fprintln(out, color.YellowString(fmt.Sprintf("%s (%s) in %d ms", res.Model, res.Provider, res.Metadata.ResponseTimeMs)))
			return nil
		},
	}
	gen.register(cmd)
	cmd.Flags().StringVar(&contextID, "context", "", "Context id to attach to the exchange")
	return cmd
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		gen    generationFlags
		models []string
	)
	cmd := &cobra.Command{
		Use:   "compare --models a,b <message>",
		Short: "Send a message to several models side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			defer c.Close()

			res, err := c.Compare(cmd.Context(), client.CompareRequest{
				Message: strings.Join(args, " "),
				Models:  models,
				Options: gen.options(cmd),
			})
			if err != nil {
				return err
			}
			printComparison(cmd.OutOrStdout(), res.Responses)
			return nil
		},
	}
	gen.register(cmd)
	cmd.Flags().StringSliceVar(&models, "models", nil, "Comma-separated model ids (1-4)")
	_ = cmd.MarkFlagRequired("models")
	return cmd
}

func printComparison(out io.Writer, responses []model.Envelope) {
	for i, env := range responses {
		if i > 0 {
			fmt.Fprintln(out)
		}
		header := fmt.Sprintf("== %s (%s) %d ms ==", env.ModelID, env.Provider, env.Metadata.ResponseTimeMs)
		if env.Success {
			fmt.Fprintln(out, color.GreenString(header))
			fmt.Fprintln(out, env.Content)
			continue
		}
		fmt.Fprintln(out, color.RedString(header))
		fmt.Fprintln(out, "error: "+env.Error)
	}
}

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "recommend <prompt>",
		Short: "Suggest models for a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			defer c.Close()

			rec, err := c.Recommend(cmd.Context(), strings.Join(args, " "), subject)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, d := range rec.RecommendedModels {
				fmt.Fprintf(out, "%d. %s (%s)\n", i+1, color.BoldString(d.ID), d.Provider)
			}
			fmt.Fprintln(out, color.YellowString(rec.Reasoning))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject area of the prompt")
	return cmd
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print a bearer token for the given credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			defer c.Close()

			token, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
