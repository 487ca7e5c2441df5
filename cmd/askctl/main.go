// Command askctl talks to a running gateway from the terminal.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type options struct {
	server    string
	sessionID string
	timeout   time.Duration
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "askctl",
		Short:         "Send questions to the policy assistant gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVarP(&opts.server, "server", "s", envOr("ASKCTL_SERVER", "http://localhost:8080"), "Gateway base URL")
	root.PersistentFlags().StringVar(&opts.sessionID, "session", "", "Session id (default: a new random id)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "Per-request timeout")

	root.AddCommand(newAskCmd(opts), newChatCmd(opts))
	return root
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Send a single utterance and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := opts.session()
			c := newClient(opts.server, opts.timeout)

			resp, err := c.ask(cmd.Context(), sessionID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			printReply(cmd.OutOrStdout(), resp)
			if opts.sessionID == "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", sessionID)
			}
			return nil
		},
	}
}

func newChatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation (/quit to exit)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessionID := opts.session()
			c := newClient(opts.server, opts.timeout)
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "session %s\n", sessionID)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				}

				resp, err := c.ask(cmd.Context(), sessionID, line)
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				printReply(out, resp)
			}
		},
	}
}

func (o *options) session() string {
	if id := strings.TrimSpace(o.sessionID); id != "" {
		return id
	}
	return uuid.NewString()
}

func printReply(w io.Writer, resp askResponse) {
	status := "guest"
	if resp.Authenticated {
		status = "authenticated"
	}
	fmt.Fprintf(w, "[%s, %s] %s\n", resp.Agent, status, resp.Response)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
