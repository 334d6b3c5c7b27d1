package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pdfchat/internal/client"
)

type clientFactory func() *client.Client

func newUploadCommand(newClient clientFactory) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF and print its summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			resp, err := newClient().Upload(cmd.Context(), args[0], f, sessionID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session: %s\n\n%s\n", resp.SessionID, resp.Summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session-id", "", "reuse or choose the session id")
	return cmd
}

func newChatCommand(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "chat <session_id> [message]",
		Short: "Ask a question about an uploaded PDF",
		Long:  "Ask a single question, or start an interactive loop when no message is given. Type 'exit' to leave the loop.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			sessionID := args[0]
			if len(args) > 1 {
				reply, err := c.Chat(cmd.Context(), sessionID, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			}
			return chatLoop(cmd, c, sessionID)
		},
	}
}

func chatLoop(cmd *cobra.Command, c *client.Client, sessionID string) error {
	out := cmd.OutOrStdout()
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
		case "exit", "quit":
			return nil
		}

		reply, err := c.Chat(cmd.Context(), sessionID, line)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
			continue
		}
		fmt.Fprintln(out, reply)
	}
}

func newSessionsCommand(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := newClient().Sessions(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "no sessions")
				return nil
			}
			for _, s := range sessions {
				name := "-"
				if s.PDFName != nil {
					name = *s.PDFName
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", s.SessionID, name, s.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newHistoryCommand(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "history <session_id>",
		Short: "Print the messages of a session in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := newClient().History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), history.Messages)
			return nil
		},
	}
}

func printHistory(out io.Writer, messages []client.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(out, "no messages")
		return
	}
	for _, m := range messages {
		fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04:05"), m.Role, m.Content)
	}
}

func newReloadCommand(newClient clientFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "reload <session_id>",
		Short: "Make a stored session chat-ready again after a server restart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().Reload(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session %s reloaded\n", args[0])
			return nil
		},
	}
}
