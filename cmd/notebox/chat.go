package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/notebox/pkg/chat"
)

var chatNote string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant, one message per line",
	Long: `Chat reads messages from stdin, one per line, and prints each reply.
With --note, the note's content is sent as context with every request.
Remote failures print the configured fallback reply.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noteContext := ""
		if chatNote != "" {
			repo, err := openRepo(cmd.Context())
			if err != nil {
				return err
			}
			note, err := repo.FindByID(chatNote)
			closeRepo(repo)
			if err != nil {
				return err
			}
			noteContext = note.Content
		}

		client := chat.NewClient(cfg.ChatClientConfig(), chat.WithLogger(logger))
		session := client.NewSession(noteContext)

		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}
			reply, err := session.Send(cmd.Context(), scanner.Text())
			if errors.Is(err, chat.ErrEmptyMessage) {
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, strings.TrimSpace(reply.Content))
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatNote, "note", "", "Use this note's content as context")
}
