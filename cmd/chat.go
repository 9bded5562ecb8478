package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pickbetter/labelscan/internal/client"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the nutrition assistant about products and your diet",
	Long: `Chat sends your question along with your health profile to the
assistant. With no arguments it starts an interactive session; the
conversation so far is sent with every message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		profileCtx := app.profile.ChatContext()

		if len(args) > 0 {
			question := strings.Join(args, " ")
			reply, err := app.backend.Chat(ctx, []client.ChatMessage{{Role: "user", Content: question}}, profileCtx)
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		}

		fmt.Println("Interactive chat. Empty line or Ctrl-D to quit.")
		var messages []client.ChatMessage
		in := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !in.Scan() {
				return in.Err()
			}
			question := strings.TrimSpace(in.Text())
			if question == "" {
				return nil
			}
			messages = append(messages, client.ChatMessage{Role: "user", Content: question})
			reply, err := app.backend.Chat(ctx, messages, profileCtx)
			if err != nil {
				return err
			}
			fmt.Println(reply)
			messages = append(messages, client.ChatMessage{Role: "assistant", Content: reply})
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
