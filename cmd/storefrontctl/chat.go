package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mochico/storefront/internal/assistant"
	"github.com/mochico/storefront/internal/service"
)

const chatSessionID = "storefrontctl"

func (c *cli) chatCmd() *cobra.Command {
	var (
		apiKey string
		model  string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with Mochi from the terminal",
		Long: `Starts an interactive conversation with the shop assistant. Type a message
and press enter; an empty line is ignored and "/quit" or end of input ends
the conversation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]string{}
			if apiKey != "" {
				overrides["GEMINI_API_KEY"] = apiKey
			}
			if model != "" {
				overrides["GEMINI_MODEL"] = model
			}
			cfg, err := c.loadConfig(overrides)
			if err != nil {
				return err
			}

			client := assistant.NewGeminiClient(assistant.GeminiConfig{
				APIKey:      cfg.GeminiAPIKey,
				Model:       cfg.GeminiModel,
				Temperature: assistant.DefaultTemperature,
			})
			return runChat(cmd.Context(), service.NewChatService(client, 0, c.logger), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key, overrides GEMINI_API_KEY")
	cmd.Flags().StringVar(&model, "model", "", "Gemini model, overrides GEMINI_MODEL")
	return cmd
}

func runChat(ctx context.Context, chat *service.ChatService, in io.Reader, out io.Writer) error {
	defer chat.Forget(chatSessionID)

	for _, msg := range chat.Transcript(ctx, chatSessionID).Messages {
		fmt.Fprintf(out, "Mochi: %s\n", msg.Text)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			break
		}

		reply, _, err := chat.Send(ctx, chatSessionID, text)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Mochi: %s\n", reply.Text)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}
