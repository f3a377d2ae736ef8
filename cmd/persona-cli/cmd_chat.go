package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"persona-chat/internal/client/session"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start or resume a conversation",
	Long: `Open an interactive chat with a character.

Type a message and press Enter to send it. Ctrl-C while an answer is
streaming stops it; Ctrl-C at the prompt (or Ctrl-D) quits.`,
	RunE: runChat,
}

var (
	chatCharacter    string
	chatConversation string
	chatModel        string
)

func init() {
	chatCmd.Flags().StringVarP(&chatCharacter, "character", "c", "", "Character slug")
	chatCmd.Flags().StringVar(&chatConversation, "conversation", "", "Resume an existing conversation")
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Model id (server default when empty)")
}

func runChat(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	var history []session.Message
	if chatConversation != "" {
		slug, stored, err := client.History(ctx, chatConversation)
		if err != nil {
			return fmt.Errorf("load conversation: %w", err)
		}
		if chatCharacter != "" && chatCharacter != slug {
			return fmt.Errorf("conversation %s belongs to %q, not %q", chatConversation, slug, chatCharacter)
		}
		chatCharacter = slug
		history = session.FromStored(stored)
		printHistory(out, history)
	}
	if chatCharacter == "" {
		return fmt.Errorf("--character is required for a new conversation")
	}

	manager := session.NewManager(client, session.Options{
		CharacterSlug:   chatCharacter,
		ConversationID:  session.NewConversationIDHolder(chatConversation),
		Model:           func() string { return chatModel },
		History:         history,
		InvalidateDelay: cliCfg.InvalidateDelay,
		Logger:          log,
		Hooks: session.Hooks{
			OnConversationID: func(id string) {
				log.Debug().Str("conversation_id", id).Msg("conversation started")
			},
			OnDelta: func(delta string) {
				fmt.Fprint(out, delta)
			},
		},
	})

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	lines := make(chan string)
	go readLines(cmd.InOrStdin(), lines)

	fmt.Fprintf(out, "Chatting with %s. Ctrl-C stops an answer, Ctrl-D quits.\n", chatCharacter)
	for {
		fmt.Fprint(out, "\n> ")
		var line string
		select {
		case <-interrupts:
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return nil
			}
			line = l
		}

		if !manager.SendMessage(line) {
			continue
		}
		fmt.Fprintf(out, "%s: ", chatCharacter)
		waitTurn(manager, interrupts)
		fmt.Fprintln(out)

		if manager.Status() == session.StatusError {
			msgs := manager.Messages()
			fmt.Fprintln(out, session.DisplayText(msgs[len(msgs)-1]))
		}
	}
}

// waitTurn blocks until the turn ends, turning Ctrl-C into Stop.
func waitTurn(manager *session.Manager, interrupts <-chan os.Signal) {
	done := make(chan struct{})
	go func() {
		manager.Wait()
		close(done)
	}()
	for {
		select {
		case <-done:
			return
		case <-interrupts:
			manager.Stop()
		}
	}
}

func readLines(in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

func printHistory(out io.Writer, history []session.Message) {
	for _, m := range history {
		text := strings.TrimSpace(session.TextOf(m))
		if text == "" {
			continue
		}
		fmt.Fprintf(out, "[%s] %s\n", m.Role, text)
	}
}
