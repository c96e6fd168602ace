package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/hexchat/pkg/chat"
	"github.com/go-go-golems/hexchat/pkg/chat/store"
	"github.com/go-go-golems/hexchat/pkg/events"
)

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	router, err := events.NewEventRouter()
	if err != nil {
		return err
	}
	defer func() {
		_ = router.Close()
	}()

	publisher := events.NewPublisherManager()
	publisher.SubscribePublisher(chatTopic, router.Publisher)

	s, cleanup, err := openStore(ctx, store.WithPublisher(publisher))
	if err != nil {
		return err
	}
	defer cleanup()

	router.AddHandler("chat-ui", chatTopic, func(msg *message.Message) error {
		e, err := events.NewEventFromJSON(msg.Payload)
		if err != nil {
			return err
		}
		switch e.Type {
		case events.EventTypeMessageAppended:
			if e.Role == chat.RoleAssistant {
				fmt.Printf("\n[assistant]: %s\n", e.Content)
			}
		case events.EventTypeReplyRequested:
			fmt.Println("[assistant is typing...]")
		}
		return nil
	})

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return router.Run(egCtx)
	})
	eg.Go(func() error {
		defer cancel()
		<-router.Running()
		return chatLoop(egCtx, s)
	})

	err = eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func chatLoop(ctx context.Context, s *store.Store) error {
	ui := &input.UI{
		Writer: os.Stdout,
		Reader: os.Stdin,
	}

	fmt.Println("Type a message, or /help for commands.")
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := ui.Ask(">", &input.Options{
			Required:  true,
			Loop:      true,
			HideOrder: true,
		})
		if err != nil {
			// EOF or closed input ends the session.
			return nil
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runSlashCommand(ctx, s, line)
			if err != nil {
				fmt.Println(err.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		if err := s.AppendUserMessage(ctx, line); err != nil {
			if errors.Is(err, store.ErrEmptyMessage) {
				continue
			}
			fmt.Println(err.Error())
		}
	}
}

func runSlashCommand(ctx context.Context, s *store.Store, line string) (bool, error) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Println("/new          start a new conversation")
		fmt.Println("/list         list conversations")
		fmt.Println("/switch <id>  switch to a conversation")
		fmt.Println("/delete <id>  delete a conversation")
		fmt.Println("/clear        delete all conversations")
		fmt.Println("/quit         leave the chat")
		return false, nil
	case "/new":
		id := s.CreateConversation(ctx)
		fmt.Printf("started %s\n", id)
		return false, nil
	case "/list":
		printSummaries(s.ListForDisplay())
		return false, nil
	case "/switch":
		if len(args) != 1 {
			return false, errors.New("usage: /switch <id>")
		}
		if err := s.SwitchTo(chat.ConversationID(args[0])); err != nil {
			return false, err
		}
		return false, nil
	case "/delete":
		if len(args) != 1 {
			return false, errors.New("usage: /delete <id>")
		}
		s.DeleteConversation(ctx, chat.ConversationID(args[0]))
		return false, nil
	case "/clear":
		s.ClearAll(ctx)
		return false, nil
	default:
		return false, errors.Errorf("unknown command %s", cmd)
	}
}

func printSummaries(summaries []store.Summary) {
	for _, summary := range summaries {
		marker := " "
		if summary.Active {
			marker = "*"
		}
		fmt.Printf("%s %s  %s (%d messages)\n", marker, summary.ID, summary.Title, summary.MessageCount)
	}
}
