package chatbot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"ShopChat/internal/api"
	"ShopChat/internal/auth"
	"ShopChat/internal/chat"
	"ShopChat/internal/config"
	"ShopChat/internal/render"
	"ShopChat/internal/session"
	"ShopChat/internal/telemetry"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// command loop outcomes
type action int

const (
	actionNone action = iota
	actionQuit
	actionLogout
)

// ChatBot wires the session store, auth client and chat relay behind the
// terminal prompt loop.
type ChatBot struct {
	config config.Config
	store  *session.Store
	api    *api.Client
	auth   *auth.Client
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter

	cleanup func()
}

// NewChatBot creates a ChatBot instance
func NewChatBot(cfg config.Config) (*ChatBot, error) {
	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	store, err := session.Open(cfg.DBPath)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}

	apiClient := api.NewClient(cfg.APIURL, logger, tracer, meter)

	return &ChatBot{
		config:  cfg,
		store:   store,
		api:     apiClient,
		auth:    auth.NewClient(apiClient, store, logger),
		logger:  logger,
		tracer:  tracer,
		meter:   meter,
		cleanup: cleanup,
	}, nil
}

// Run drives the interactive loop: resume or establish a session, restore
// history, then relay messages until the user quits.
func (cb *ChatBot) Run() error {
	defer cb.cleanup()
	defer cb.store.Close()

	fmt.Println("=== ShopChat ===")
	fmt.Printf("Backend: %s\n", cb.config.APIURL)
	fmt.Println("Type /help for commands, /quit to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		sess, err := cb.store.Load()
		if errors.Is(err, session.ErrNoSession) {
			sess, err = cb.authFlow(ctx, scanner)
			if err != nil {
				return nil // user chose to quit at the auth prompt
			}
		} else if err != nil {
			return err
		} else {
			fmt.Printf("Welcome back, %s!\n\n", sess.Username)
		}

		relay := chat.NewRelay(cb.api, cb.logger, cb.meter, sess.UserID)
		relay.RestoreHistory(ctx)
		cb.printTranscript(relay.Transcript())

		act := cb.chatLoop(ctx, scanner, relay, sess)
		relay.Flush()

		if act == actionQuit {
			break
		}
		// logged out: fall through and prompt for credentials again
	}

	fmt.Println("Goodbye!")
	return nil
}

// authFlow prompts for login or registration until a session is
// established. Registration success switches back to the login prompt
// rather than logging the user in.
func (cb *ChatBot) authFlow(ctx context.Context, scanner *bufio.Scanner) (session.Session, error) {
	for {
		choice, ok := prompt(scanner, "login or register (or /quit): ")
		if !ok {
			return session.Session{}, errors.New("input closed")
		}
		switch strings.ToLower(choice) {
		case "login":
			username, _ := prompt(scanner, "Username: ")
			password, _ := prompt(scanner, "Password: ")
			sess, err := cb.auth.Login(ctx, username, password)
			if err != nil {
				fmt.Println(userFacing(err))
				cb.logger.Warn("login failed", "username", username, "error", err)
				continue
			}
			fmt.Printf("Welcome, %s!\n\n", sess.Username)
			return sess, nil

		case "register":
			username, _ := prompt(scanner, "Username: ")
			password, _ := prompt(scanner, "Password: ")
			confirm, _ := prompt(scanner, "Confirm password: ")
			if err := cb.auth.Register(ctx, username, password, confirm); err != nil {
				fmt.Println(userFacing(err))
				cb.logger.Warn("registration failed", "username", username, "error", err)
				continue
			}
			fmt.Println("Registration successful! Please login.")

		case "/quit", "/exit", "quit", "exit":
			return session.Session{}, errors.New("aborted")

		default:
			fmt.Println("Please type 'login' or 'register'.")
		}
	}
}

// chatLoop reads user input and relays it until quit or logout.
func (cb *ChatBot) chatLoop(ctx context.Context, scanner *bufio.Scanner, relay *chat.Relay, sess session.Session) action {
	for {
		fmt.Printf("%s: ", sess.Username)
		if !scanner.Scan() {
			return actionQuit
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			act, err := cb.handleCommand(ctx, input, relay)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				cb.logger.Error("command error", "error", err)
			}
			if act != actionNone {
				return act
			}
			continue
		}

		botMsg := relay.Send(ctx, input)
		if botMsg == nil {
			continue
		}

		if banner := relay.TakeBanner(); banner != "" {
			fmt.Printf("[!] %s\n", banner)
		}

		fmt.Printf("Bot: %s\n", botMsg.Text)
		if cards := render.Products(botMsg.Products); cards != "" {
			fmt.Println(cards)
		}
		fmt.Println()
	}
}

// handleCommand handles slash commands
func (cb *ChatBot) handleCommand(ctx context.Context, cmd string, relay *chat.Relay) (action, error) {
	parts := strings.Fields(cmd)

	switch parts[0] {
	case "/quit", "/exit":
		return actionQuit, nil

	case "/logout":
		fmt.Println("You have been logged out.")
		if err := cb.auth.Logout(); err != nil {
			return actionNone, err
		}
		return actionLogout, nil

	case "/reset":
		relay.Reset()
		fmt.Println("Bot:", chat.ResetGreeting)
		return actionNone, nil

	case "/products":
		query := strings.TrimSpace(strings.TrimPrefix(cmd, "/products"))
		products, err := cb.api.Products(ctx, api.ProductQuery{Search: query})
		if err != nil {
			return actionNone, err
		}
		if cards := render.Products(products); cards != "" {
			fmt.Println(cards)
		} else {
			fmt.Println("No products found.")
		}
		return actionNone, nil

	case "/help":
		fmt.Println("Available commands:")
		fmt.Println("  /quit, /exit        - Exit")
		fmt.Println("  /logout             - Log out and forget the saved session")
		fmt.Println("  /reset              - Clear the chat window")
		fmt.Println("  /products [query]   - Browse the catalog without the assistant")
		fmt.Println("  /help               - Show this help message")
		return actionNone, nil

	default:
		fmt.Printf("Unknown command: %s\n", parts[0])
		return actionNone, nil
	}
}

// printTranscript prints the restored conversation.
func (cb *ChatBot) printTranscript(t *chat.Transcript) {
	for _, msg := range t.Messages() {
		who := "Bot"
		if msg.Sender == chat.SenderUser {
			who = "You"
		}
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04"), who, msg.Text)
	}
	fmt.Println()
}

// userFacing converts an auth error into the line shown at the prompt.
func userFacing(err error) string {
	var valErr *api.ValidationError
	var authErr *api.AuthError
	var incErr *api.IncompleteResponseError
	var netErr *api.NetworkError

	switch {
	case errors.As(err, &valErr):
		return valErr.Reason
	case errors.As(err, &authErr):
		if authErr.Message != "" {
			return authErr.Message
		}
		return "Login failed."
	case errors.As(err, &incErr):
		return "The server response was incomplete. Please try again."
	case errors.As(err, &netErr):
		return "Error connecting to server."
	default:
		return err.Error()
	}
}

func prompt(scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}
