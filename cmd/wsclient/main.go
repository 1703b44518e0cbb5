package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"
)

var (
	flagAddr    string
	flagSend    string
	flagTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "wsclient",
	Short: "Interactive matchwire client",
	Long: `wsclient connects to a matchwire server, waits to be paired and prints the
assigned role. Lines typed on stdin are sent to the opponent as text frames and
everything the opponent sends is printed.

Examples:
  wsclient
  wsclient --addr ws://game.example.com/ws
  wsclient --send e4 --timeout 30s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSend != "" {
			return smoke(cmd.Context())
		}
		return interactive(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagAddr, "addr", "ws://localhost:8080/ws", "WebSocket address")
	rootCmd.Flags().StringVar(&flagSend, "send", "", "send a single frame after pairing, print one reply and exit")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "total timeout for --send mode")
}

func main() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "wsclient: %v\n", err)
		os.Exit(1)
	}
}

func interactive(baseCtx context.Context) error {
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, flagAddr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	fmt.Printf("Connected to %s, waiting for an opponent...\n", flagAddr)

	role, err := readRole(ctx, conn)
	if err != nil {
		return err
	}
	fmt.Printf("Matched! You play %s.\n", role)
	fmt.Println("Type moves and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func smoke(baseCtx context.Context) error {
	ctx, cancel := context.WithTimeout(baseCtx, flagTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, flagAddr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	role, err := readRole(ctx, conn)
	if err != nil {
		return err
	}
	fmt.Printf("role=%s\n", role)

	if err := conn.Write(ctx, websocket.MessageText, []byte(flagSend)); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	typ, data, err := conn.Read(ctx)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	fmt.Printf("received type=%s payload=%q\n", typ, data)
	return nil
}

// readRole blocks until the server pairs us and announces our role.
func readRole(ctx context.Context, conn *websocket.Conn) (string, error) {
	typ, data, err := conn.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("waiting for match: %w", err)
	}
	if typ != websocket.MessageText {
		return "", fmt.Errorf("unexpected %s frame before role announcement", typ)
	}
	return string(data), nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				var ce websocket.CloseError
				if errors.As(err, &ce) && ce.Reason != "" {
					fmt.Printf("connection closed: %s\n", ce.Reason)
				}
				return
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return
		}

		if typ == websocket.MessageBinary {
			fmt.Printf("opponent: <%d bytes>\n", len(data))
			continue
		}
		fmt.Printf("opponent: %s\n", data)
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
				fmt.Fprintf(os.Stderr, "send error: %v\n", err)
				return
			}
		}
	}
}
