// Package main provides the command-line client for the assistant server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/lyra/internal/api/connect"
)

var (
	app    = kingpin.New("lyracli", "Lyra voice assistant client")
	server = app.Flag("server", "Server address").Default("http://localhost:8000").String()
	token  = app.Flag("token", "API token").Envar("LYRA_API_TOKEN").String()

	// say command
	sayCmd  = app.Command("say", "Send one command")
	sayText = sayCmd.Arg("text", "Command text, e.g. play shape of you").Required().Strings()

	// greet command
	greetCmd = app.Command("greet", "Start a session and print the greeting")

	// repl command
	replCmd = app.Command("repl", "Read commands from stdin, one per line")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Create client
	client := apiconnect.NewAssistantClient(
		http.DefaultClient,
		*server,
		connect.WithInterceptors(apiconnect.WithToken(*token)),
	)

	ctx := context.Background()

	// Execute command
	switch command {
	case sayCmd.FullCommand():
		say(ctx, client, strings.Join(*sayText, " "))
	case greetCmd.FullCommand():
		greet(ctx, client)
	case replCmd.FullCommand():
		repl(ctx, client)
	}
}

func say(ctx context.Context, client *apiconnect.AssistantClient, text string) {
	reply, err := client.HandleCommand(ctx, text)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	printReply(reply)
}

func greet(ctx context.Context, client *apiconnect.AssistantClient) {
	reply, err := client.Greet(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(reply.Response)
}

func repl(ctx context.Context, client *apiconnect.AssistantClient) {
	greet(ctx, client)
	fmt.Println("Type a command and press Enter. Press Ctrl+C to exit.")

	// Handle shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nBye.")
		os.Exit(0)
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text != "" {
			reply, err := client.HandleCommand(ctx, text)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else {
				printReply(reply)
				if reply.Intent == "shut_down" {
					return
				}
			}
		}
		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil {
		fmt.Printf("Input error: %v\n", err)
	}
}

func printReply(reply *apiconnect.Reply) {
	fmt.Printf("[%s] %s\n", reply.Intent, reply.Response)
}
