package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"folio/internal/build"
	"folio/internal/scaffold"
	"folio/internal/server"
	"folio/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "build":
		err = build.Run(ctx, args)
	case "serve":
		err = server.Run(ctx, args)
	case "init":
		err = scaffold.Init()
	case "new":
		err = runNew(args)
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		slog.Error(command+" failed", "error", err)
		os.Exit(1)
	}
}

func runNew(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf(`usage: folio new post|book "Title" [author] [-locale en]`)
	}
	kind := args[0]
	title := args[1]
	rest := args[2:]

	locale := "en"
	var positional []string
	for i := 0; i < len(rest); i++ {
		if rest[i] == "-locale" && i+1 < len(rest) {
			locale = rest[i+1]
			i++
			continue
		}
		positional = append(positional, rest[i])
	}

	switch kind {
	case "post":
		return scaffold.NewPost(title, locale)
	case "book":
		author := ""
		if len(positional) > 0 {
			author = positional[0]
		}
		return scaffold.NewBook(title, author, locale)
	default:
		return fmt.Errorf("unknown content kind %q, want post or book", kind)
	}
}

func printUsage() {
	fmt.Println("Usage: folio <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println(`  init                       Scaffold a new site in the current directory`)
	fmt.Println(`  new post "Title"           Create a new blog post`)
	fmt.Println(`  new book "Title" [author]  Create a new book skeleton`)
	fmt.Println(`  build                      Build the static site`)
	fmt.Println(`  serve                      Build, watch and serve locally`)
	fmt.Println(`  version                    Print version information`)
	fmt.Println("\nFlags:")
	fmt.Println("  build: -config folio.yaml  -no-cache")
	fmt.Println("  serve: -host localhost  -port 8080  -config folio.yaml")
	fmt.Println(`  new:   -locale en`)
}
