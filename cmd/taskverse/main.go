// Command taskverse is the terminal dashboard for the task API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskverse/internal/client"
	"taskverse/internal/tui"
)

func main() {
	server := flag.String("server", envOr("TASKVERSE_SERVER", "http://localhost:8080"), "task API base URL")
	token := flag.String("token", os.Getenv("TASKVERSE_TOKEN"), "bearer token (optional)")
	email := flag.String("email", "", "sign in with this email")
	password := flag.String("password", "", "password for -email")
	logPath := flag.String("log", "", "write diagnostics to this file")
	flag.Parse()

	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "taskverse")
		if err != nil {
			fmt.Fprintln(os.Stderr, "log:", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	api := client.New(*server, client.WithToken(*token))
	if *email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		sess, err := api.Login(ctx, *email, *password)
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, "login:", err)
			os.Exit(1)
		}
		log.Printf("[tui] signed in as %s", sess.User.Email)
	}

	p := tea.NewProgram(tui.New(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
