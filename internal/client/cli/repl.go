package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Search(ctx context.Context, args []string) error
	History(ctx context.Context) error
	ClearHistory(ctx context.Context) error

	Bookmarks(ctx context.Context) error
	AddBookmark(ctx context.Context) error
	RemoveBookmark(ctx context.Context, args []string) error
	DarkMode(ctx context.Context, args []string) error
	Incognito(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Reset(ctx context.Context) error

	Inbox(ctx context.Context, args []string) error
	SendMail(ctx context.Context) error
	ReadMail(ctx context.Context, args []string) error
	StarMail(ctx context.Context, args []string) error
	ArchiveMail(ctx context.Context, args []string) error

	Downloads(ctx context.Context) error
	Install(ctx context.Context, args []string) error
	DeleteDownload(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: search, bookmarks, addbookmark, rmbookmark, darkmode, incognito, " +
		"export, import, reset, register, login, exit"
	helpSignedIn = "Available commands: search, history, clearhistory, bookmarks, addbookmark, rmbookmark, " +
		"darkmode, incognito, export, import, reset, inbox, send, read, star, archive, " +
		"downloads, install, rmdownload, whoami, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the Nikbrowser CLI.
//
// It reads a line from in, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Commands that prompt read from the same reader, so in must be the App's
// own reader. The loop exits on EOF or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("nik %s> ", statusFn()))
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)

		case "s", "search":
			_ = a.Search(ctx, args)
		case "history":
			_ = a.History(ctx)
		case "clearhistory":
			_ = a.ClearHistory(ctx)

		case "b", "bookmarks":
			_ = a.Bookmarks(ctx)
		case "addbookmark":
			_ = a.AddBookmark(ctx)
		case "rmbookmark":
			_ = a.RemoveBookmark(ctx, args)
		case "darkmode":
			_ = a.DarkMode(ctx, args)
		case "incognito":
			_ = a.Incognito(ctx, args)
		case "export":
			_ = a.Export(ctx, args)
		case "import":
			_ = a.Import(ctx, args)
		case "reset":
			_ = a.Reset(ctx)

		case "inbox":
			_ = a.Inbox(ctx, args)
		case "send":
			_ = a.SendMail(ctx)
		case "read":
			_ = a.ReadMail(ctx, args)
		case "star":
			_ = a.StarMail(ctx, args)
		case "archive":
			_ = a.ArchiveMail(ctx, args)

		case "downloads":
			_ = a.Downloads(ctx)
		case "install":
			_ = a.Install(ctx, args)
		case "rmdownload":
			_ = a.DeleteDownload(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
