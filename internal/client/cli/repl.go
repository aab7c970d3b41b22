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
	Onboard(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error

	AddReminder(ctx context.Context) error
	ListReminders(ctx context.Context) error
	ShowReminder(ctx context.Context, id string) error
	EditReminder(ctx context.Context, id string) error
	ActivateReminder(ctx context.Context, id string) error
	DeactivateReminder(ctx context.Context, id string) error
	DeleteReminder(ctx context.Context, id string) error
	TakeDose(ctx context.Context, id string) error
	Today(ctx context.Context) error

	ListInventory(ctx context.Context, filter string) error
	AddInventory(ctx context.Context) error
	EditInventory(ctx context.Context, id string) error
	DeleteInventory(ctx context.Context, id string) error
	AdjustInventory(ctx context.Context, id, delta string) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: (l)ist, show <id>, add, edit <id>, activate <id>, " +
		"deactivate <id>, delete <id>, take <id>, today, inv [low_stock|expired|expiring_soon], " +
		"invadd, invedit <id>, invdel <id>, invadjust <id> <delta>, profile, editprofile, " +
		"passwd, onboard, logout, exit"
)

// runREPL reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the user
// types "exit" or "quit".
//
// Commands that act on a single item take the id as the first argument;
// missing arguments produce a usage line instead of a call. Any errors
// returned by command handlers are ignored here; handlers report their own
// errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("medtrack %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn(helpLoggedOut)
			case "register":
				_ = a.Register(ctx)
			case "login":
				_ = a.Login(ctx)
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpLoggedIn)

		case "l", "list":
			_ = a.ListReminders(ctx)

		case "show":
			if len(args) == 0 {
				printlnFn("Usage: show <id>")
				continue
			}
			_ = a.ShowReminder(ctx, args[0])

		case "add":
			_ = a.AddReminder(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.EditReminder(ctx, args[0])

		case "activate":
			if len(args) == 0 {
				printlnFn("Usage: activate <id>")
				continue
			}
			_ = a.ActivateReminder(ctx, args[0])

		case "deactivate":
			if len(args) == 0 {
				printlnFn("Usage: deactivate <id>")
				continue
			}
			_ = a.DeactivateReminder(ctx, args[0])

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			_ = a.DeleteReminder(ctx, args[0])

		case "take":
			if len(args) == 0 {
				printlnFn("Usage: take <id>")
				continue
			}
			_ = a.TakeDose(ctx, args[0])

		case "today":
			_ = a.Today(ctx)

		case "inv":
			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}
			_ = a.ListInventory(ctx, filter)

		case "invadd":
			_ = a.AddInventory(ctx)

		case "invedit":
			if len(args) == 0 {
				printlnFn("Usage: invedit <id>")
				continue
			}
			_ = a.EditInventory(ctx, args[0])

		case "invdel":
			if len(args) == 0 {
				printlnFn("Usage: invdel <id>")
				continue
			}
			_ = a.DeleteInventory(ctx, args[0])

		case "invadjust":
			if len(args) < 2 {
				printlnFn("Usage: invadjust <id> <delta>")
				continue
			}
			_ = a.AdjustInventory(ctx, args[0], args[1])

		case "profile":
			_ = a.Profile(ctx)

		case "editprofile":
			_ = a.EditProfile(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "onboard":
			_ = a.Onboard(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
