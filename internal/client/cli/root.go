package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/eduplatform/internal/client/api"
)

func (a *App) getStatus() string {
	s := ""
	if a.user != nil {
		s = a.user.Email + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	s = strings.TrimSpace(s)
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the REPL until "exit" or end of input.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to eductl (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "eductl %s> ", a.getStatus())
		line, err := a.reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(a.out)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		if quit := a.execute(ctx, parts[0], parts[1:]); quit {
			return
		}
	}
}

func (a *App) execute(ctx context.Context, cmd string, args []string) bool {
	var err error

	switch cmd {
	case "help":
		a.help()
	case "register":
		err = a.Register(ctx)
	case "login":
		err = a.Login(ctx)
	case "logout":
		a.Logout()
	case "me":
		err = a.me(ctx)
	case "courses", "list":
		err = a.listCourses(ctx)
	case "course", "show":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: course <id>")
			return false
		}
		err = a.showCourse(ctx, args[0])
	case "addcourse":
		err = a.addCourse(ctx)
	case "delete":
		if len(args) != 1 {
			fmt.Fprintln(a.out, "Usage: delete <course id>")
			return false
		}
		err = a.deleteCourse(ctx, args[0])
	case "submit":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "Usage: submit <assessment id> <score>")
			return false
		}
		score, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			fmt.Fprintln(a.out, "score must be a whole number")
			return false
		}
		err = a.submit(ctx, args[0], score)
	case "upload":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "Usage: upload <course id> <file>")
			return false
		}
		err = a.upload(ctx, args[0], args[1])
	case "download":
		if len(args) < 1 || len(args) > 2 {
			fmt.Fprintln(a.out, "Usage: download <course id> [file name]")
			return false
		}
		name := args[0]
		if len(args) == 2 {
			name = args[1]
		}
		err = a.download(ctx, args[0], name)
	case "results":
		err = a.results(ctx)
	case "exit", "quit":
		fmt.Fprintln(a.out, "Bye!")
		return true
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
	}

	if err != nil {
		a.printError(err)
	}
	return false
}

func (a *App) help() {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Available commands: courses, course <id>, addcourse, delete <id>, upload <id> <file>, download <id>, submit <assessment> <score>, results, me, logout, exit")
	} else {
		fmt.Fprintln(a.out, "Available commands: register, login, courses, course <id>, download <id>, exit")
	}
}

func (a *App) printError(err error) {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "error: server unavailable")
	case errors.Is(err, api.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "error: log in first")
	case errors.Is(err, api.ErrUnauthorized) && a.isLoggedIn():
		a.api.Logout()
		a.user = nil
		fmt.Fprintln(a.out, "error: session expired, log in again")
	default:
		fmt.Fprintln(a.out, "error:", err)
	}
}
