package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"gmemo/internal/auth"
	"gmemo/internal/config"
	"gmemo/internal/store"
	"gmemo/internal/validation"
)

var errUsage = errors.New("usage")

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "hash" {
		if err := hashLine(args[1:], termPrompter{}, os.Stdout); err != nil {
			exit(err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		exit(err)
	}
	if cfg.DBDriver == store.DriverSQLite {
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			exit(fmt.Errorf("create data dir: %w", err))
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	backend, err := store.Open(ctx, store.Config{
		Driver:      cfg.DBDriver,
		SQLitePath:  cfg.SQLitePath(),
		PostgresDSN: cfg.DatabaseDSN,
		BusyTimeout: cfg.BusyTimeout,
		LockTimeout: cfg.LockTimeout,
	})
	if err != nil {
		exit(err)
	}
	defer backend.Close()

	cli := &cli{users: backend, accounts: auth.NewService(backend), prompt: termPrompter{}, out: os.Stdout, errOut: os.Stderr}
	if err := cli.run(ctx, args); err != nil {
		backend.Close()
		exit(err)
	}
}

func exit(err error) {
	if errors.Is(err, errUsage) {
		usage()
		os.Exit(2)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: memo-user [list | add <username> [email] | passwd <username> | remove <username> | hash <username>]")
}

// prompter asks the operator for secrets and confirmations.
type prompter interface {
	Password(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
}

type cli struct {
	users    auth.UserStore
	accounts *auth.Service
	prompt   prompter
	out      io.Writer
	errOut   io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		return c.list(ctx)
	}
	switch args[0] {
	case "add":
		if len(args) < 2 || len(args) > 3 {
			return errUsage
		}
		email := ""
		if len(args) == 3 {
			email = args[2]
		}
		return c.add(ctx, args[1], email)
	case "passwd":
		if len(args) != 2 {
			return errUsage
		}
		return c.passwd(ctx, args[1])
	case "remove":
		if len(args) != 2 {
			return errUsage
		}
		return c.remove(ctx, args[1])
	default:
		return errUsage
	}
}

func (c *cli) list(ctx context.Context) error {
	users, err := c.users.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(c.out, "no users")
		return nil
	}
	for _, u := range users {
		last := "never"
		if u.LastLogin != nil {
			last = u.LastLogin.Format(time.RFC3339)
		}
		fmt.Fprintf(c.out, "%s\t%s\tjoined %s\tlast login %s\n", u.Username, u.Email, u.DateJoined.Format("2006-01-02"), last)
	}
	return nil
}

func (c *cli) add(ctx context.Context, username, email string) error {
	password, err := readNewPassword(c.prompt)
	if err != nil {
		return err
	}
	u, err := c.accounts.Register(ctx, auth.RegisterInput{
		Username:  username,
		Email:     email,
		Password1: password,
		Password2: password,
	})
	var verr *validation.Errors
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid user: %s", verr.Error())
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.errOut, "created %s (id %d)\n", u.Username, u.ID)
	return nil
}

func (c *cli) passwd(ctx context.Context, username string) error {
	if _, err := c.users.UserByName(ctx, username); err != nil {
		return err
	}
	password, err := readNewPassword(c.prompt)
	if err != nil {
		return err
	}
	if err := c.accounts.ChangePassword(ctx, username, password); err != nil {
		return err
	}
	fmt.Fprintf(c.errOut, "updated password for %s\n", username)
	return nil
}

func (c *cli) remove(ctx context.Context, username string) error {
	if _, err := c.users.UserByName(ctx, username); err != nil {
		return err
	}
	ok, err := c.prompt.Confirm(fmt.Sprintf("Remove user %q and all of their memos? [y/N]: ", username))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.errOut, "no changes made")
		return nil
	}
	if err := c.users.DeleteUser(ctx, username); err != nil {
		return err
	}
	fmt.Fprintf(c.errOut, "removed %s\n", username)
	return nil
}

// hashLine prints a `user:hash` line for the auth seed file.
func hashLine(args []string, p prompter, out io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	user := strings.TrimSpace(args[0])
	if user == "" || strings.Contains(user, ":") {
		return errors.New("username must be non-empty and must not contain ':'")
	}
	password, err := readNewPassword(p)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s:%s\n", user, hash)
	return nil
}

func readNewPassword(p prompter) (string, error) {
	password, err := p.Password("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := p.Password("Confirm: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	return password, nil
}

type termPrompter struct{}

func (termPrompter) Password(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(pass)), nil
}

func (termPrompter) Confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
