package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/users"
)

// CreateUserCommand creates an account from the command line, for
// bootstrapping a deployment where /register is not reachable.
type CreateUserCommand struct {
	Username     string
	Email        string
	DatabasePath string

	in  io.Reader
	out io.Writer
}

// NewCreateUserCommand creates a new CreateUserCommand reading from stdin.
func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{in: os.Stdin, out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	envDB := os.Getenv("DATABASE_PATH")
	if envDB == "" {
		envDB = config.DefaultDatabasePath
	}

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Optional email address")
	fs.StringVar(&cmd.DatabasePath, "db", envDB, "Path to the SQLite database (or set DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username NAME [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account. The password is read from the terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(cmd.Username) == "" {
		return fmt.Errorf("username required: use -username flag")
	}

	return nil
}

// Run prompts for the password and stores the account.
func (cmd *CreateUserCommand) Run() error {
	password, confirm, err := cmd.readPasswords()
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	user, err := service.Register(cmd.Username, cmd.Email, password, confirm)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.out, "Created user %q (id %d)\n", user.Username, user.ID)
	return nil
}

// readPasswords reads the password twice. A terminal gets hidden prompts,
// anything else is read line by line.
func (cmd *CreateUserCommand) readPasswords() (string, string, error) {
	if f, ok := cmd.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		fmt.Fprint(cmd.out, "Password: ")
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.out)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprint(cmd.out, "Confirm password: ")
		confirm, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.out)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), string(confirm), nil
	}

	scanner := bufio.NewScanner(cmd.in)
	lines := make([]string, 0, 2)
	for len(lines) < 2 && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(lines) < 2 {
		return "", "", fmt.Errorf("expected password and confirmation on separate lines")
	}
	return lines[0], lines[1], nil
}
