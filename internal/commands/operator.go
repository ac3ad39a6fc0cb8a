package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"temp_monitor/internal/repository"
	"temp_monitor/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage operators allowed to change settings over HTTP",
}

var operatorAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an operator; the password is read from the terminal or stdin",
	Args:  cobra.ExactArgs(1),
	RunE:  runOperatorAdd,
}

func init() {
	operatorCmd.AddCommand(operatorAddCmd)
	rootCmd.AddCommand(operatorCmd)
}

func runOperatorAdd(cmd *cobra.Command, args []string) error {
	log := newLogger()
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	sqlDB, err := openDB(log)
	if err != nil {
		return fmt.Errorf("failed to init sqlite: %w", err)
	}
	defer sqlDB.Close()

	auth := service.NewAuthService(repository.NewOperatorRepository(sqlDB), service.AuthConfig{
		SigningKey: viper.GetString("auth.signing_key"),
	})
	id, err := auth.SignUp(args[0], password)
	if err != nil {
		return err
	}
	log.Infow("operator_created", "id", id, "username", args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "operator %q created (id %d)\n", args[0], id)
	return nil
}

// readPassword prompts without echo on a terminal and otherwise reads the
// first line of the command's input.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
