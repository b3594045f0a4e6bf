package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/spigell/job-router/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage secrets stored in the OS keyring",
	Long: fmt.Sprintf(`Stores tokens under the %q keyring service. Point a secret at the entry
with its keyring field, for example hh-token.keyring: hh.`, secrets.KeyringService),
}

var secretSetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store a secret in the keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			value string
			err   error
		)
		if fromStdin, _ := cmd.Flags().GetBool("stdin"); fromStdin {
			value, err = readSecret(cmd.InOrStdin())
		} else {
			p := promptui.Prompt{Label: fmt.Sprintf("Secret for %s", args[0]), Mask: '*'}
			value, err = p.Run()
		}
		if err != nil {
			return fmt.Errorf("reading secret: %w", err)
		}

		if err := secrets.SetKeyring(args[0], value); err != nil {
			return fmt.Errorf("storing secret: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s/%s\n", secrets.KeyringService, args[0])
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete <account>",
	Short: "Remove a secret from the keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.DeleteKeyring(args[0]); err != nil {
			return fmt.Errorf("deleting secret: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", secrets.KeyringService, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd, secretDeleteCmd)

	secretSetCmd.Flags().Bool("stdin", false, "read the secret from the first line of stdin instead of prompting")
}

// readSecret returns the first line of r without its line ending.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
