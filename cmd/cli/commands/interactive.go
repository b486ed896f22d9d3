package commands

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command. It runs a desk session:
// one database connection and one directory snapshot serve every command
// entered until the operator leaves.
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start a desk session (connect once, run multiple commands)",
		Long: `Start a desk session against one database connection. Registrations,
check marks, referrals, and bids can be entered back to back without
reconnecting. The session runs until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\nDesk session started.")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			siblings := sessionCommands(cmd.Parent())
			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("hall> ")
				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				parts, err := splitCommandLine(line)
				if err != nil {
					fmt.Printf("✗ %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}

				switch parts[0] {
				case "exit", "quit":
					fmt.Println("Session closed.")
					return nil
				case "help":
					printSessionHelp(siblings)
					continue
				}

				target, ok := siblings[parts[0]]
				if !ok {
					fmt.Printf("✗ Unknown command: %s (type 'help' for available commands)\n\n", parts[0])
					continue
				}
				if err := runSessionCommand(target, parts[1:]); err != nil {
					fmt.Printf("✗ %v\n\n", err)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}
			return nil
		},
	}
}

// sessionCommands collects the sibling commands runnable inside a session.
func sessionCommands(root *cobra.Command) map[string]*cobra.Command {
	cmds := make(map[string]*cobra.Command)
	for _, sub := range root.Commands() {
		switch sub.Name() {
		case "interactive", "completion", "help":
			continue
		}
		cmds[sub.Name()] = sub
	}
	return cmds
}

// runSessionCommand invokes a sibling command's RunE directly, skipping the
// root Execute flow so PersistentPreRunE does not reinitialise the app.
func runSessionCommand(cmd *cobra.Command, args []string) error {
	// Flags keep state between invocations; reset them first.
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		flag.Value.Set(flag.DefValue)
	})

	if err := cmd.ParseFlags(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	positional := cmd.Flags().Args()
	if err := cmd.Args(cmd, positional); err != nil {
		return err
	}

	if cmd.RunE != nil {
		return cmd.RunE(cmd, positional)
	}
	if cmd.Run != nil {
		cmd.Run(cmd, positional)
	}
	return nil
}

func printSessionHelp(cmds map[string]*cobra.Command) {
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nAvailable commands:")
	for _, name := range names {
		fmt.Printf("  %-34s %s\n", cmds[name].Use, cmds[name].Short)
	}
	fmt.Println("\n  help                               Show this help message")
	fmt.Println("  exit, quit                         End the desk session")
}

// splitCommandLine tokenises a line, honouring single and double quotes so
// multi-word reasons and names survive as one argument.
func splitCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var quote rune

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", quote)
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args, nil
}
