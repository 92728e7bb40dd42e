package main

import (
	"fmt"
	"os"
	"syscall"

	"edulite-cli/internal/app"
	"edulite-cli/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "ShowList", "Present").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassword prompts for a secret without echoing it.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(data), nil
}

var rootCmd = &cobra.Command{
	Use:   "edulite",
	Short: "EduLite slideshow client",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init BASE_URL",
	Short: "Initialize configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(args[0], defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Server:   %s\n", cfg.BaseURL)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Server:   %s\n", cfg.BaseURL)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		for _, target := range cfg.Exports {
			fmt.Printf("Export:   %s (%s)\n", target.Name, target.Type)
		}
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage export encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair for encrypted exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("KeysInit")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassword("Passphrase for the private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupEncryption(passphrase); err != nil {
			return err
		}
		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// login / logout commands
var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Log in and store the session tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Login")
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		if err := a.Login(cmd.Context(), args[0], password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Logged in as %s\n", args[0])
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Whoami")
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.LoggedIn() {
			return fmt.Errorf("not logged in")
		}
		profile, err := a.Profile(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(profile.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Logout")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// prefs command
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "View or change presentation preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Preferences")
		if err != nil {
			return err
		}
		defer a.Close()

		prefs, err := a.Preferences()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("auto-hide-toolbar") {
			prefs.AutoHideToolbar, _ = cmd.Flags().GetBool("auto-hide-toolbar")
		}
		if cmd.Flags().Changed("auto-hide-notes") {
			prefs.AutoHideNotes, _ = cmd.Flags().GetBool("auto-hide-notes")
		}
		if cmd.Flags().Changed("auto-hide-toolbar") || cmd.Flags().Changed("auto-hide-notes") {
			if err := a.SetPreferences(prefs); err != nil {
				return err
			}
		}

		fmt.Printf("auto-hide-toolbar: %v\n", prefs.AutoHideToolbar)
		fmt.Printf("auto-hide-notes:   %v\n", prefs.AutoHideNotes)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.Flags().Bool("auto-hide-toolbar", false, "Hide the toolbar while presenting")
	prefsCmd.Flags().Bool("auto-hide-notes", false, "Hide speaker notes while presenting")
}
