package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"vexrank/pkg/auth"
	"vexrank/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage RobotEvents API tokens",
	Long: `Manage stored RobotEvents API tokens securely.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variable VEXRANK_TOKEN (read-only fallback)

Never share your token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a RobotEvents API token securely",
	Long: `Store a RobotEvents API token securely in the system keychain or an
encrypted file.

You will be prompted for:
  - Profile name (if not provided; "default" is used by every command
    unless --account says otherwise)
  - The API token (hidden as you type)

To get a token:
1. Sign in at https://www.robotevents.com
2. Request API access at https://www.robotevents.com/api/v2
3. Create an access token on your account's API Keys page`,
	Example: `  # Interactive login storing the default profile
  vexrank auth login

  # Store a named profile
  vexrank auth login work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored token",
	Long: `Remove a stored RobotEvents API token.

If no profile is provided, you will be shown a list of stored profiles to
choose from. You can also remove all profiles at once.`,
	Example: `  # Interactive logout
  vexrank auth logout

  # Remove a specific profile
  vexrank auth logout work`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored token profiles",
	Long:  `List all stored token profiles with masked token values.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(authListCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var profile string
	if len(args) > 0 {
		profile = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	// Show the token guide first
	auth.ShowTokenGuide()

	fmt.Print("Ready to enter your token? (Y/n): ")
	ready, _ := reader.ReadString('\n')
	if strings.ToLower(strings.TrimSpace(ready)) == "n" {
		fmt.Println("\nRun 'vexrank auth login' when you're ready.")
		return
	}

	fmt.Println()

	if profile == "" {
		fmt.Printf("Profile name (press Enter for %q): ", auth.DefaultProfile)
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read profile name", err.Error())
			os.Exit(1)
		}
		profile = strings.TrimSpace(input)
		if profile == "" {
			profile = auth.DefaultProfile
		}
	}

	// Check if the profile already exists
	if existing, _ := manager.Retrieve(profile); existing != nil {
		fmt.Printf("\n⚠️  Profile '%s' already exists. Update the token? (y/N): ", profile)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\n🔐 Enter your API token (it will be hidden as you type):")
	fmt.Println()

	// Get the token with validation
	var token string
	for {
		fmt.Printf("API token: ")
		token, err = readToken()
		if err != nil {
			ui.PrintError("Failed to read token", err.Error())
			os.Exit(1)
		}

		// RobotEvents issues JWT bearer tokens
		if len(token) < 20 || strings.Count(token, ".") != 2 {
			fmt.Println("\n❌ That doesn't look like a valid RobotEvents token.")
			fmt.Println("   It should be a long JWT string with two dots.")
			fmt.Println("   Example: eyJ0eXAiOiJKV1QiLCJhbGc...")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	// Show what we're about to do
	fmt.Println("\n📋 Summary:")
	fmt.Printf("   Profile: %s\n", profile)
	fmt.Printf("   Token: %s...%s (hidden)\n", token[:6], token[len(token)-4:])

	account := &auth.Account{
		Name:  profile,
		Token: token,
	}

	fmt.Println("\n💾 Storing token securely...")
	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store token", err.Error())
		os.Exit(1)
	}

	// First profile becomes the default automatically
	accounts, _ := manager.List()
	if len(accounts) == 1 {
		fmt.Printf("✅ '%s' is now the default profile\n", profile)
	}

	fmt.Println("\n🎉 Token stored successfully!")
	ui.PrintSuccess(fmt.Sprintf("Profile saved: %s", profile))

	// Show where the token is stored
	fmt.Println("\n🔒 Security Information:")
	fmt.Println("   Your token is encrypted and stored in:")
	if auth.IsKeyringAvailable() {
		fmt.Println("   • System keychain (primary)")
	}
	fmt.Println("   • Encrypted file (backup)")

	// Show how to use
	fmt.Println("\n📖 Quick Start Guide:")
	fmt.Println("   Rate every season of VRC:")
	fmt.Println("   $ vexrank run")
	fmt.Println("\n   Rate specific seasons:")
	fmt.Println("   $ vexrank run --seasons 181,190")
	fmt.Println("\n   Use this profile explicitly:")
	fmt.Printf("   $ vexrank run --account %s\n", profile)
	fmt.Println("\n   Show more options:")
	fmt.Println("   $ vexrank run --help")
	fmt.Println("\n⚠️  Never share your token or config files!")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if len(args) == 0 {
		// List profiles and ask which to remove
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			ui.PrintError("No stored profiles found")
			return
		}

		if len(accounts) == 1 {
			// Only one profile, confirm deletion
			account := accounts[0]
			reader := bufio.NewReader(os.Stdin)
			fmt.Printf("Remove profile '%s'? (y/N): ", account.Name)
			input, _ := reader.ReadString('\n')
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
				return
			}

			if err := manager.Delete(account.Name); err != nil {
				ui.PrintError("Failed to remove profile", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Profile removed: " + account.Name)
			return
		}

		// Multiple profiles, show menu
		fmt.Println("Select profile to remove:")
		for i, account := range accounts {
			fmt.Printf("  %d. %s\n", i+1, account.Name)
		}
		fmt.Printf("  %d. Remove all profiles\n", len(accounts)+1)
		fmt.Printf("  0. Cancel\n\n")

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Choice: ")
		input, _ := reader.ReadString('\n')

		var choice int
		fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

		if choice == 0 {
			return
		} else if choice == len(accounts)+1 {
			// Remove all
			fmt.Print("Remove ALL profiles? This cannot be undone! (yes/N): ")
			confirm, _ := reader.ReadString('\n')
			if strings.TrimSpace(confirm) != "yes" {
				return
			}

			if err := manager.DeleteAll(); err != nil {
				ui.PrintError("Failed to remove all profiles", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("All profiles removed")
			return
		} else if choice > 0 && choice <= len(accounts) {
			account := accounts[choice-1]
			if err := manager.Delete(account.Name); err != nil {
				ui.PrintError("Failed to remove profile", err.Error())
				os.Exit(1)
			}
			ui.PrintSuccess("Profile removed: " + account.Name)
			return
		} else {
			ui.PrintError("Invalid choice")
			os.Exit(1)
		}
	}

	// Profile provided as argument
	profile := args[0]
	if err := manager.Delete(profile); err != nil {
		ui.PrintError("Failed to remove profile", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Profile removed: " + profile)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list profiles", err.Error())
		os.Exit(1)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored profiles", "Use 'vexrank auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored Profiles")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Profile: %s\n", i+1, sanitized.Name)
		fmt.Printf("   Token: %s\n", sanitized.Token)
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readToken reads a token from stdin without echoing
func readToken() (string, error) {
	// Try to read without echo
	if term.IsTerminal(int(syscall.Stdin)) {
		token, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // New line after the hidden input
		if err == nil {
			return strings.TrimSpace(string(token)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
