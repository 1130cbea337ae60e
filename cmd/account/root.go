package account

import (
	"bytes"
	"fmt"
	"net/http"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/shelfview/shelfview/cmd/util"
	"github.com/shelfview/shelfview/lib/session"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// AccountCommands represents the account command group
	AccountCommands = &cobra.Command{
		Use:               "account",
		Short:             "Manage the login session",
		PersistentPreRunE: bindFlags,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common backend flags to the account command
	util.SetupBackendFlags(AccountCommands)

	// Add subcommands
	AccountCommands.AddCommand(loginCmd)
	AccountCommands.AddCommand(registerCmd)
	AccountCommands.AddCommand(logoutCmd)
	AccountCommands.AddCommand(whoamiCmd)

	registerCmd.Flags().String("name", "", "display name for the new member")
	registerCmd.Flags().String("email", "", "email address for the new member")
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return util.BindCommandFlags(cmd)
}

var (
	loginCmd = &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			fmt.Print("Password: ")
			password, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			state, err := login(util.GetStoreConfig().Endpoint, username, string(password))
			if err != nil {
				return err
			}

			path, err := util.GetSessionPath()
			if err != nil {
				return err
			}
			if err := session.Save(path, state); err != nil {
				return err
			}

			fmt.Printf("logged in as %s (%s)\n", username, state.Role)
			return nil
		},
	}
	registerCmd = &cobra.Command{
		Use:   "register [username]",
		Short: "Create a member account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := args[0]

			fmt.Print("Password: ")
			password, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")

			state, err := register(util.GetStoreConfig().Endpoint, username, string(password), name, email)
			if err != nil {
				return err
			}

			path, err := util.GetSessionPath()
			if err != nil {
				return err
			}
			if err := session.Save(path, state); err != nil {
				return err
			}

			fmt.Printf("registered and logged in as %s (%s)\n", username, state.Role)
			return nil
		},
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Discard the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := util.GetSessionPath()
			if err != nil {
				return err
			}
			if err := session.Clear(path); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := util.GetSessionContext()
			if err != nil {
				return err
			}
			if sess.CurrentMemberID() == "" {
				fmt.Println("not logged in")
				return nil
			}
			role := "Member"
			if sess.IsPrivilegedRole() {
				role = session.RoleLibrarian
			}
			fmt.Printf("member=%s, role=%s\n", sess.CurrentMemberID(), role)
			return nil
		},
	}
)

// login posts the credentials and returns the session to persist.
func login(endpoint, username, password string) (session.State, error) {
	return authenticate(endpoint+"/login", map[string]string{
		"username": username,
		"password": password,
	})
}

// register creates a member account and returns the session to persist.
func register(endpoint, username, password, name, email string) (session.State, error) {
	return authenticate(endpoint+"/register", map[string]string{
		"username": username,
		"password": password,
		"name":     name,
		"email":    email,
	})
}

func authenticate(url string, credentials map[string]string) (session.State, error) {
	var state session.State

	body, err := json.Marshal(credentials)
	if err != nil {
		return state, err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return state, fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusUnauthorized:
		return state, fmt.Errorf("invalid credentials")
	case http.StatusConflict:
		return state, fmt.Errorf("username already taken")
	default:
		return state, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Token    string `json:"token"`
		UserID   string `json:"user_id"`
		UserType string `json:"user_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return state, fmt.Errorf("response undecodable: %w", err)
	}

	state = session.State{
		Token:    payload.Token,
		MemberID: payload.UserID,
		Role:     payload.UserType,
	}
	return state, nil
}
