package util

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shelfview/shelfview/datastore"
	"github.com/shelfview/shelfview/datastore/cachestore"
	"github.com/shelfview/shelfview/datastore/httpstore"
	"github.com/shelfview/shelfview/lib/session"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupBackendFlags adds common backend connection flags to a command
func SetupBackendFlags(cmd *cobra.Command) {
	key := "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "endpoint"
	cmd.PersistentFlags().String(key, "http://localhost:3001", WrapString("The address of the catalog backend"))

	key = "retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry a request"))

	key = "session-file"
	cmd.PersistentFlags().String(key, "", WrapString("Path of the session file (defaults to the user config dir)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("shelfview")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetStoreConfig reads the backend configuration from viper
func GetStoreConfig() httpstore.Config {
	return httpstore.Config{
		Endpoint:      viper.GetString("endpoint"),
		TimeoutSecond: viper.GetInt("timeout"),
		RetryCount:    viper.GetInt("retries"),
	}
}

// GetSessionPath returns the session file location, honoring an override
// from the environment.
func GetSessionPath() (string, error) {
	if path := viper.GetString("session-file"); path != "" {
		return path, nil
	}
	return session.DefaultPath()
}

// GetSessionContext loads the saved session. An unauthenticated (empty)
// session is returned when no login was performed yet.
func GetSessionContext() (session.ISessionContext, error) {
	path, err := GetSessionPath()
	if err != nil {
		return nil, err
	}
	return session.Load(path)
}

// GetStore builds the cached HTTP store from the viper configuration.
func GetStore(sess session.ISessionContext) (datastore.IDataStore, error) {
	inner, err := httpstore.New(GetStoreConfig(), sess)
	if err != nil {
		return nil, err
	}
	return cachestore.New(inner), nil
}
