package serve

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdUtil "github.com/shelfview/shelfview/cmd/util"
	"github.com/shelfview/shelfview/devserver"
	"github.com/shelfview/shelfview/lib/logging"
)

var (
	logger = logging.CreateLogger("cmd/serve")

	ServeCmd = &cobra.Command{
		Use:     "serve",
		Short:   "Start the local fixture backend",
		Long:    `Start the local fixture backend with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is SHELFVIEW_<flag> (e.g. SHELFVIEW_LISTEN=:3001)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "listen"
	ServeCmd.PersistentFlags().String(key, "localhost:3001", cmdUtil.WrapString("The address on which the fixture backend will listen"))

	key = "token-secret"
	ServeCmd.PersistentFlags().String(key, "shelfview-dev", cmdUtil.WrapString("The secret used to sign issued bearer tokens. Change it whenever the backend is reachable by others"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	level, err := logging.ParseLogLevel(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	return nil
}

// run starts the fixture backend
func run(_ *cobra.Command, _ []string) error {
	server := devserver.New(viper.GetString("token-secret"))
	return server.ListenAndServe(viper.GetString("listen"))
}

// initConfig reads in ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("shelfview")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
