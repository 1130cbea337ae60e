package browse

import (
	"github.com/spf13/cobra"

	"github.com/shelfview/shelfview/cmd/util"
	"github.com/shelfview/shelfview/lib/view"
)

var (
	controller *view.Controller

	// BrowseCommands represents the browse command group
	BrowseCommands = &cobra.Command{
		Use:               "browse",
		Short:             "Browse and manage the catalog",
		PersistentPreRunE: setupController,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common backend flags to the browse command
	util.SetupBackendFlags(BrowseCommands)

	// Add subcommands
	BrowseCommands.AddCommand(booksCmd)
	BrowseCommands.AddCommand(authorsCmd)
	BrowseCommands.AddCommand(circulationCmd)
	BrowseCommands.AddCommand(reserveCmd)
	BrowseCommands.AddCommand(borrowCmd)
	BrowseCommands.AddCommand(deleteCmd)
	BrowseCommands.AddCommand(newBookCmd)
	BrowseCommands.AddCommand(editBookCmd)
	BrowseCommands.AddCommand(newAuthorCmd)
	BrowseCommands.AddCommand(editAuthorCmd)
	BrowseCommands.AddCommand(perfCmd)
}

// setupController builds the view controller over the cached HTTP store and
// performs the initial fetch.
func setupController(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	sess, err := util.GetSessionContext()
	if err != nil {
		return err
	}

	store, err := util.GetStore(sess)
	if err != nil {
		return err
	}

	controller = view.NewController(store, sess)
	return controller.Load()
}
