package browse

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shelfview/shelfview/cmd/util"
	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/view"
)

// --------------------------------------------------------------------------
// Viewing Commands
// --------------------------------------------------------------------------

var (
	booksCmd = &cobra.Command{
		Use:   "books",
		Short: "List books joined with their authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if author, _ := cmd.Flags().GetString("author"); author != "" {
				controller.SelectAuthor(author)
			}
			applyFilters(cmd, "title", "author", "description", "book_type", "year", "available")
			applySort(cmd)

			if author, ok := controller.SelectedAuthor(); ok {
				fmt.Printf("books by %s:\n", author.FullName())
			}
			printRows(controller.Headers(), controller.Rows())
			return nil
		},
	}
	authorsCmd = &cobra.Command{
		Use:   "authors",
		Short: "List authors with their book counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller.SetCategory(view.CategoryAuthors)
			applyFilters(cmd, "name", "biography", "books")
			applySort(cmd)

			printRows(controller.Headers(), controller.Rows())
			return nil
		},
	}
	circulationCmd = &cobra.Command{
		Use:   "circulation",
		Short: "List reservations and borrowings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := controller.Circulation()
			if err != nil {
				return err
			}
			printRows(view.CirculationHeaders, rows)
			return nil
		},
	}
)

// --------------------------------------------------------------------------
// Circulation Commands
// --------------------------------------------------------------------------

var (
	reserveCmd = &cobra.Command{
		Use:   "reserve [bookID]",
		Short: "Reserve a book for the logged-in member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := controller.Reserve(args[0]); err != nil {
				return err
			}
			fmt.Println("reserved successfully")
			return nil
		},
	}
	borrowCmd = &cobra.Command{
		Use:   "borrow [bookID]",
		Short: "Lend a book to a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			memberID, _ := cmd.Flags().GetString("member")
			if memberID == "" {
				var err error
				if memberID, err = chooseMember(); err != nil {
					return err
				}
			}

			if err := controller.Borrow(args[0], memberID); err != nil {
				return err
			}
			fmt.Println("borrowed successfully")
			return nil
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [kind] [id]",
		Short: "Delete a book, author or reservation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := controller.DeleteRow(catalog.Kind(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}
)

// --------------------------------------------------------------------------
// Create / Edit Commands
// --------------------------------------------------------------------------

var (
	newBookCmd = &cobra.Command{
		Use:   "new-book",
		Short: "Create a book under an author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			author, _ := cmd.Flags().GetString("author")
			controller.SelectAuthor(author)

			if err := controller.StartCreate(); err != nil {
				return err
			}
			if err := applyDraftFlags(cmd, view.BookEditFields); err != nil {
				return err
			}
			if err := controller.CommitEdit(); err != nil {
				return err
			}
			fmt.Println("book created successfully")
			return nil
		},
	}
	editBookCmd = &cobra.Command{
		Use:   "edit-book [bookID]",
		Short: "Edit a book, keeping fields that are not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := controller.StartEdit(args[0]); err != nil {
				return err
			}
			if err := applyDraftFlags(cmd, view.BookEditFields); err != nil {
				return err
			}
			if err := controller.CommitEdit(); err != nil {
				return err
			}
			fmt.Println("book updated successfully")
			return nil
		},
	}
	newAuthorCmd = &cobra.Command{
		Use:   "new-author",
		Short: "Create an author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller.SetCategory(view.CategoryAuthors)

			if err := controller.StartCreate(); err != nil {
				return err
			}
			if err := applyDraftFlags(cmd, view.AuthorEditFields); err != nil {
				return err
			}
			if err := controller.CommitEdit(); err != nil {
				return err
			}
			fmt.Println("author created successfully")
			return nil
		},
	}
	editAuthorCmd = &cobra.Command{
		Use:   "edit-author [authorID]",
		Short: "Edit an author, keeping fields that are not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller.SetCategory(view.CategoryAuthors)

			if err := controller.StartEdit(args[0]); err != nil {
				return err
			}
			if err := applyDraftFlags(cmd, view.AuthorEditFields); err != nil {
				return err
			}
			if err := controller.CommitEdit(); err != nil {
				return err
			}
			fmt.Println("author updated successfully")
			return nil
		},
	}
)

func init() {
	// book view flags
	booksCmd.Flags().String("author", "", util.WrapString("Scope the list to one author id"))
	for _, column := range []string{"title", "author", "description", "book_type", "year", "available"} {
		booksCmd.Flags().String("filter-"+column, "", util.WrapString("Filter the "+column+" column"))
	}
	booksCmd.Flags().String("sort", "", util.WrapString("Column to sort by (title, author, type, year, copies)"))
	booksCmd.Flags().Bool("desc", false, util.WrapString("Sort descending instead of ascending"))

	// author view flags
	for _, column := range []string{"name", "biography", "books"} {
		authorsCmd.Flags().String("filter-"+column, "", util.WrapString("Filter the "+column+" column"))
	}
	authorsCmd.Flags().String("sort", "", util.WrapString("Column to sort by (name, books)"))
	authorsCmd.Flags().Bool("desc", false, util.WrapString("Sort descending instead of ascending"))

	// circulation flags
	borrowCmd.Flags().String("member", "", util.WrapString("Member id to lend to (interactive choice if omitted)"))

	// edit field flags
	newBookCmd.Flags().String("author", "", util.WrapString("Author id the new book belongs to"))
	for _, cmd := range []*cobra.Command{newBookCmd, editBookCmd} {
		for _, field := range view.BookEditFields {
			cmd.Flags().String(field, "", util.WrapString("Value for the "+field+" field"))
		}
	}
	for _, cmd := range []*cobra.Command{newAuthorCmd, editAuthorCmd} {
		for _, field := range view.AuthorEditFields {
			cmd.Flags().String(field, "", util.WrapString("Value for the "+field+" field"))
		}
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// applyFilters forwards every given --filter-* flag to the controller.
func applyFilters(cmd *cobra.Command, columns ...string) {
	for _, column := range columns {
		if raw, _ := cmd.Flags().GetString("filter-" + column); raw != "" {
			controller.SetFilter(column, raw)
		}
	}
}

// applySort forwards the --sort/--desc flags to the controller.
func applySort(cmd *cobra.Command) {
	column, _ := cmd.Flags().GetString("sort")
	if column == "" {
		return
	}

	direction := view.Ascending
	if desc, _ := cmd.Flags().GetBool("desc"); desc {
		direction = view.Descending
	}
	controller.SetSort(column, direction)
}

// applyDraftFlags copies every flag the user set into the edit session, so
// omitted flags keep the draft's seeded values.
func applyDraftFlags(cmd *cobra.Command, fields []string) error {
	for _, field := range fields {
		if !cmd.Flags().Changed(field) {
			continue
		}
		value, _ := cmd.Flags().GetString(field)
		if err := controller.UpdateField(field, value); err != nil {
			return err
		}
	}
	return nil
}

// chooseMember lists all members and reads a selection from stdin.
func chooseMember() (string, error) {
	members, err := controller.Members()
	if err != nil {
		return "", err
	}
	if len(members) == 0 {
		return "", fmt.Errorf("no members found")
	}

	fmt.Println("lend to:")
	for _, m := range members {
		fmt.Printf("  [%s] %s <%s>\n", m.ID, m.Name, m.Email)
	}
	fmt.Print("member id: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", fmt.Errorf("no selection read")
	}
	choice := strings.TrimSpace(scanner.Text())

	for _, m := range members {
		if m.ID == choice {
			return m.ID, nil
		}
	}
	return "", fmt.Errorf("unknown member id %q", choice)
}

// printRows renders a header line and the row cells as a table.
func printRows(headers []string, rows []view.Row) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ID\t"+strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, row.ID+"\t"+strings.Join(row.Cells, "\t"))
	}
	_ = w.Flush()

	fmt.Printf("\n%d rows\n", len(rows))
}
