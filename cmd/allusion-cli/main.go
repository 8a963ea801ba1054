package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"allusion/internal/scan"
	"allusion/internal/service"
	"allusion/internal/tagging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dbPathFlag string
	tagDB      *tagging.TagDB
	svc        *service.Service
)

// NewRootCmd creates the root command. getServiceAndDB initializes the
// service and tag database; tests inject their own constructor.
func NewRootCmd(getServiceAndDB func(dbPath string, logger tagging.LoggerFunc) (*service.Service, *tagging.TagDB, error)) *cobra.Command {
	log := logrus.New()

	rootCmd := &cobra.Command{
		Use:   "allusion-cli",
		Short: "Allusion CLI - manage item tags",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			svc, tagDB, err = getServiceAndDB(dbPathFlag, func(msg string) { log.Info(msg) })
			if err != nil {
				return fmt.Errorf("initializing service: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if tagDB != nil {
				tagDB.Close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "dbpath", "", "path to the tag database file")

	addCmd := &cobra.Command{
		Use:   "add [item] [tag...]",
		Short: "Add one or more tags to an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			for _, tag := range args[1:] {
				if err := svc.TagItem(itemPath, []string{tag}); err != nil {
					return err
				}
				cmd.Printf("Added tag '%s' to %s\n", tag, itemPath)
			}
			return nil
		},
	}
	rootCmd.AddCommand(addCmd)

	removeCmd := &cobra.Command{
		Use:   "remove [item] [tag...]",
		Short: "Remove one or more tags from an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			for _, tag := range args[1:] {
				if err := svc.UntagItem(itemPath, []string{tag}); err != nil {
					return err
				}
				cmd.Printf("Removed tag '%s' from %s\n", tag, itemPath)
			}
			return nil
		},
	}
	rootCmd.AddCommand(removeCmd)

	listCmd := &cobra.Command{
		Use:   "list [item]",
		Short: "List tags of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			tags, err := svc.TagsForItem(itemPath)
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				cmd.Printf("No tags found for %s\n", itemPath)
				return nil
			}
			cmd.Printf("Tags for %s: %s\n", itemPath, strings.Join(tags, ", "))
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	findByTagCmd := &cobra.Command{
		Use:   "find-by-tag [tag]",
		Short: "List items carrying a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := svc.ItemsForTag(args[0])
			if err != nil {
				return err
			}
			if len(items) == 0 {
				cmd.Printf("No items found with tag '%s'\n", args[0])
				return nil
			}
			cmd.Printf("Items with tag '%s':\n", args[0])
			for _, item := range items {
				cmd.Println(item)
			}
			return nil
		},
	}
	rootCmd.AddCommand(findByTagCmd)

	listAllTagsCmd := &cobra.Command{
		Use:   "list-all-tags",
		Short: "List every tag with its item count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := svc.AllTags()
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				cmd.Println("No tags found in the database.")
				return nil
			}
			cmd.Println("All tags in database:")
			for _, tag := range tags {
				cmd.Printf("%s (%d)\n", tag.Name, tag.Count)
			}
			return nil
		},
	}
	rootCmd.AddCommand(listAllTagsCmd)

	renameTagCmd := &cobra.Command{
		Use:   "rename-tag [old] [new]",
		Short: "Rename a tag across all items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return svc.RenameTag(args[0], args[1])
		},
	}
	rootCmd.AddCommand(renameTagCmd)

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Drop tags of missing files and orphaned tag keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, tags, err := svc.CleanDatabase()
			if err != nil {
				return err
			}
			cmd.Printf("Cleaned %d items and %d tags.\n", items, tags)
			return nil
		},
	}
	rootCmd.AddCommand(cleanCmd)

	scanCmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "List viewable files under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := svc.ScanLibrary(args[0], nil)
			if err != nil {
				return err
			}
			for _, item := range list.Items() {
				cmd.Printf("%s (%s)\n", item.Path, item.Kind)
			}
			return nil
		},
	}
	rootCmd.AddCommand(scanCmd)

	return rootCmd
}

// defaultServiceAndDB opens the real database and scanner.
func defaultServiceAndDB(dbPath string, logger tagging.LoggerFunc) (*service.Service, *tagging.TagDB, error) {
	if dbPath == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("locating config dir: %w", err)
		}
		dir := filepath.Join(configDir, "allusion")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("creating config dir %s: %w", dir, err)
		}
		dbPath = filepath.Join(dir, "tags.db")
	}
	tdb, err := tagging.NewTagDB(dbPath, logger)
	if err != nil {
		return nil, nil, err
	}
	return service.New(tdb, scan.RunWithOptions, nil), tdb, nil
}

var rootCmd = NewRootCmd(defaultServiceAndDB)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
