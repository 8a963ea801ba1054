// Package service is the business-logic layer between the storage packages
// and the interfaces (GUI and CLI).
package service

import (
	"errors"
	"fmt"
	"os"

	"allusion/internal/library"
	"allusion/internal/scan"
	"allusion/internal/tagging"

	"github.com/sirupsen/logrus"
)

// TagStore abstracts the tagging DB for easier testing and decoupling.
type TagStore interface {
	AddTag(itemPath, tag string) error
	RemoveTag(itemPath, tag string) error
	GetTags(itemPath string) ([]string, error)
	GetItems(tag string) ([]string, error)
	GetAllTags() ([]tagging.TagWithCount, error)
	GetAllItemPaths() ([]string, error)
	RemoveAllTagsForItem(itemPath string) error
	DeleteOrphanedTag(tag string) error
	Close() error
}

// ScanFunc abstracts the directory scanner.
type ScanFunc func(dir string, opts scan.Options, logger scan.LoggerFunc) <-chan scan.FileItem

// Service is the main entry point for business logic.
type Service struct {
	Tags TagStore
	Scan ScanFunc
	Log  *logrus.Logger
}

// New constructs a Service. A nil scanFn falls back to the real scanner and a
// nil log to the standard logrus logger.
func New(tags TagStore, scanFn ScanFunc, log *logrus.Logger) *Service {
	if scanFn == nil {
		scanFn = scan.RunWithOptions
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{Tags: tags, Scan: scanFn, Log: log}
}

// ScanLibrary walks dir and builds the viewable item list.
func (s *Service) ScanLibrary(dir string, exclude []string) (*library.List, error) {
	if dir == "" {
		return nil, errors.New("directory required")
	}
	items := s.Scan(dir, scan.Options{Exclude: exclude}, func(msg string) {
		s.Log.Warn(msg)
	})
	list := library.NewList()
	for item := range items {
		list.Append(library.NewItem(item.Path))
	}
	s.Log.WithFields(logrus.Fields{"dir": dir, "items": list.Len()}).Info("library scanned")
	return list, nil
}

// TagItem adds one or more tags to an item.
func (s *Service) TagItem(itemPath string, tags []string) error {
	if itemPath == "" || len(tags) == 0 {
		return errors.New("item path and tags required")
	}
	for _, tag := range tags {
		if err := s.Tags.AddTag(itemPath, tag); err != nil {
			return fmt.Errorf("tagging %s with %q: %w", itemPath, tag, err)
		}
	}
	return nil
}

// UntagItem removes one or more tags from an item.
func (s *Service) UntagItem(itemPath string, tags []string) error {
	if itemPath == "" || len(tags) == 0 {
		return errors.New("item path and tags required")
	}
	for _, tag := range tags {
		if err := s.Tags.RemoveTag(itemPath, tag); err != nil {
			return fmt.Errorf("untagging %s from %q: %w", itemPath, tag, err)
		}
	}
	return nil
}

// TagsForItem returns all tags of an item.
func (s *Service) TagsForItem(itemPath string) ([]string, error) {
	return s.Tags.GetTags(itemPath)
}

// ItemsForTag returns all item paths carrying a tag.
func (s *Service) ItemsForTag(tag string) ([]string, error) {
	return s.Tags.GetItems(tag)
}

// AllTags returns every tag with its item count.
func (s *Service) AllTags() ([]tagging.TagWithCount, error) {
	return s.Tags.GetAllTags()
}

// RenameTag moves every item from oldTag to newTag.
func (s *Service) RenameTag(oldTag, newTag string) error {
	if oldTag == "" || newTag == "" || oldTag == newTag {
		return errors.New("invalid tags")
	}
	items, err := s.Tags.GetItems(oldTag)
	if err != nil {
		return fmt.Errorf("reading items for %q: %w", oldTag, err)
	}
	var firstErr error
	for _, item := range items {
		if err := s.Tags.RemoveTag(item, oldTag); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("removing %q from %s: %w", oldTag, item, err)
		}
		if err := s.Tags.AddTag(item, newTag); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("adding %q to %s: %w", newTag, item, err)
		}
	}
	if err := s.Tags.DeleteOrphanedTag(oldTag); err != nil {
		s.Log.WithError(err).Warnf("deleting orphaned tag %q", oldTag)
	}
	return firstErr
}

// CleanDatabase removes tags of items whose files no longer exist and deletes
// orphaned tag keys. It returns how many items and tags were cleaned.
func (s *Service) CleanDatabase() (itemsCleaned, tagsCleaned int, err error) {
	paths, err := s.Tags.GetAllItemPaths()
	if err != nil {
		return 0, 0, fmt.Errorf("reading item paths: %w", err)
	}
	for _, path := range paths {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if err := s.Tags.RemoveAllTagsForItem(path); err != nil {
				s.Log.WithError(err).Warnf("cleaning tags of missing item %s", path)
				continue
			}
			itemsCleaned++
		}
	}

	tags, err := s.Tags.GetAllTags()
	if err != nil {
		return itemsCleaned, 0, fmt.Errorf("reading tags: %w", err)
	}
	for _, tag := range tags {
		if tag.Count != 0 {
			continue
		}
		if err := s.Tags.DeleteOrphanedTag(tag.Name); err != nil {
			s.Log.WithError(err).Warnf("deleting orphaned tag %q", tag.Name)
			continue
		}
		tagsCleaned++
	}
	return itemsCleaned, tagsCleaned, nil
}

// DeleteItemFile deletes an item's file from disk and removes all its tags.
func (s *Service) DeleteItemFile(itemPath string) error {
	if itemPath == "" {
		return errors.New("item path required")
	}
	if err := os.Remove(itemPath); err != nil {
		return fmt.Errorf("deleting %s: %w", itemPath, err)
	}
	if err := s.Tags.RemoveAllTagsForItem(itemPath); err != nil {
		return fmt.Errorf("removing tags of deleted %s: %w", itemPath, err)
	}
	return nil
}
