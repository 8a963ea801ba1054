// Package tagging stores item tags in a BoltDB database: two buckets map
// item paths to tag lists and tags to item path lists, kept in sync inside
// one transaction per mutation.
package tagging

import (
	"encoding/json"
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"
)

const (
	// ItemsToTagsBucket maps an item path to its JSON-encoded tag list.
	ItemsToTagsBucket = "ItemsToTags"
	// TagsToItemsBucket maps a tag to its JSON-encoded item path list.
	TagsToItemsBucket = "TagsToItems"
)

// LoggerFunc receives diagnostic messages; may be nil.
type LoggerFunc func(message string)

// TagDB manages the tagging database.
type TagDB struct {
	db     *bolt.DB
	logger LoggerFunc
}

// TagWithCount holds a tag name and the number of items carrying it.
type TagWithCount struct {
	Name  string
	Count int
}

// NewTagDB opens (or creates) the tag database at dbPath and ensures both
// buckets exist.
func NewTagDB(dbPath string, logger LoggerFunc) (*TagDB, error) {
	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening tag database %s: %w", dbPath, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{ItemsToTagsBucket, TagsToItemsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &TagDB{db: db, logger: logger}, nil
}

// Close closes the database.
func (tdb *TagDB) Close() error {
	if tdb.db != nil {
		return tdb.db.Close()
	}
	return nil
}

func (tdb *TagDB) logf(format string, args ...interface{}) {
	if tdb.logger != nil {
		tdb.logger(fmt.Sprintf(format, args...))
	}
}

func decodeList(data []byte) ([]string, error) {
	if data == nil {
		return []string{}, nil
	}
	var list []string
	err := json.Unmarshal(data, &list)
	return list, err
}

// updateStoredList adds or removes item from the JSON list stored under key.
// A list emptied by a removal has its key deleted. Reports whether the list
// changed.
func updateStoredList(tx *bolt.Tx, bucketName, key []byte, item string, add bool) (bool, error) {
	bucket := tx.Bucket(bucketName)
	if bucket == nil {
		return false, fmt.Errorf("bucket %s not found", bucketName)
	}
	list, err := decodeList(bucket.Get(key))
	if err != nil {
		return false, fmt.Errorf("decoding list for %q in %s: %w", key, bucketName, err)
	}

	changed := false
	if add {
		present := false
		for _, existing := range list {
			if existing == item {
				present = true
				break
			}
		}
		if !present {
			list = append(list, item)
			changed = true
		}
	} else {
		kept := list[:0]
		for _, existing := range list {
			if existing != item {
				kept = append(kept, existing)
			}
		}
		changed = len(kept) != len(list)
		list = kept
	}
	if !changed {
		return false, nil
	}

	if len(list) == 0 {
		if err := bucket.Delete(key); err != nil {
			return true, fmt.Errorf("deleting empty list for %q in %s: %w", key, bucketName, err)
		}
		return true, nil
	}
	encoded, err := json.Marshal(list)
	if err != nil {
		return true, fmt.Errorf("encoding list for %q in %s: %w", key, bucketName, err)
	}
	if err := bucket.Put(key, encoded); err != nil {
		return true, fmt.Errorf("storing list for %q in %s: %w", key, bucketName, err)
	}
	return true, nil
}

// AddTag associates a tag with an item path.
func (tdb *TagDB) AddTag(itemPath, tag string) error {
	if itemPath == "" || tag == "" {
		return fmt.Errorf("item path and tag cannot be empty")
	}
	return tdb.db.Update(func(tx *bolt.Tx) error {
		if _, err := updateStoredList(tx, []byte(ItemsToTagsBucket), []byte(itemPath), tag, true); err != nil {
			return err
		}
		_, err := updateStoredList(tx, []byte(TagsToItemsBucket), []byte(tag), itemPath, true)
		return err
	})
}

// RemoveTag disassociates a tag from an item path.
func (tdb *TagDB) RemoveTag(itemPath, tag string) error {
	if itemPath == "" || tag == "" {
		return fmt.Errorf("item path and tag cannot be empty")
	}
	return tdb.db.Update(func(tx *bolt.Tx) error {
		if _, err := updateStoredList(tx, []byte(ItemsToTagsBucket), []byte(itemPath), tag, false); err != nil {
			return err
		}
		_, err := updateStoredList(tx, []byte(TagsToItemsBucket), []byte(tag), itemPath, false)
		return err
	})
}

// GetTags returns the sorted tags of an item path.
func (tdb *TagDB) GetTags(itemPath string) ([]string, error) {
	var tags []string
	err := tdb.db.View(func(tx *bolt.Tx) error {
		var err error
		tags, err = decodeList(tx.Bucket([]byte(ItemsToTagsBucket)).Get([]byte(itemPath)))
		if err != nil {
			return fmt.Errorf("decoding tags for %s: %w", itemPath, err)
		}
		return nil
	})
	sort.Strings(tags)
	return tags, err
}

// GetItems returns the sorted item paths carrying a tag.
func (tdb *TagDB) GetItems(tag string) ([]string, error) {
	var items []string
	err := tdb.db.View(func(tx *bolt.Tx) error {
		var err error
		items, err = decodeList(tx.Bucket([]byte(TagsToItemsBucket)).Get([]byte(tag)))
		if err != nil {
			return fmt.Errorf("decoding items for tag %s: %w", tag, err)
		}
		return nil
	})
	sort.Strings(items)
	return items, err
}

// GetAllTags returns every tag with its item count, sorted by name.
func (tdb *TagDB) GetAllTags() ([]TagWithCount, error) {
	var tags []TagWithCount
	err := tdb.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(TagsToItemsBucket)).ForEach(func(k, v []byte) error {
			items, err := decodeList(v)
			if err != nil {
				return fmt.Errorf("decoding items for tag %s: %w", k, err)
			}
			tags = append(tags, TagWithCount{Name: string(k), Count: len(items)})
			return nil
		})
	})
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, err
}

// GetAllItemPaths returns every item path that has at least one tag.
func (tdb *TagDB) GetAllItemPaths() ([]string, error) {
	var paths []string
	err := tdb.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ItemsToTagsBucket)).ForEach(func(k, _ []byte) error {
			paths = append(paths, string(k))
			return nil
		})
	})
	sort.Strings(paths)
	return paths, err
}

// RemoveAllTagsForItem drops an item from both buckets, e.g. after its file
// was deleted.
func (tdb *TagDB) RemoveAllTagsForItem(itemPath string) error {
	if itemPath == "" {
		return fmt.Errorf("item path cannot be empty")
	}
	return tdb.db.Update(func(tx *bolt.Tx) error {
		itemsBucket := tx.Bucket([]byte(ItemsToTagsBucket))
		tags, err := decodeList(itemsBucket.Get([]byte(itemPath)))
		if err != nil {
			return fmt.Errorf("decoding tags for %s: %w", itemPath, err)
		}
		for _, tag := range tags {
			if _, err := updateStoredList(tx, []byte(TagsToItemsBucket), []byte(tag), itemPath, false); err != nil {
				return err
			}
		}
		if err := itemsBucket.Delete([]byte(itemPath)); err != nil {
			return fmt.Errorf("deleting tags of %s: %w", itemPath, err)
		}
		return nil
	})
}

// DeleteOrphanedTag removes a tag key that no longer maps to any items. A tag
// still carrying items is left untouched.
func (tdb *TagDB) DeleteOrphanedTag(tag string) error {
	return tdb.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(TagsToItemsBucket))
		items, err := decodeList(bucket.Get([]byte(tag)))
		if err != nil {
			return fmt.Errorf("decoding items for tag %s: %w", tag, err)
		}
		if len(items) > 0 {
			tdb.logf("tag %q still has %d items, not deleting", tag, len(items))
			return nil
		}
		return bucket.Delete([]byte(tag))
	})
}
