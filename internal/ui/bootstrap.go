package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"allusion/internal/config"
	"allusion/internal/convert"
	"allusion/internal/prefs"
	"allusion/internal/service"
	"allusion/internal/tagging"
	"allusion/internal/watch"

	"fyne.io/fyne/v2"

	"github.com/sirupsen/logrus"
)

// CreateApplication wires the storage and viewer services together and runs
// the GUI until the window closes. rootOverride, when non-empty, takes
// precedence over the configured library root.
func CreateApplication(configPath, rootOverride string) error {
	log := logrus.New()

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	root := rootOverride
	if root == "" {
		root = cfg.Library.Root
	}
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return err
		}
	}

	storageDir, err := cfg.StorageDir()
	if err != nil {
		return err
	}

	tagDB, err := tagging.NewTagDB(filepath.Join(storageDir, "tags.db"), func(msg string) { log.Info(msg) })
	if err != nil {
		return err
	}
	defer tagDB.Close()

	store, err := prefs.Open(filepath.Join(storageDir, "prefs.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	conv, err := convert.NewService(cfg.Convert.CacheDir, func(msg string) { log.Debug(msg) })
	if err != nil {
		return err
	}

	svc := service.New(tagDB, nil, log)
	list, err := svc.ScanLibrary(root, cfg.Library.Exclude)
	if err != nil {
		return err
	}
	if err := store.SetString(prefs.KeyLastDirectory, root); err != nil {
		log.WithError(err).Warn("persisting last directory")
	}

	viewerApp := NewApp(cfg, list, svc, service.NewMetadata(), conv, store, log)

	watcher, err := watch.New(list, viewerApp.Navigator(), log, func() {
		fyne.Do(viewerApp.loadCurrent)
	})
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(root); err != nil {
		log.WithError(err).Warn("watching library root")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	viewerApp.Run()
	return nil
}
