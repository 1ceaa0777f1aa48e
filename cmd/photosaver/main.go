// Command photosaver runs the photo slideshow screensaver.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2/app"

	"github.com/dixieflatline76/PhotoSaver/config"
	"github.com/dixieflatline76/PhotoSaver/util"
	"github.com/dixieflatline76/PhotoSaver/util/log"
)

type options struct {
	sourcesPath string
	preview     bool
	daemon      bool
	apiAddr     string
	faceModel   string
}

func main() {
	var (
		opts        options
		checkUpdate bool
		version     bool
	)
	flag.StringVar(&opts.sourcesPath, "sources", "", "path to the sources TOML file (default: user config dir)")
	flag.BoolVar(&opts.preview, "preview", false, "show the slideshow in a window instead of full screen")
	flag.BoolVar(&opts.daemon, "daemon", false, "stay running without a window and wait for show_preview on the control API")
	flag.StringVar(&opts.apiAddr, "api", config.DefaultAPIAddr, "address of the local control API")
	flag.StringVar(&opts.faceModel, "face-model", "", "pigo face cascade file; cover crops keep detected faces in frame")
	flag.BoolVar(&checkUpdate, "check-update", false, "check GitHub for a newer release and exit")
	flag.BoolVar(&version, "version", false, "print the version and exit")
	flag.Parse()

	if version {
		fmt.Println(config.AppName, config.AppVersion)
		return
	}
	if checkUpdate {
		os.Exit(runUpdateCheck())
	}

	ok, err := acquireLock()
	if err != nil {
		log.Fatalf("Failed to acquire single-instance lock: %v", err)
	}
	if !ok {
		log.Printf("Another instance of %s is already running.", config.AppName)
		return
	}
	defer releaseLock()

	if opts.sourcesPath == "" {
		dir, err := config.ConfigDir()
		if err != nil {
			log.Fatalf("Error getting config directory: %v", err)
		}
		opts.sourcesPath = filepath.Join(dir, config.SourcesFileName)
	}

	a := app.NewWithID("com.dixieflatline76." + config.AppName)
	s := newSaver(a, config.NewAppConfig(a.Preferences()), opts)
	a.Lifecycle().SetOnStarted(s.started)
	a.Lifecycle().SetOnStopped(s.shutdown)
	a.Run()
}

func runUpdateCheck() int {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res, err := util.CheckForUpdates(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if res.UpdateAvailable {
		fmt.Printf("%s is available (running %s): %s\n", res.LatestVersion, res.CurrentVersion, res.ReleaseURL)
		return 0
	}
	fmt.Printf("%s is up to date\n", res.CurrentVersion)
	return 0
}
