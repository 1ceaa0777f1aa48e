//go:build release

package log

import (
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dixieflatline76/PhotoSaver/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const debugEnabled = false

func init() {
	dir, err := logDir()
	if err != nil {
		log.Fatalf("Failed to locate log directory: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(dir, config.AppName+config.LogExt),
		MaxSize:    5, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	})
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

// logDir is the user cache dir on Windows and a dot dir in home elsewhere.
func logDir() (string, error) {
	if runtime.GOOS == "windows" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, config.LogWinSubDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, config.LogSubDir), nil
}
