package config

import "strings"

// AppVersion is the version of the application, stamped at build time.
var AppVersion = "0.0.0"

// AppName is the name of the application.
const AppName = "PhotoSaver"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// SourcesFileName is the name of the photo source list inside the config directory.
const SourcesFileName = "sources.toml"

// DefaultAPIAddr is where the local control server listens.
const DefaultAPIAddr = "127.0.0.1:49453"
