package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	staticcache "github.com/static-cache/static-cache"
	"github.com/static-cache/static-cache/cache"
	"github.com/static-cache/static-cache/rfc9111"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// CLI flags
	configFilenameFlag string
	rootFlag           string
	providerFlag       string
	dbFilenameFlag     string
	portFlag           int
	originFlag         string
	refreshFlag        time.Duration
	listFlag           bool
	verbosityTraceFlag bool
	logFilenameFlag    string

	// this is set by goreleaser
	version string
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.StringVar(&rootFlag, "root", "", "Cache root directory for the file provider (overrides config)")
	flag.StringVar(&providerFlag, "provider", "", "Cache provider to use: file, sqlite or memory (overrides config)")
	flag.StringVar(&dbFilenameFlag, "db", "", "Cache DB file name for the sqlite provider (use 'memory' for in-memory db)")
	flag.IntVar(&portFlag, "port", 0, "Port to serve mirrored resources on (overrides config)")
	flag.StringVar(&originFlag, "origin", "", "Origin URL to mirror (overrides config)")
	flag.DurationVar(&refreshFlag, "refresh", 0, "Interval for refreshing configured resources (overrides config)")
	flag.BoolVar(&listFlag, "ls", false, "List stored entries and exit")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
	flag.StringVar(&logFilenameFlag, "log-file", "", "Log file to use (in addition to console output)")

	if version == "" {
		version = "DEV"
	}
}

func main() {
	flag.Parse()
	urls := flag.Args()

	// set log level
	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stdout, or to stderr when a downloaded body
	// goes to stdout
	// also output to rotated logfile if specified
	consoleOut := io.Writer(os.Stdout)
	if len(urls) == 1 {
		consoleOut = os.Stderr
	}
	logOutputs := make([]io.Writer, 0)
	logOutputs = append(logOutputs, zerolog.ConsoleWriter{Out: consoleOut})
	if logFilenameFlag != "" {
		logOutputs = append(logOutputs, &lumberjack.Logger{
			Filename:   logFilenameFlag,
			MaxSize:    100,
			MaxBackups: 3,
		})
	}
	multiWriter := zerolog.MultiLevelWriter(logOutputs...)
	log.Logger = log.Level(logLevel).Output(multiWriter).
		With().Str("version", version).Logger()

	// read config file and override with flag values
	var config Config
	if configFilenameFlag != "" {
		fileConfig, err := getConfig(configFilenameFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot read config file")
		}
		config = fileConfig
	}
	if rootFlag != "" {
		config.Root = rootFlag
	}
	if providerFlag != "" {
		config.Provider = providerFlag
	}
	if dbFilenameFlag != "" {
		config.DB = dbFilenameFlag
	}
	if originFlag != "" {
		config.Mirror.Origin = originFlag
	}
	if portFlag != 0 {
		config.Mirror.Port = portFlag
	}

	refreshInterval := refreshFlag
	if refreshInterval == 0 && config.Refresh != "" {
		interval, err := time.ParseDuration(config.Refresh)
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot parse refresh interval")
		}
		refreshInterval = interval
	}

	provider := createProvider(config)
	scache := staticcache.CreateCache(staticcache.Config{
		Cache:  provider,
		Logger: &log.Logger,
	})

	if listFlag {
		listEntries(provider)
		return
	}

	// one url: write the body to stdout
	// several urls: prime the cache and report failures
	if len(urls) == 1 {
		body, err := scache.Get(urls[0])
		if err != nil {
			log.Fatal().Err(err).Msg("Could not download URL")
		}
		os.Stdout.Write(body)
		return
	}
	if len(urls) > 1 {
		if failures := scache.Refresh(urls); failures > 0 {
			os.Exit(1)
		}
		return
	}

	if refreshInterval > 0 {
		if len(config.Resources) == 0 {
			log.Fatal().Msg("Refresh interval set but no resources configured")
		}
		log.Info().Msgf("Refreshing %d resources every %s", len(config.Resources), refreshInterval)
		go refreshLoop(scache, config.Resources, refreshInterval)
	}

	if config.Mirror.Origin != "" {
		originUrl, err := url.Parse(config.Mirror.Origin)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not parse origin url")
		}
		port := config.Mirror.Port
		if port == 0 {
			port = 8080
		}
		log.Info().Msgf("Mirroring %s on port %v", originUrl.String(), port)
		err = http.ListenAndServe(fmt.Sprintf(":%d", port), staticcache.NewHandler(scache, *originUrl))
		if err != nil {
			panic(err)
		}
		return
	}

	if refreshInterval > 0 {
		// refresh-only mode, sweeps run until interrupted
		select {}
	}

	log.Fatal().Msg("Please specify urls to fetch, an origin to mirror, or -ls")
}

// createProvider builds the entry store named by the config,
// defaulting to the file provider.
func createProvider(config Config) cache.CacheProvider {
	switch config.Provider {
	case "", "file":
		root := config.Root
		if root == "" {
			root = "./static-cache"
		}
		return cache.NewFileCache(root)
	case "sqlite":
		dbFilename := config.DB
		if dbFilename == "memory" {
			dbFilename = ""
		}
		sqliteCache, err := cache.NewSQLiteCache(dbFilename)
		if err != nil {
			log.Fatal().Err(err).Msg("Cannot open cache db")
		}
		return sqliteCache
	case "memory":
		return cache.NewMemCache()
	default:
		log.Fatal().Msgf("Unsupported cache provider: %s", config.Provider)
		return nil
	}
}

// refreshLoop revalidates the configured resources forever,
// sleeping for the given interval between sweeps.
func refreshLoop(scache *staticcache.StaticCache, urls []string, interval time.Duration) {
	for {
		scache.Refresh(urls)
		time.Sleep(interval)
	}
}

// listEntries prints one line per stored entry, with the age of the
// Last-Modified validator where the origin sent a parseable date.
func listEntries(provider cache.CacheProvider) {
	provider.Keys(func(key string) {
		entry, ok, err := provider.Get(key)
		if err != nil || !ok {
			return
		}
		etag := entry.ETag
		if etag == "" {
			etag = "-"
		}
		modified := "-"
		if entry.LastModified != "" {
			modified = entry.LastModified
			if date, err := rfc9111.HttpDate(entry.LastModified); err == nil {
				modified = fmt.Sprintf("%s ago", time.Since(date).Round(time.Second))
			}
		}
		fmt.Printf("%.8s  %d bytes\tetag=%s\tmodified=%s\t%s\n",
			key, len(entry.Body), etag, modified, entry.URL)
	})
}
