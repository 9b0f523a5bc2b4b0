package main

import (
	"flag"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quill/cache"
	"quill/crud"
	"quill/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a config.yaml file is provided before the application starts.")
	flag.Parse()

	// Set up structured logging for the whole process.
	logger := newLogger(*productionBool)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Load configuration from a config.yaml file if present, otherwise use
	// the default dev setup.
	config := LoadConfig(*productionBool)

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.HMACKey, config.Pepper),
		crud.WithPost(),
		crud.WithGroup(),
		crud.WithComment(),
		crud.WithFollow(),
		crud.WithImage(),
	)
	must(err)

	// Connect the feed cache.
	rdb := redis.NewClient(&redis.Options{Addr: config.Redis.Addr})
	feed := cache.NewFeedCache(rdb, cache.IndexFeedTTL)

	// Set up a webserver and serve the app.
	server := http.NewServer(services, feed, logger)
	must(server.Run(config.Port))
}

// newLogger builds the process logger for the given environment.
func newLogger(prod bool) *zap.Logger {
	if prod {
		logger, err := zap.NewProduction()
		must(err)
		return logger
	}
	logger, err := zap.NewDevelopment()
	must(err)
	return logger
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
