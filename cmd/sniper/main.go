package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lwhx/OVH/app"
	"github.com/lwhx/OVH/internal/logging"
	"github.com/lwhx/OVH/types"
	"github.com/lwhx/OVH/types/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	envPath := flag.String("env", ".env", "dotenv file with provider and Telegram credentials")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load %s: %v", *envPath, err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, app.WithSettingsSeed(settingsFromEnv()))
	if err != nil {
		log.Fatal(err)
	}

	if err := runAndClose(ctx, container, container.Logger); err != nil {
		container.Logger.WithError(err).Error("sniper stopped with an error")
		stop()
		os.Exit(1)
	}
}

type service interface {
	Run(ctx context.Context) error
	Close() error
}

// runAndClose closes svc on every exit path and returns the run error.
func runAndClose(ctx context.Context, svc service, logger *logging.Logger) error {
	runErr := svc.Run(ctx)
	if err := svc.Close(); err != nil {
		logger.Source("system").WithError(err).Warn("shutdown did not complete cleanly")
	}
	return runErr
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		return config.NewAppConfig()
	}
	return config.LoadFile(path)
}

// settingsFromEnv reads the credentials used to seed empty persisted settings.
func settingsFromEnv() types.Settings {
	return types.Settings{
		Endpoint:    os.Getenv("OVH_ENDPOINT"),
		AppKey:      os.Getenv("OVH_APP_KEY"),
		AppSecret:   os.Getenv("OVH_APP_SECRET"),
		ConsumerKey: os.Getenv("OVH_CONSUMER_KEY"),
		Zone:        os.Getenv("OVH_ZONE"),
		TgToken:     os.Getenv("TG_TOKEN"),
		TgChatID:    os.Getenv("TG_CHAT_ID"),
	}
}
