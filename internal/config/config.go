package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/corray333/littlelemon/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func MustInit() {
	// .env is optional: in containers the variables come from the environment.
	if err := godotenv.Load("./.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("error while loading .env file: " + err.Error())
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/littlelemon")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("LITTLELEMON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	SetDefaults()
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	SetupLogger()
}

// SetDefaults registers the values used when config.yaml omits a key.
func SetDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("server.http.port", 8080)
	viper.SetDefault("server.grpc.port", 9090)
	viper.SetDefault("storage.driver", "postgres")
	viper.SetDefault("postgres.migrations_path", "./migrations")
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("orders.events.exchange", "littlelemon.orders")
	viper.SetDefault("orders.events.queue", "littlelemon.orders.events")
	viper.SetDefault("orders.events.binding_key", "order.#")
	viper.SetDefault("orders.events.max_retries", 5)
	viper.SetDefault("otel.enabled", false)
}

func SetupLogger() {
	handler := logger.NewHandler(&slog.HandlerOptions{
		Level: logger.ParseLevel(viper.GetString("log.level")),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
