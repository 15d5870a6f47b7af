package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = "../../.env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	defaultRunAddress = "localhost:8080"
	defaultEditQuota  = 20
)

type Config struct {
	Env    string
	DB     db
	Server server
	Cases  cases
	Logger logger
}

type db struct {
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type cases struct {
	// DefaultEditQuota is applied to cases created without an explicit
	// quota.
	DefaultEditQuota int `env:"DEFAULT_EDIT_QUOTA"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()
	viper.SetDefault("run_address", defaultRunAddress)
	viper.SetDefault("app_env", EnvLocal)
	viper.SetDefault("default_edit_quota", defaultEditQuota)
	viper.SetDefault("migrations_path", "migrations")

	return &Config{
		Env: viper.GetString("app_env"),
		DB: db{
			DatabaseURI: viper.GetString("database_uri"),
			Migrations:  viper.GetString("migrations_path"),
		},
		Server: server{RunAddress: viper.GetString("run_address")},
		Cases:  cases{DefaultEditQuota: viper.GetInt("default_edit_quota")},
		Logger: logger{LogLevel: viper.GetString("log_level")},
	}
}
