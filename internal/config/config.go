package config

import (
	"flag"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer HTTPServer `yaml:"http_server"`
	MinIO      MinIO      `yaml:"minio"`
	Redis      Redis      `yaml:"redis"`
	Snapshot   Snapshot   `yaml:"snapshot"`
	Media      Media      `yaml:"media"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Sweeper    Sweeper    `yaml:"sweeper"`
}

type HTTPServer struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
}

type MinIO struct {
	Endpoint        string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	BucketName      string `yaml:"bucket_name" env:"MINIO_BUCKET" env-default:"signage-media"`
	UseSSL          bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	// PublicURL overrides the URL prefix handed to displays; when empty the
	// endpoint URL is used directly.
	PublicURL string `yaml:"public_url" env:"MINIO_PUBLIC_URL"`
}

type Redis struct {
	// Address is optional; the presence mirror and admin rate limiting are
	// disabled when it is empty.
	Address  string `yaml:"address" env:"REDIS_ADDRESS"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Snapshot struct {
	Dir string `yaml:"dir" env:"SNAPSHOT_DIR" env-default:"./data"`
}

type Media struct {
	MaxImageBytes int64 `yaml:"max_image_bytes" env:"MAX_IMAGE_BYTES" env-default:"104857600"`
	MaxVideoBytes int64 `yaml:"max_video_bytes" env:"MAX_VIDEO_BYTES" env-default:"5368709120"`
}

type RateLimit struct {
	MutationsPerMinute int64 `yaml:"mutations_per_minute" env:"RATE_LIMIT_MUTATIONS" env-default:"120"`
}

type Sweeper struct {
	// RetainDays is how long a display id is kept in the heartbeat and
	// reload-acknowledgment maps after its last heartbeat.
	RetainDays int `yaml:"retain_days" env:"SWEEPER_RETAIN_DAYS" env-default:"14"`
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags

		if configPath == "" {
			log.Fatal("config path must be provided")
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist at path: %s", configPath)
	}

	var cfg Config

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	return &cfg
}
