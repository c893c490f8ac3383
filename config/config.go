package config

import (
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

type Config struct {
	App     App           `yaml:"app"`
	Capture Capture       `yaml:"capture"`
	DBPath  string        `yaml:"database_path"`
	Queue   *RabbitMQ     `yaml:"rabbitmq"`
	Storage *minio.Client `yaml:"storage"`
	Archive Archive       `yaml:"archive"`
	Server  Server        `yaml:"server"`
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
}

type Capture struct {
	StorageDir    string        `yaml:"storage_dir"`
	ChunkInterval time.Duration `yaml:"chunk_interval"`
	SampleRate    int           `yaml:"sample_rate"`
	Channels      int           `yaml:"channels"`
	Format        string        `yaml:"format"`
	FrameBuffer   int           `yaml:"frame_buffer"`
	Source        string        `yaml:"source"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
	Workers  int    `yaml:"workers"`
}

type RabbitMQ struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	User    string `json:"user"`
	Pass    string `json:"pass"`
	Kind    string `json:"kind"`
}

type Archive struct {
	Enabled bool   `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("capture.chunk_interval_seconds", 180)
	viper.SetDefault("capture.sample_rate", 16000)
	viper.SetDefault("capture.channels", 1)
	viper.SetDefault("capture.format", "wav")
	viper.SetDefault("capture.frame_buffer", 256)
	viper.SetDefault("capture.source", "synthetic")
	viper.SetDefault("database.path", "voice-capture.db")
	viper.SetDefault("rabbitmq.kind", "topic")
	viper.SetDefault("server.workers", 2)
	viper.SetDefault("server.port", "8080")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Enabled: viper.GetBool("rabbitmq.enabled"),
		Host:    viper.GetString("rabbitmq.host"),
		Port:    viper.GetInt("rabbitmq.port"),
		User:    viper.GetString("rabbitmq.user"),
		Pass:    viper.GetString("rabbitmq.pass"),
		Kind:    viper.GetString("rabbitmq.kind"),
	}

	var minioClient *minio.Client
	if viper.GetBool("minio.enabled") {
		minioClient, err = minio.New(viper.GetString("minio.url"), &minio.Options{
			Creds:  credentials.NewStaticV4(viper.GetString("minio.access_id"), viper.GetString("minio.secret_access_key"), ""),
			Secure: false,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		App: App{
			Environment: viper.GetString("app.environment"),
			Host:        viper.GetString("app.host"),
		},
		Capture: Capture{
			StorageDir:    viper.GetString("capture.storage_dir"),
			ChunkInterval: time.Duration(viper.GetInt("capture.chunk_interval_seconds")) * time.Second,
			SampleRate:    viper.GetInt("capture.sample_rate"),
			Channels:      viper.GetInt("capture.channels"),
			Format:        viper.GetString("capture.format"),
			FrameBuffer:   viper.GetInt("capture.frame_buffer"),
			Source:        viper.GetString("capture.source"),
		},
		DBPath: viper.GetString("database.path"),
		Server: Server{
			HttpPort: viper.GetString("server.port"),
			Workers:  viper.GetInt("server.workers"),
		},
		Queue:   rabbitmq,
		Storage: minioClient,
		Archive: Archive{
			Enabled: viper.GetBool("minio.enabled") && viper.GetBool("minio.archive_enabled"),
			Bucket:  viper.GetString("minio.bucket"),
		},
	}, nil
}
