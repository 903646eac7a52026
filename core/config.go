package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage media
const (
	MediumInMem = "inmem"
	MediumSQL   = "sql"
	MediumS3    = "s3"
)

type (
	Config struct {
		AppName      string
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		RollbarToken string

		Server  ServerConfig
		Notes   NotesConfig
		Storage StorageConfig
	}

	ServerConfig struct {
		Address         string
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		UploadRate      float64 // uploads per second, per client
		UploadBurst     int
	}

	NotesConfig struct {
		MaxFileSize  int64  // raw bytes, inclusive
		DateFormat   string // time layout used for Note.Date
		EmptyMessage string
	}

	StorageConfig struct {
		Medium string
		Quota  int64 // bytes; 0 disables the check
		SQL    SQLConfig
		S3     S3Config
	}

	SQLConfig struct {
		Driver string // postgres | sqlite
		DSN    string
	}

	S3Config struct {
		Endpoint        string
		Region          string
		Bucket          string
		Prefix          string
		AccessKeyID     string
		SecretAccessKey string
		UsePathStyle    bool
	}
)

func newViper() *viper.Viper {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Study Room")
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.uploadRate", 1.0)
	v.SetDefault("server.uploadBurst", 5)

	v.SetDefault("notes.maxFileSize", int64(3000000))
	v.SetDefault("notes.dateFormat", "1/2/2006")
	v.SetDefault("notes.emptyMessage", "No notes found. Upload your first PDF!")

	v.SetDefault("storage.medium", MediumInMem)
	v.SetDefault("storage.quota", int64(5*1024*1024)) // browser local storage budget
	v.SetDefault("storage.sql.driver", "postgres")
	v.SetDefault("storage.sql.dsn", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "study-notes")
	v.SetDefault("storage.s3.prefix", "notes/")
	v.SetDefault("storage.s3.accessKeyID", "")
	v.SetDefault("storage.s3.secretAccessKey", "")
	v.SetDefault("storage.s3.usePathStyle", false)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()
	return v
}

// NewConfig reads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the env name, e.g. `DEV_STORAGE_MEDIUM=s3`.
func NewConfig() *Config {
	v := newViper()
	return &Config{
		AppName:      v.GetString("appName"),
		Env:          v.GetString("env"),
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			Host:            v.GetString("server.host"),
			DebugHost:       v.GetString("server.debugHost"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			UploadRate:      v.GetFloat64("server.uploadRate"),
			UploadBurst:     v.GetInt("server.uploadBurst"),
		},
		Notes: NotesConfig{
			MaxFileSize:  v.GetInt64("notes.maxFileSize"),
			DateFormat:   v.GetString("notes.dateFormat"),
			EmptyMessage: v.GetString("notes.emptyMessage"),
		},
		Storage: StorageConfig{
			Medium: strings.ToLower(v.GetString("storage.medium")),
			Quota:  v.GetInt64("storage.quota"),
			SQL: SQLConfig{
				Driver: v.GetString("storage.sql.driver"),
				DSN:    v.GetString("storage.sql.dsn"),
			},
			S3: S3Config{
				Endpoint:        v.GetString("storage.s3.endpoint"),
				Region:          v.GetString("storage.s3.region"),
				Bucket:          v.GetString("storage.s3.bucket"),
				Prefix:          v.GetString("storage.s3.prefix"),
				AccessKeyID:     v.GetString("storage.s3.accessKeyID"),
				SecretAccessKey: v.GetString("storage.s3.secretAccessKey"),
				UsePathStyle:    v.GetBool("storage.s3.usePathStyle"),
			},
		},
	}
}
