package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host              string
		Port              string
		ShutdownTimeout   time.Duration
		SessionCookieName string
		SessionExpiration time.Duration
		AllowedOrigins    []string
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	GoogleOAuthConfig struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}

	VideoAnalysisConfig struct {
		ServiceURL string
		Timeout    time.Duration
	}

	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		AppName          string
		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string
		Build            string

		VerificationCodeTTL time.Duration

		Server        ServerConfig
		Database      DatabaseConfig
		Google        GoogleOAuthConfig
		VideoAnalysis VideoAnalysisConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// NewConfig loads the app configuration from the environment.
// An optional config/.env.<env> file is loaded first if present.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Tawasl")
	conf.SetDefault("secretKey", "x#2b=0^14ei&ppl7g)+concbqw$n#rhukgj0^fy-*dxl1qm%kx")
	conf.SetDefault("frontendBaseURL", "http://localhost:5173")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("build", "dev")
	conf.SetDefault("verificationCodeTTL", 15*time.Minute)

	conf.SetDefault("serverHost", "0.0.0.0")
	conf.SetDefault("serverPort", "8000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("sessionCookieName", "session")
	conf.SetDefault("sessionExpiration", 7*24*time.Hour)

	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "tawasl")
	conf.SetDefault("databaseUser", "tawasl")
	conf.SetDefault("databasePassword", "tawasl")
	conf.SetDefault("databaseAdminUser", "")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", "5432")
	conf.SetDefault("databaseDisableTLS", true)

	conf.SetDefault("googleClientID", "")
	conf.SetDefault("googleClientSecret", "")
	conf.SetDefault("googleRedirectURL", "http://localhost:8000/api/auth/google/callback")

	conf.SetDefault("aiServiceURL", "http://tawasl-ai-video-analysis:8000/analyze")
	conf.SetDefault("aiServiceTimeout", 2*time.Minute)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		AppName:          conf.GetString("appName"),
		SecretKey:        []byte(conf.GetString("secretKey")),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Build:            conf.GetString("build"),

		VerificationCodeTTL: conf.GetDuration("verificationCodeTTL"),

		Server: ServerConfig{
			Host:              conf.GetString("serverHost"),
			Port:              conf.GetString("serverPort"),
			ShutdownTimeout:   conf.GetDuration("serverShutdownTimeout"),
			SessionCookieName: conf.GetString("sessionCookieName"),
			SessionExpiration: conf.GetDuration("sessionExpiration"),
			AllowedOrigins:    []string{conf.GetString("frontendBaseURL")},
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("databaseEngine"),
			Name:          conf.GetString("databaseName"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetString("databasePort"),
			DisableTLS:    conf.GetBool("databaseDisableTLS"),
		},
		Google: GoogleOAuthConfig{
			ClientID:     conf.GetString("googleClientID"),
			ClientSecret: conf.GetString("googleClientSecret"),
			RedirectURL:  conf.GetString("googleRedirectURL"),
		},
		VideoAnalysis: VideoAnalysisConfig{
			ServiceURL: conf.GetString("aiServiceURL"),
			Timeout:    conf.GetDuration("aiServiceTimeout"),
		},
	}
}
