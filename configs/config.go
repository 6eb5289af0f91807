package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	FacebookAppID        string
	FacebookAppSecret    string
	FacebookRedirectURI  string
	PinterestAppID       string
	PinterestAppSecret   string
	PinterestRedirectURI string
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURI    string
	XClientID            string
	XClientSecret        string
	XRedirectURI         string
	PostgresURI          string
	RedisURI             string
	FrontendURL          string
	PublicBaseURL        string
	CronSecret           string
	WhatsAppVerifyToken  string
	WhatsAppAckErrors    bool
	R2                   R2
	EncryptionKey        string
	SecretKey            string
	CookieName           string
}

func LoadConfig() *Config {
	return &Config{
		FacebookAppID:        getEnv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret:    getEnv("FACEBOOK_APP_SECRET", ""),
		FacebookRedirectURI:  getEnv("FACEBOOK_REDIRECT_URI", ""),
		PinterestAppID:       getEnv("PINTEREST_APP_ID", ""),
		PinterestAppSecret:   getEnv("PINTEREST_APP_SECRET", ""),
		PinterestRedirectURI: getEnv("PINTEREST_REDIRECT_URI", ""),
		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:    getEnv("GOOGLE_REDIRECT_URI", ""),
		XClientID:            getEnv("X_CLIENT_ID", ""),
		XClientSecret:        getEnv("X_CLIENT_SECRET", ""),
		XRedirectURI:         getEnv("X_REDIRECT_URI", ""),
		PostgresURI:          getEnv("POSTGRES_URI", ""),
		RedisURI:             getEnv("REDIS_URI", ""),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		PublicBaseURL:        getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		CronSecret:           getEnv("CRON_SECRET", ""),
		WhatsAppVerifyToken:  getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAckErrors:    getEnv("WHATSAPP_ACK_ERRORS", "true") == "true",
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		SecretKey:     getEnv("SECRET_KEY", ""),
		CookieName:    getEnv("COOKIE_NAME", "cortexcart_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
