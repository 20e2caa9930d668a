package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "168h" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        string         `json:"database_dsn"`
	AuthSecret         string         `json:"auth_secret"`
	CSRFSecret         string         `json:"csrf_secret"`
	CookieDomain       string         `json:"cookie_domain"`
	APIURL             string         `json:"api_url"`
	OriginURLs         []string       `json:"origin_urls"`
	SessionTimeout     timex.Duration `json:"session_timeout"`
	GoogleClientID     string         `json:"google_client_id"`
	GoogleClientSecret string         `json:"google_client_secret"`
	GoogleCallbackURL  string         `json:"google_callback_url"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	SMTPHost           string         `json:"smtp_host"`
	SMTPPort           int            `json:"smtp_port"`
	SMTPUsername       string         `json:"smtp_username"`
	SMTPPassword       string         `json:"smtp_password"`
	SMTPFrom           string         `json:"smtp_from"`
	OTPExpiry          timex.Duration `json:"otp_expiry"`
	ShowOTP            *bool          `json:"show_otp"`
	LogBackend         string         `json:"log_backend"`
	Debug              *bool          `json:"debug"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field that is present in it into config. Unreadable files and invalid JSON
// panic: the process cannot start with a config it was told to use.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AuthSecret, c.AuthSecret)
	setString(&config.CSRFSecret, c.CSRFSecret)
	setString(&config.CookieDomain, c.CookieDomain)
	setString(&config.APIURL, c.APIURL)
	if len(c.OriginURLs) > 0 {
		config.OriginURLs = c.OriginURLs
	}
	if c.SessionTimeout.Duration > 0 {
		config.SessionTimeout = c.SessionTimeout.Duration
	}
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleClientSecret, c.GoogleClientSecret)
	setString(&config.GoogleCallbackURL, c.GoogleCallbackURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	if c.OTPExpiry.Duration > 0 {
		config.OTPExpiry = c.OTPExpiry.Duration
	}
	if c.ShowOTP != nil {
		config.ShowOTP = *c.ShowOTP
	}
	setString(&config.LogBackend, c.LogBackend)
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
