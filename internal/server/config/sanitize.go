package config

import (
	"net/url"
	"strings"

	"github.com/yndnr/pixmesh-go/internal/telemetry/logger"
)

// Sanitize returns a copy of the config that is safe to log.
//
// The S3 endpoint may carry userinfo (for example a MinIO URL with an
// embedded key pair). The password is masked and an access key ID used as
// the user name is shortened.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Storage.S3.Endpoint != "" {
		sanitized.Storage.S3.Endpoint = maskURL(sanitized.Storage.S3.Endpoint)
	}

	return &sanitized
}

// maskURL masks the password in a URL's userinfo.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	user := logger.MaskKeyID(u.User.Username())
	if pw, ok := u.User.Password(); ok {
		u.User = url.UserPassword(user, maskSecret(pw))
	} else {
		u.User = url.User(user)
	}
	return u.String()
}

// maskSecret masks a secret value for safe logging.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
