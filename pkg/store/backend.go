package store

import (
	"strings"

	aterrors "github.com/syslex/artitracker/pkg/errors"
)

// Backend names, as used in configuration and metrics labels.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Backends lists the supported backend names.
var Backends = []string{BackendFile, BackendMemory, BackendRedis, BackendMongo, BackendS3, BackendPostgres}

// ParseBackend normalizes a backend name. The empty string selects
// [BackendFile].
func ParseBackend(name string) (string, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "":
		return BackendFile, nil
	case "mongodb":
		return BackendMongo, nil
	case "minio":
		return BackendS3, nil
	case "postgresql", "pg":
		return BackendPostgres, nil
	}
	for _, b := range Backends {
		if n == b {
			return b, nil
		}
	}
	return "", aterrors.New(aterrors.ErrCodeUnsupported, "unknown store backend %q (available: %s)", name, strings.Join(Backends, ", "))
}
