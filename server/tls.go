package server

import (
	"crypto/tls"

	"golang.org/x/crypto/acme/autocert"

	"github.com/saiset-co/sai-datalayer-gateway/types"
)

// buildTLSConfig returns a TLS config from static certificates or an
// autocert manager, or nil when TLS is disabled.
func buildTLSConfig(config *types.TLSConfig) (*tls.Config, error) {
	if config == nil || !config.Enabled {
		return nil, nil
	}

	if config.AutoCert {
		cacheDir := config.CacheDir
		if cacheDir == "" {
			cacheDir = "./certs"
		}

		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(config.Domains...),
			Cache:      autocert.DirCache(cacheDir),
		}

		return manager.TLSConfig(), nil
	}

	cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
	if err != nil {
		return nil, types.WrapError(err, "failed to load tls key pair")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
