package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caddyserver/certmagic"
	"github.com/spf13/viper"
)

// tlsSetup is the resolved TLS state: nil config means plain HTTP only.
type tlsSetup struct {
	config *tls.Config
	// http01 answers ACME HTTP-01 challenges on the plain listener.
	http01 func(fallback http.Handler) http.Handler
}

// buildTLS resolves the configured TLS mode: BYO PEM files, automatic
// certificates via CertMagic, or none.
func buildTLS(cfg *viper.Viper) (*tlsSetup, error) {
	certFile := strings.TrimSpace(cfg.GetString("tls.cert_file"))
	keyFile := strings.TrimSpace(cfg.GetString("tls.key_file"))
	if certFile != "" || keyFile != "" {
		tc, err := buildFileTLS(certFile, keyFile)
		if err != nil {
			return nil, err
		}
		return &tlsSetup{config: tc}, nil
	}

	domain := strings.TrimSpace(cfg.GetString("tls.domain"))
	if domain == "" {
		return nil, nil
	}
	return buildCertMagicTLS(cfg, domain)
}

// buildCertMagicTLS provisions/loads certificates via CertMagic.
func buildCertMagicTLS(cfg *viper.Viper, domain string) (*tlsSetup, error) {
	cm := certmagic.NewDefault()

	// Storage under the data dir so certs survive restarts.
	storageDir := filepath.Join(cfg.GetString("data_dir"), "certmagic")
	if err := os.MkdirAll(storageDir, 0o700); err != nil {
		return nil, fmt.Errorf("cert storage: %w", err)
	}
	cm.Storage = &certmagic.FileStorage{Path: storageDir}

	disableHTTP := !cfg.GetBool("tls.http01")
	ai := certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:                      ifEmpty(cfg.GetString("tls.ca"), certmagic.LetsEncryptProductionCA),
		Email:                   cfg.GetString("tls.email"),
		Agreed:                  true,
		DisableHTTPChallenge:    disableHTTP,
		DisableTLSALPNChallenge: false,
	})
	cm.Issuers = []certmagic.Issuer{ai}

	if err := cm.ManageSync(context.Background(), []string{domain}); err != nil {
		return nil, err
	}

	tlsConf := cm.TLSConfig()
	tlsConf.MinVersion = tls.VersionTLS13

	setup := &tlsSetup{config: tlsConf}
	if !disableHTTP {
		setup.http01 = func(fallback http.Handler) http.Handler {
			return ai.HTTPChallengeHandler(fallback)
		}
	}
	return setup, nil
}

// buildFileTLS loads a certificate from PEM files for BYO certs.
func buildFileTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, fmt.Errorf("both tls.cert_file and tls.key_file are required")
	}

	c, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	// Validate certificate chain
	for i, b := range c.Certificate {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("invalid certificate at index %d: %w", i, err)
		}
		now := time.Now()
		if now.Before(cert.NotBefore) {
			return nil, fmt.Errorf("certificate not yet valid (starts %s)", cert.NotBefore)
		}
		if now.After(cert.NotAfter) {
			return nil, fmt.Errorf("certificate expired on %s", cert.NotAfter)
		}
	}

	return &tls.Config{Certificates: []tls.Certificate{c}, MinVersion: tls.VersionTLS13}, nil
}

func ifEmpty(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// parsePort extracts an integer port from a host:port address; returns 0 if absent.
func parsePort(addr string) int {
	if addr == "" {
		return 0
	}
	lastColon := strings.LastIndex(addr, ":")
	if lastColon < 0 || lastColon == len(addr)-1 {
		return 0
	}
	p, _ := strconv.Atoi(addr[lastColon+1:])
	return p
}
