package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
)

// Run starts the configured listeners and blocks until ctx is cancelled
// or a listener fails. With TLS enabled it serves HTTPS plus HTTP/3 on
// tls.addr and keeps the plain listener for HTTP-01 challenges and
// redirects; without TLS it serves plain HTTP on http_addr.
func (s *Server) Run(ctx context.Context) error {
	setup, err := buildTLS(s.cfg)
	if err != nil {
		return fmt.Errorf("tls setup: %w", err)
	}

	handler := s.Router()
	if setup == nil {
		return s.runPlain(ctx, handler)
	}

	tlsAddr := s.cfg.GetString("tls.addr")
	h3Port := parsePort(tlsAddr)
	if h3Port == 0 {
		h3Port = 443
	}

	h3 := &http3.Server{
		Addr:      tlsAddr,
		Handler:   handler,
		TLSConfig: setup.config,
	}
	altSvc := fmt.Sprintf(`h3=":%d"; ma=86400`, h3Port)
	httpsSrv := &http.Server{
		Addr:      tlsAddr,
		TLSConfig: setup.config,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Alt-Svc", altSvc)
			handler.ServeHTTP(w, r)
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 3)
	go func() {
		log.Printf("http3 listening on %s", tlsAddr)
		errCh <- h3.ListenAndServe()
	}()
	go func() {
		log.Printf("https listening on %s", tlsAddr)
		errCh <- httpsSrv.ListenAndServeTLS("", "")
	}()

	// The plain listener answers ACME challenges and redirects the rest.
	plain := &http.Server{
		Addr:              s.cfg.GetString("http_addr"),
		Handler:           redirectToHTTPS(tlsAddr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if setup.http01 != nil {
		plain.Handler = setup.http01(plain.Handler)
	}
	go func() {
		log.Printf("http listening on %s", plain.Addr)
		errCh <- plain.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		err = nil
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpsSrv.Shutdown(shutCtx)
	_ = plain.Shutdown(shutCtx)
	_ = h3.Close()
	return err
}

func (s *Server) runPlain(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              s.cfg.GetString("http_addr"),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()
	log.Printf("http listening on %s", srv.Addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// redirectToHTTPS sends plain HTTP traffic to the HTTPS listener.
func redirectToHTTPS(tlsAddr string) http.Handler {
	port := parsePort(tlsAddr)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		target := "https://" + host
		if port != 0 && port != 443 {
			target = fmt.Sprintf("%s:%d", target, port)
		}
		http.Redirect(w, r, target+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}
