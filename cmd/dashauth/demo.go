package main

import (
	"log/slog"
	"net"
	"net/http"

	dashAuth "github.com/MrEthical07/dashAuth"
	"github.com/MrEthical07/dashAuth/internal/fakebackend"
)

func startDemoBackend(logger *slog.Logger) (string, func(), error) {
	be, err := fakebackend.New(fakebackend.Config{})
	if err != nil {
		return "", nil, err
	}
	be.AddAccount(fakebackend.Account{
		User:     dashAuth.User{Email: "demo@example.com", Name: "Demo", IsEmailVerified: true},
		Password: "demo123",
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{Handler: be.Handler()}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("demo backend stopped", "error", err)
		}
	}()
	logger.Debug("demo backend listening", "addr", ln.Addr().String())
	return "http://" + ln.Addr().String(), func() { _ = srv.Close() }, nil
}
