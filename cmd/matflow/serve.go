package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/matflow/internal/config"
	"github.com/san-kum/matflow/internal/mailrelay"
	"github.com/san-kum/matflow/internal/stream"
)

//go:embed index.html
var indexPage []byte

const shutdownTimeout = 5 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	streamSrv := stream.NewServer(cfg.ControllerOptions(), cfg.Background.FPS, cfg.Server.MaxSessions)
	defer streamSrv.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", streamSrv)
	mux.Handle("/api/send-mail", newMailHandler(cfg.Mail))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexPage)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("listening on %s\n", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	fmt.Println("shutting down")
	streamSrv.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newMailHandler wires the relay to Resend when the API key is present.
// Without a key or recipient the handler answers 503.
func newMailHandler(mc config.MailConfig) http.Handler {
	var sender mailrelay.Sender
	rs, err := mailrelay.NewResendSender(os.Getenv(mc.APIKeyEnv))
	if err != nil {
		log.Printf("serve: mail relay disabled: %v", err)
	} else {
		sender = rs
	}

	var to []string
	if mc.To != "" {
		to = []string{mc.To}
	}
	return mailrelay.NewHandler(sender, mailrelay.Options{
		From:          mc.From,
		To:            to,
		SubjectPrefix: mc.SubjectPrefix,
	})
}
