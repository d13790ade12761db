package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"

	"offer_letter_publisher/assets"
	"offer_letter_publisher/delivery"
	"offer_letter_publisher/letter"
	"offer_letter_publisher/logger"
	"offer_letter_publisher/metrics"
	"offer_letter_publisher/publisher"
	"offer_letter_publisher/render"
	"offer_letter_publisher/server"
)

// pairs collects repeatable key=value flags in order.
type pairs [][2]string

func (p *pairs) String() string {
	parts := make([]string, len(*p))
	for i, kv := range *p {
		parts[i] = kv[0] + "=" + kv[1]
	}
	return strings.Join(parts, ",")
}

func (p *pairs) Set(v string) error {
	key, value, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", v)
	}
	*p = append(*p, [2]string{strings.TrimSpace(key), value})
	return nil
}

func main() {
	var fields, specs pairs
	configPath := flag.String("config", "", "path to config.json or config.yaml (defaults + env when empty)")
	recordPath := flag.String("record", "", "path to a letter record JSON file")
	flag.Var(&fields, "set", "set a letter field, e.g. -set recipient=\"PT Maju\" (repeatable)")
	flag.Var(&specs, "spec", "set a specification item, e.g. -spec cat=\"Merah\" (repeatable)")
	download := flag.Bool("download", false, "render the letter and save it to the output directory")
	send := flag.Bool("send", false, "render the letter, upload it and open a WhatsApp link")
	printLink := flag.Bool("print-link", false, "with --send, print the WhatsApp link instead of opening it")
	outDir := flag.String("out", "", "output directory for --download (overrides config.output_dir)")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	verbose := flag.Bool("v", false, "enable debug logs")
	flag.Parse()

	cfg, err := publisher.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	log := logger.New(level)

	rec, err := loadRecord(*recordPath, fields, specs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	m := metrics.New()
	pipeline := delivery.NewPipeline(
		delivery.SettingsFromConfig(cfg),
		render.Default(),
		publisher.FromConfig(cfg, log),
		log,
		m,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Web server mode
	if *serve {
		srv, err := server.New(pipeline, letter.NewSession(uuid.NewString(), rec), m, assets.FS, log)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		httpServer := &http.Server{Addr: listen, Handler: srv.Routes(), ReadHeaderTimeout: 10 * time.Second}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		}()
		log.Info("starting web server", "addr", listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *download == *send {
		fmt.Fprintln(os.Stderr, "exactly one of --download, --send or --serve is required")
		os.Exit(1)
	}

	if *download {
		dir := cfg.OutputDir
		if *outDir != "" {
			dir = *outDir
		}
		rep, err := pipeline.Download(ctx, rec, delivery.Platform{Saver: delivery.DirSaver{Dir: dir}})
		if err != nil {
			fmt.Fprintln(os.Stderr, rep.Message())
			os.Exit(1)
		}
		fmt.Println(rep.Location)
		return
	}

	var opener delivery.Opener = delivery.BrowserOpener{}
	if *printLink {
		opener = delivery.PrintOpener{W: os.Stdout}
	}
	rep, err := pipeline.Send(ctx, rec, delivery.Platform{Sharer: delivery.NoShare{}, Opener: opener})
	if err != nil {
		fmt.Fprintln(os.Stderr, rep.Message())
		os.Exit(1)
	}
	if !*printLink {
		fmt.Println(rep.Artifact.URL)
	}
}

// loadRecord starts from today's defaults, overlays the record file when
// given, then applies -set and -spec flags in order.
func loadRecord(path string, fields, specs pairs) (letter.OfferRecord, error) {
	rec := letter.Default(time.Now())
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return letter.OfferRecord{}, err
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return letter.OfferRecord{}, fmt.Errorf("parse record %s: %w", path, err)
		}
	}
	for _, kv := range fields {
		f, ok := letter.ParseField(kv[0])
		if !ok {
			return letter.OfferRecord{}, fmt.Errorf("%w: %s", letter.ErrUnknownField, kv[0])
		}
		if err := rec.Set(f, kv[1]); err != nil {
			return letter.OfferRecord{}, err
		}
	}
	for _, kv := range specs {
		if err := rec.SetSpec(kv[0], kv[1]); err != nil {
			return letter.OfferRecord{}, err
		}
	}
	return rec, nil
}
