// Command server exposes the scansion pipeline as a JSON REST API.
//
// Endpoints:
//
//	POST /api/scan      body: {"lines":["..."], "first_number":1, "save":false}
//	POST /api/diagram   body: {"line":"...", "open_start":false}  → image/svg+xml
//	GET  /api/fixture?line=<line>
//	POST /api/check     body: JSON-lines fixtures
//	GET  /api/runs[?id=<run id>]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/cours-de-latin/scansion"
	"github.com/cours-de-latin/scansion/internal/config"
	applog "github.com/cours-de-latin/scansion/internal/log"
	"github.com/cours-de-latin/scansion/internal/store"
)

// ---- JSON response types ------------------------------------------------

type syllableJSON struct {
	Display      string `json:"display"`
	Phonetic     string `json:"phonetic"`
	Long         bool   `json:"long"`
	Accented     bool   `json:"accented"`
	Word         int    `json:"word"`
	WordEnd      bool   `json:"word_end"`
	Elided       bool   `json:"elided,omitempty"`
	CaesuraAfter bool   `json:"caesura_after,omitempty"`
	Foot         int    `json:"foot"`
	FootType     string `json:"foot_type,omitempty"`
	FootStart    bool   `json:"foot_start,omitempty"`
	OpenStart    bool   `json:"open_start,omitempty"`
	OpenEnd      bool   `json:"open_end,omitempty"`
}

type lineJSON struct {
	Number    int            `json:"number"`
	Line      string         `json:"line"`
	Feet      string         `json:"feet"`
	Stresses  string         `json:"stresses"`
	FootCount int            `json:"foot_count"`
	Scanned   bool           `json:"scanned"`
	Issues    []string       `json:"issues,omitempty"`
	Syllables []syllableJSON `json:"syllables"`
}

type scanResponse struct {
	RunID string     `json:"run_id,omitempty"`
	Lines []lineJSON `json:"lines"`
}

type fixtureResponse struct {
	Fixture scansion.Fixture `json:"fixture"`
	Scanned bool             `json:"scanned"`
}

type checkResponse struct {
	Passed   int      `json:"passed"`
	Failed   int      `json:"failed"`
	Errors   int      `json:"errors"`
	Failures []string `json:"failures,omitempty"`
}

type runJSON struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Lines     int       `json:"lines"`
	Scanned   int       `json:"scanned"`
}

type runsResponse struct {
	Runs []runJSON `json:"runs"`
}

type runLinesResponse struct {
	Run   runJSON            `json:"run"`
	Lines []store.LineRecord `json:"lines"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// ---- helpers ------------------------------------------------------------

func toLineJSON(l *scansion.Line) lineJSON {
	out := lineJSON{
		Number:    l.Number,
		Line:      l.Raw,
		Feet:      l.FootTypes(),
		Stresses:  l.Stresses(),
		FootCount: l.Feet,
		Scanned:   l.Scanned(),
		Syllables: make([]syllableJSON, 0, len(l.Syllables)),
	}
	for _, err := range l.Issues {
		out.Issues = append(out.Issues, err.Error())
	}
	for _, s := range l.Syllables {
		out.Syllables = append(out.Syllables, syllableJSON{
			Display:      s.Display,
			Phonetic:     s.Phonetic,
			Long:         s.Long,
			Accented:     s.Accented,
			Word:         s.WordIndex,
			WordEnd:      s.WordEnd,
			Elided:       s.Elided,
			CaesuraAfter: s.CaesuraAfter,
			Foot:         s.FootIndex,
			FootType:     s.Foot.Code(),
			FootStart:    s.FootStart,
			OpenStart:    s.OpenStart,
			OpenEnd:      s.OpenEnd,
		})
	}
	return out
}

func toRunJSON(r store.Run) runJSON {
	return runJSON{ID: r.ID, Source: r.Source, Version: r.Version, CreatedAt: r.CreatedAt, Lines: r.Lines, Scanned: r.Scanned}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		requestLogger(r).Error("encode response failed", slog.Any("err", err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg, RequestID: requestID(r.Context())})
}

// ---- request ids --------------------------------------------------------

type ctxKey int

const requestIDKey ctxKey = iota

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func requestLogger(r *http.Request) *slog.Logger {
	return applog.WithComponent("server").With(slog.String("request_id", requestID(r.Context())))
}

// withRequestID tags each request with an id (the caller's X-Request-ID when
// it is a valid UUID) and logs it once served.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		requestLogger(r).Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.Duration("took", time.Since(start)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// ---- handlers -----------------------------------------------------------

type server struct {
	scanner  *scansion.Scanner
	store    *store.Store // nil when persistence is off
	maxLines int
	maxBody  int64
}

func (s *server) handleScan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var body struct {
			Lines       []string `json:"lines"`
			FirstNumber int      `json:"first_number"`
			Save        bool     `json:"save"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&body); err != nil || len(body.Lines) == 0 {
			writeError(w, r, http.StatusBadRequest, "body must be JSON with a non-empty 'lines' array")
			return
		}
		if len(body.Lines) > s.maxLines {
			writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("at most %d lines per request", s.maxLines))
			return
		}
		if body.FirstNumber == 0 {
			body.FirstNumber = 1
		}
		verses := make([]scansion.Verse, len(body.Lines))
		for i, text := range body.Lines {
			verses[i] = scansion.Verse{Number: body.FirstNumber + i, Text: text}
		}
		lines := s.scanner.ScanVerses(verses)

		resp := scanResponse{Lines: make([]lineJSON, 0, len(lines))}
		for _, l := range lines {
			resp.Lines = append(resp.Lines, toLineJSON(l))
		}
		if body.Save {
			if s.store == nil {
				writeError(w, r, http.StatusConflict, "persistence is not configured")
				return
			}
			run, err := s.store.SaveRun(r.Context(), "api:"+requestID(r.Context()), lines)
			if err != nil {
				requestLogger(r).Error("save run failed", slog.Any("err", err))
				writeError(w, r, http.StatusInternalServerError, "could not save run")
				return
			}
			resp.RunID = run.ID
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func (s *server) handleDiagram() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var body struct {
			Line      string `json:"line"`
			OpenStart bool   `json:"open_start"`
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&body); err != nil || body.Line == "" {
			writeError(w, r, http.StatusBadRequest, "body must be JSON with a non-empty 'line' field")
			return
		}
		line := s.scanner.ScanLine(scansion.CloseLine(body.Line), body.OpenStart)
		w.Header().Set("Content-Type", "image/svg+xml")
		if err := s.scanner.Render(line).WriteSVG(w); err != nil {
			requestLogger(r).Error("write svg failed", slog.Any("err", err))
		}
	}
}

func (s *server) handleFixture() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, r, http.StatusMethodNotAllowed, "GET required")
			return
		}
		text := r.URL.Query().Get("line")
		if text == "" {
			writeError(w, r, http.StatusBadRequest, "missing 'line' query parameter")
			return
		}
		line := s.scanner.ScanLine(text, false)
		writeJSON(w, r, http.StatusOK, fixtureResponse{Fixture: line.Fixture(), Scanned: line.Scanned()})
	}
}

func (s *server) handleCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, "POST required")
			return
		}
		rep, err := s.scanner.RunFixtures(http.MaxBytesReader(w, r.Body, s.maxBody))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		resp := checkResponse{Passed: rep.Passed, Failed: rep.Failed, Errors: rep.Errors}
		for _, res := range rep.Results {
			if !res.Passed() {
				resp.Failures = append(resp.Failures, res.String())
			}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

func (s *server) handleRuns() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, r, http.StatusMethodNotAllowed, "GET required")
			return
		}
		if s.store == nil {
			writeError(w, r, http.StatusNotFound, "persistence is not configured")
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			runs, err := s.store.Runs(r.Context())
			if err != nil {
				requestLogger(r).Error("list runs failed", slog.Any("err", err))
				writeError(w, r, http.StatusInternalServerError, "could not list runs")
				return
			}
			resp := runsResponse{Runs: make([]runJSON, 0, len(runs))}
			for _, run := range runs {
				resp.Runs = append(resp.Runs, toRunJSON(run))
			}
			writeJSON(w, r, http.StatusOK, resp)
			return
		}
		run, err := s.store.GetRun(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, fmt.Sprintf("run %q not found", id))
			return
		}
		if err != nil {
			requestLogger(r).Error("get run failed", slog.Any("err", err))
			writeError(w, r, http.StatusInternalServerError, "could not read run")
			return
		}
		lines, err := s.store.Lines(r.Context(), id)
		if err != nil {
			requestLogger(r).Error("read run lines failed", slog.Any("err", err))
			writeError(w, r, http.StatusInternalServerError, "could not read run")
			return
		}
		writeJSON(w, r, http.StatusOK, runLinesResponse{Run: toRunJSON(run), Lines: lines})
	}
}

func newHandler(s *server, origins []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scan", s.handleScan())
	mux.HandleFunc("/api/diagram", s.handleDiagram())
	mux.HandleFunc("/api/fixture", s.handleFixture())
	mux.HandleFunc("/api/check", s.handleCheck())
	mux.HandleFunc("/api/runs", s.handleRuns())

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
	return withRequestID(c.Handler(mux))
}

// ---- main ---------------------------------------------------------------

func main() {
	os.Exit(run(os.Args[1:]))
}

// run starts the server and blocks until it stops. It returns the process
// exit code so that every deferred close runs before main exits.
func run(args []string) int {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "path to a YAML config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	dbPath := fs.String("db", "", "SQLite run database (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	applog.Init(cfg.LogOptions())
	defer applog.Close()
	l := applog.WithComponent("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &server{
		scanner:  scansion.New(scansion.WithLogger(applog.WithComponent("scanner")), scansion.WithGeometry(cfg.Geometry())),
		maxLines: cfg.Server.MaxLines,
		maxBody:  1 << 20,
	}
	if cfg.Store.Path != "" {
		st, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			l.Error("open store failed", slog.Any("err", err))
			return 1
		}
		defer st.Close()
		srv.store = st
	}

	hs := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newHandler(srv, cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()

	l.Info("listening", slog.String("addr", cfg.Server.Addr))
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server error", slog.Any("err", err))
		return 1
	}
	return 0
}
