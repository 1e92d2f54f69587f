package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/llehouerou/tilawa/internal/playback"
)

const shutdownTimeout = 2 * time.Second

// Snapshotter reports what is playing.
type Snapshotter interface {
	Snapshot() playback.Snapshot
}

// Server exposes /metrics, /healthz and /now-playing.
type Server struct {
	router *mux.Router
	srv    *http.Server
	log    zerolog.Logger
}

type nowPlaying struct {
	Surah    int     `json:"surah"`
	Verse    int     `json:"verse"`
	State    string  `json:"state"`
	Mode     string  `json:"mode"`
	Voice    string  `json:"voice"`
	Speed    float64 `json:"speed"`
	Volume   int     `json:"volume"`
	Muted    bool    `json:"muted"`
	Position float64 `json:"position_seconds"`
	Duration float64 `json:"duration_seconds"`
	Error    string  `json:"error,omitempty"`
}

// NewServer builds the HTTP surface. player may be nil.
func NewServer(addr string, rec *Recorder, player Snapshotter, log zerolog.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		log:    log.With().Str("component", "metrics").Logger(),
	}
	s.router.Handle("/metrics", promhttp.HandlerFor(rec.Registry(), promhttp.HandlerOpts{})).Methods("GET")
	s.router.HandleFunc("/healthz", healthzHandler).Methods("GET")
	if player != nil {
		s.router.HandleFunc("/now-playing", nowPlayingHandler(player)).Methods("GET")
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens in the background until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("metrics listening")
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()
	return nil
}

func healthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func nowPlayingHandler(player Snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := player.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(nowPlaying{
			Surah:    snap.CollectionID,
			Verse:    snap.CurrentNumber,
			State:    snap.LoadState.String(),
			Mode:     snap.Mode.String(),
			Voice:    snap.Voice,
			Speed:    snap.Speed,
			Volume:   snap.Volume,
			Muted:    snap.Muted,
			Position: snap.Position.Seconds(),
			Duration: snap.Duration.Seconds(),
			Error:    snap.ErrorMessage,
		})
	}
}
