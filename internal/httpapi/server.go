package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"stuhfl_go/internal/cache"
	"stuhfl_go/internal/daemon"
	"stuhfl_go/sdk"
)

// Reader is the daemon surface the API drives.
type Reader interface {
	Start(ctx context.Context) error
	Stop()
	Status() daemon.Status
	StatusText() string
	Seen() []cache.Entry
	ResetSeen()
	InventoryOnce(ctx context.Context) (*sdk.InventoryData, sdk.Status, error)
}

type Server struct {
	addr   string
	reader Reader
	router *mux.Router
	http   *http.Server

	// base outlives single requests; the scan loop is started under it.
	base context.Context
}

func New(addr string, reader Reader) *Server {
	router := mux.NewRouter()
	s := &Server{
		addr:   addr,
		reader: reader,
		router: router,
		base:   context.Background(),
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/scan/start", s.handleScanStart).Methods(http.MethodPost)
	router.HandleFunc("/scan/stop", s.handleScanStop).Methods(http.MethodPost)
	router.HandleFunc("/inventory", s.handleInventory).Methods(http.MethodPost)
	router.HandleFunc("/tags", s.handleTags).Methods(http.MethodGet)
	router.HandleFunc("/tags", s.handleTagsReset).Methods(http.MethodDelete)
	router.HandleFunc("/tags/{epc}", s.handleTag).Methods(http.MethodGet)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"ok": false, "error": "method not allowed"})
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "not found"})
	})
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(ctx context.Context) error {
	s.base = ctx
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[http] listening on %s", s.addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": "stuhfl-daemon",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(s.reader.StatusText() + "\n"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": s.reader.Status()})
}

func (s *Server) handleScanStart(w http.ResponseWriter, _ *http.Request) {
	if err := s.reader.Start(s.base); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, daemon.ErrBusy) {
			code = http.StatusConflict
		}
		writeJSON(w, code, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	log.Printf("[http] scan started")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": s.reader.Status()})
}

func (s *Server) handleScanStop(w http.ResponseWriter, _ *http.Request) {
	s.reader.Stop()
	log.Printf("[http] scan stopped")
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": s.reader.Status()})
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	data, st, err := s.reader.InventoryOnce(r.Context())
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, daemon.ErrBusy) {
			code = http.StatusConflict
		}
		writeJSON(w, code, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"status":     st.String(),
		"tags":       tagViews(data.Tags),
		"statistics": statsView(data.Statistics),
	})
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request) {
	seen := s.reader.Seen()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(seen), "tags": seen})
}

func (s *Server) handleTagsReset(w http.ResponseWriter, _ *http.Request) {
	s.reader.ResetSeen()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	want := normalizeEPC(mux.Vars(r)["epc"])
	for _, e := range s.reader.Seen() {
		if normalizeEPC(e.EPC) == want {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tag": e})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "tag not seen"})
}

// normalizeEPC lets clients use plain hex instead of the colon form.
func normalizeEPC(epc string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(epc), ":", ""))
}

type tagView struct {
	EPC     string `json:"epc"`
	PC      string `json:"pc"`
	XPC     string `json:"xpc,omitempty"`
	TID     string `json:"tid,omitempty"`
	Antenna int    `json:"antenna"`
	AGC     int    `json:"agc"`
	RSSII   int    `json:"rssi_i"`
	RSSIQ   int    `json:"rssi_q"`
}

func tagViews(tags []sdk.InventoryTag) []tagView {
	out := make([]tagView, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagView{
			EPC:     sdk.HexID(t.EPC),
			PC:      sdk.HexID(t.PC),
			XPC:     sdk.HexID(t.XPC),
			TID:     sdk.HexID(t.TID),
			Antenna: int(t.Antenna),
			AGC:     int(t.AGC),
			RSSII:   int(t.RSSILinI),
			RSSIQ:   int(t.RSSILinQ),
		})
	}
	return out
}

func statsView(st sdk.Statistics) map[string]any {
	return map[string]any{
		"round_count":      st.RoundCount,
		"tuning_status":    st.TuningStatus.String(),
		"frequency_khz":    st.Frequency,
		"q":                st.Q,
		"tag_count":        st.TagCount,
		"empty_slot_count": st.EmptySlotCount,
		"collision_count":  st.CollisionCount,
		"slot_count":       st.SlotCount,
		"crc_err_count":    st.CRCErrCount,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
