package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/portsure/internal/domain"
	"github.com/vadiminshakov/portsure/internal/services/performance"
	"github.com/vadiminshakov/portsure/internal/storage/evaluations"
)

const eventPollInterval = 2 * time.Second

type riskMonitor interface {
	Portfolios() []string
	GetAllocation(portfolioID string) (domain.Allocation, error)
	GetExposure(portfolioID string) (domain.ExposureVector, error)
	SetAllocation(portfolioID string, class domain.AssetClass, quantity decimal.Decimal) error
	CalculateRisk(portfolioID string) (domain.EvaluationEvent, error)
	History(portfolioID string) ([]domain.EvaluationEvent, error)
	Limits() domain.LimitTable
	Weights() domain.WeightTable
	Universe() domain.Universe
}

type eventReader interface {
	EventsAfter(index uint64) ([]evaluations.Record, error)
}

// Server exposes the read/write HTTP surface for UI collaborators and an SSE
// stream tailing the evaluation journal.
type Server struct {
	Addr    string
	Monitor riskMonitor
	Events  eventReader
}

// NewServer creates a new web server instance.
func NewServer(addr string, monitor riskMonitor, events eventReader) *Server {
	return &Server{Addr: addr, Monitor: monitor, Events: events}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/portfolios", s.handlePortfolios)
	mux.HandleFunc("GET /api/portfolios/{id}/allocation", s.handleAllocation)
	mux.HandleFunc("POST /api/portfolios/{id}/allocation", s.handleSetAllocation)
	mux.HandleFunc("GET /api/portfolios/{id}/exposure", s.handleExposure)
	mux.HandleFunc("GET /api/portfolios/{id}/history", s.handleHistory)
	mux.HandleFunc("POST /api/portfolios/{id}/calculate", s.handleCalculate)
	mux.HandleFunc("GET /api/portfolios/{id}/performance", s.handlePerformance)
	mux.HandleFunc("GET /api/limits", s.handleLimits)
	mux.HandleFunc("GET /api/weights", s.handleWeights)
	mux.HandleFunc("GET /events/stream", s.handleEventStream)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// classValue renders one asset class entry in universe order, matching the
// shape chart collaborators expect.
type classValue struct {
	Name  domain.AssetClass `json:"name"`
	Value decimal.Decimal   `json:"value"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handlePortfolios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.Monitor.Portfolios())
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	allocation, err := s.Monitor.GetAllocation(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, s.orderedValues(map[domain.AssetClass]decimal.Decimal(allocation)))
}

func (s *Server) handleExposure(w http.ResponseWriter, r *http.Request) {
	exposure, err := s.Monitor.GetExposure(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, s.orderedValues(map[domain.AssetClass]decimal.Decimal(exposure)))
}

func (s *Server) handleSetAllocation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Class    string  `json:"class"`
		Quantity float64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	quantity, err := domain.QuantityFromFloat(body.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Monitor.SetAllocation(r.PathValue("id"), domain.AssetClass(body.Class), quantity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	event, err := s.Monitor.CalculateRisk(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, event)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.Monitor.History(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, history)
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	portfolioID := r.PathValue("id")
	allocation, err := s.Monitor.GetAllocation(portfolioID)
	if err != nil {
		writeError(w, err)
		return
	}

	invested := allocation.Total(s.Monitor.Universe())
	writeJSON(w, performance.NewSeries(portfolioID).Points(invested, 30))
}

func (s *Server) handleLimits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.orderedValues(map[domain.AssetClass]decimal.Decimal(s.Monitor.Limits())))
}

func (s *Server) handleWeights(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.orderedValues(map[domain.AssetClass]decimal.Decimal(s.Monitor.Weights())))
}

func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "evaluation journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat every 30s so proxies keep the connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(eventPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendEvents := func() error {
		records, err := s.Events.EventsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Event)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: evaluation\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendEvents(); err != nil {
		http.Error(w, "failed to load evaluation events", http.StatusInternalServerError)
		log.Printf("event stream initial load: %v", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendEvents(); err != nil {
				log.Printf("event stream poll err: %v", err)
			}
		}
	}
}

func (s *Server) orderedValues(values map[domain.AssetClass]decimal.Decimal) []classValue {
	classes := s.Monitor.Universe().Classes()
	out := make([]classValue, 0, len(classes))
	for _, class := range classes {
		out = append(out, classValue{Name: class, Value: values[class]})
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownPortfolio):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrPortfolioExists):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
