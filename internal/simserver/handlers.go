package simserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/crewdeck/crewdeck/internal/api"
)

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(s.logRequests)

	r.Get("/", s.handleService)
	r.Get("/api/health", s.handleHealth)

	r.Get("/api/agents", s.handleAgents)
	r.Post("/api/agents/{name}/action", s.handleAgentAction)

	r.Get("/api/dashboard/stats", s.handleStats)
	r.Get("/api/pipeline", s.handlePipeline)
	r.Get("/api/pipeline/funnel", s.handleFunnel)
	r.Get("/api/jobs", s.handleJobs)
	r.Get("/api/sources", s.handleSources)
	r.Get("/api/audit/compliance-report", s.handleCompliance)

	r.Get("/api/screening/queue", s.handleScreeningQueue)
	r.Post("/api/screening/{id}/approve", s.handleDecision("approved"))
	r.Post("/api/screening/{id}/reject", s.handleDecision("rejected"))

	r.Post("/api/candidates/search", s.handleCandidateSearch)
	r.Get("/api/demo/workflow", s.handleDemoWorkflow)

	r.Get("/api/robot/status", s.handleRobotStatus)
	r.Get("/api/sensors", s.handleSensors)
	r.Get("/api/vision/detections", s.handleVision)
	r.Get("/api/mission", s.handleMission)
	r.Get("/api/autonomy/level", s.handleAutonomy)

	return r
}

// logRequests writes one line per request to the diagnostic logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Printf("simserver: %s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Service())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"service":        "Crew Command Center",
		"agents_ready":   true,
		"uptime_seconds": s.world.UptimeSeconds(),
		"timestamp":      s.clock().Format(time.RFC3339),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Agents())
}

func (s *Server) handleAgentAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req api.AgentActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.world.AgentAction(name, req)
	if err != nil {
		writeWorldError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Stats())
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Pipeline())
}

func (s *Server) handleFunnel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Funnel())
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Jobs())
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Sources())
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Compliance())
}

func (s *Server) handleScreeningQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.ScreeningQueue())
}

func (s *Server) handleDecision(decision string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req api.ScreeningDecisionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Reviewer == "" {
			writeError(w, http.StatusBadRequest, "reviewer is required")
			return
		}
		result, err := s.world.Decide(id, decision, req)
		if err != nil {
			writeWorldError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleCandidateSearch(w http.ResponseWriter, r *http.Request) {
	var req api.CandidateSearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, s.world.SearchCandidates(req))
}

func (s *Server) handleDemoWorkflow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.DemoWorkflow())
}

func (s *Server) handleRobotStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.RobotStatus())
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Sensors())
}

func (s *Server) handleVision(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.VisionDetections())
}

func (s *Server) handleMission(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.Mission())
}

func (s *Server) handleAutonomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.world.AutonomyLevel())
}

// decodeBody reads a JSON body, tolerating empty bodies so curl-style pokes
// work without payloads.
func decodeBody(r *http.Request, out any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func writeWorldError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
