package httpadapter

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/PabloGalante/lifeline/internal/app/chat"
	"github.com/PabloGalante/lifeline/internal/domain"
	"github.com/PabloGalante/lifeline/internal/observability"
)

// maxBodyBytes caps the size of a chat request body.
const maxBodyBytes = 1 << 20

//go:embed static
var staticFS embed.FS

type Server struct {
	svc *chat.Service
}

func NewServer(svc *chat.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	// / → landing page, /static/* → its assets
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/static/", http.FileServerFS(staticFS))

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /api/chat → classify + reply (POST)
	mux.HandleFunc("/api/chat", s.handleChat)

	// /api/assessments → recent assessments (GET), only with a store
	if svc.HasStore() {
		mux.HandleFunc("/api/assessments", s.handleAssessments)
	}

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID, withRecover)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	MessageType     string `json:"message_type"`
	Response        string `json:"response"`
	OriginalMessage string `json:"original_message"`
}

type assessmentResponse struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id,omitempty"`
	Label        string    `json:"label"`
	MessageType  string    `json:"message_type"`
	Score        float64   `json:"score"`
	MessageRunes int       `json:"message_runes"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	LatencyMS    int64     `json:"latency_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

type listAssessmentsResponse struct {
	Assessments []assessmentResponse `json:"assessments"`
}

var (
	errInvalidJSON  = errors.New("invalid JSON body")
	errMessageType  = errors.New("message must be a string")
	errBodyTooLarge = errors.New("request body too large")
)

// decodeChatRequest reads a chat request. An empty body decodes to an empty
// request so that it is reported as a missing message.
func decodeChatRequest(r io.Reader) (chatRequest, error) {
	var req chatRequest

	body, err := io.ReadAll(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, errBodyTooLarge
		}
		return req, errInvalidJSON
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}

	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "message" {
			return req, errMessageType
		}
		return req, errInvalidJSON
	}
	return req, nil
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}
	http.ServeFileFS(w, r, staticFS, "static/index.html")
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	req, err := decodeChatRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	case errors.Is(err, errMessageType):
		badRequest(w, "message must be a string")
		return
	case err != nil:
		badRequest(w, "Invalid JSON body")
		return
	}

	out, err := s.svc.Reply(r.Context(), chat.ReplyInput{Message: req.Message})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		MessageType:     out.Label.MessageType(),
		Response:        out.Reply,
		OriginalMessage: out.OriginalMessage,
	})
}

func (s *Server) handleAssessments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := s.svc.RecentAssessments(r.Context(), limit)
	if err != nil {
		if errors.Is(err, chat.ErrNoStore) {
			notFound(w)
			return
		}
		internalError(w, err)
		return
	}

	resp := listAssessmentsResponse{Assessments: make([]assessmentResponse, 0, len(items))}
	for _, a := range items {
		resp.Assessments = append(resp.Assessments, toAssessmentResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toAssessmentResponse(a *domain.Assessment) assessmentResponse {
	return assessmentResponse{
		ID:           string(a.ID),
		RequestID:    string(a.RequestID),
		Label:        string(a.Label),
		MessageType:  a.Label.MessageType(),
		Score:        float64(a.Score),
		MessageRunes: a.MessageRunes,
		Provider:     a.Provider,
		Model:        a.Model,
		LatencyMS:    a.LatencyMS,
		CreatedAt:    a.CreatedAt,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

// writeServiceError maps chat errors to a status code. Details stay in the
// logs; clients only see a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingMessage):
		badRequest(w, "No message provided")
	case errors.Is(err, domain.ErrInvalidMessage):
		writeError(w, http.StatusUnprocessableEntity, "Message could not be processed")
	case errors.Is(err, domain.ErrInference):
		writeError(w, http.StatusInternalServerError, "Message classification failed")
	case errors.Is(err, domain.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, "Service busy, please retry")
	case errors.Is(err, domain.ErrServiceTimeout):
		writeError(w, http.StatusGatewayTimeout, "Reply generation timed out")
	case errors.Is(err, domain.ErrService):
		writeError(w, http.StatusBadGateway, "Reply generation failed")
	default:
		observability.LoggerFromContext(r.Context()).Error("unhandled chat error", "error", err)
		internalError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter, _ error) {
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
