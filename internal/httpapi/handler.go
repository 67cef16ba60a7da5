package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/jojosay/Local-Queue-Assistant/internal/admin"
	"github.com/jojosay/Local-Queue-Assistant/internal/announce"
	"github.com/jojosay/Local-Queue-Assistant/internal/auth"
	"github.com/jojosay/Local-Queue-Assistant/internal/display"
	"github.com/jojosay/Local-Queue-Assistant/internal/export"
	"github.com/jojosay/Local-Queue-Assistant/internal/models"
	"github.com/jojosay/Local-Queue-Assistant/internal/queue"
	"github.com/jojosay/Local-Queue-Assistant/internal/store"
)

type Handler struct {
	store      *store.Store
	issuer     *queue.Issuer
	admin      *admin.Service
	auth       *auth.Service
	exporter   *export.Service
	aggregator *display.Aggregator
	poller     *display.Poller
	announcer  announce.Announcer
	deskOpts   queue.Options

	mu    sync.Mutex
	desks map[string]*queue.Desk
}

type Options struct {
	SkipReturnToQueue bool
}

func NewHandler(s *store.Store, aggregator *display.Aggregator, poller *display.Poller, announcer announce.Announcer, options Options) *Handler {
	return &Handler{
		store:      s,
		issuer:     queue.NewIssuer(s),
		admin:      admin.New(s),
		auth:       auth.New(s),
		exporter:   export.New(s),
		aggregator: aggregator,
		poller:     poller,
		announcer:  announcer,
		deskOpts:   queue.Options{SkipReturnToQueue: options.SkipReturnToQueue},
		desks:      make(map[string]*queue.Desk),
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/login", h.handleLogin)
	mux.HandleFunc("/api/register", h.handleRegister)
	mux.HandleFunc("/api/tickets", h.handleTickets)
	mux.HandleFunc("/api/queue", h.handleQueue)
	mux.HandleFunc("/api/desk/call-next", h.deskAction("call_next"))
	mux.HandleFunc("/api/desk/complete", h.deskAction("complete"))
	mux.HandleFunc("/api/desk/skip", h.deskAction("skip"))
	mux.HandleFunc("/api/desk/recall", h.deskAction("recall"))
	mux.HandleFunc("/api/desk/announce", h.deskAction("announce"))
	mux.HandleFunc("/api/display/snapshot", h.handleSnapshot)
	mux.HandleFunc("/api/offices", h.handleOffices)
	mux.HandleFunc("/api/offices/", h.handleOfficeByID)
	mux.HandleFunc("/api/counters", h.handleCounters)
	mux.HandleFunc("/api/counters/", h.handleCounterByID)
	mux.HandleFunc("/api/users", h.handleUsers)
	mux.HandleFunc("/api/users/", h.handleUserByID)
	mux.HandleFunc("/api/export", h.handleExport)
	mux.HandleFunc("/api/import", h.handleImport)
	mux.HandleFunc("/api/reset", h.handleReset)
	return mux
}

// desk returns the long-lived state machine for a counter, so the transient
// announcing state survives across requests.
func (h *Handler) desk(officeID, counterID string) *queue.Desk {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := officeID + ":" + counterID
	d, ok := h.desks[key]
	if !ok {
		session := models.Session{
			Role:      models.RoleStaff,
			OfficeID:  officeID,
			CounterID: counterID,
		}
		d = queue.NewDesk(h.store, h.announcer, session, h.deskOpts)
		h.desks[key] = d
	}
	return d
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type loginRequest struct {
	Username               string `json:"username"`
	Password               string `json:"password"`
	CounterID              string `json:"counter_id"`
	NotificationPreference string `json:"notification_preference"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	session, err := h.auth.Login(r.Context(), req.Username, req.Password, req.CounterID, req.NotificationPreference)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OfficeID string `json:"office_id"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := h.admin.CreateUser(r.Context(), models.User{
		Username: req.Username,
		Password: req.Password,
		Role:     models.RoleStaff,
		OfficeID: req.OfficeID,
	})
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type createTicketRequest struct {
	OfficeID string `json:"office_id"`
}

func (h *Handler) handleTickets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req createTicketRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.OfficeID = strings.TrimSpace(req.OfficeID)
	if req.OfficeID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "office_id is required")
		return
	}
	ticket, err := h.issuer.IssueTicket(r.Context(), req.OfficeID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	session := models.Session{Role: models.RoleStaff}
	if r.URL.Query().Get("role") == models.RoleAdmin {
		session.Role = models.RoleAdmin
	}
	session.OfficeID = strings.TrimSpace(r.URL.Query().Get("office_id"))

	tickets, err := h.store.ListQueue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, queue.VisibleQueue(session, tickets))
}

type deskRequest struct {
	OfficeID  string `json:"office_id"`
	CounterID string `json:"counter_id"`
}

type calledResponse struct {
	Serving   models.ServingTicket `json:"serving"`
	WaitingMS int64                `json:"waiting_ms"`
}

type announcementResponse struct {
	AnnouncementText string `json:"announcement_text"`
}

func (h *Handler) deskAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req deskRequest
		if !decodeBody(w, r, &req) {
			return
		}
		req.OfficeID = strings.TrimSpace(req.OfficeID)
		req.CounterID = strings.TrimSpace(req.CounterID)
		if req.OfficeID == "" || req.CounterID == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "office_id and counter_id are required")
			return
		}
		desk := h.desk(req.OfficeID, req.CounterID)

		switch action {
		case "call_next":
			called, err := desk.CallNext(r.Context())
			if err != nil {
				status, code, msg := mapError(err)
				writeError(w, status, code, msg)
				return
			}
			writeJSON(w, http.StatusOK, calledResponse{
				Serving:   called.Serving,
				WaitingMS: called.Waiting.Milliseconds(),
			})
		case "complete":
			serving, err := desk.Complete(r.Context())
			if err != nil {
				status, code, msg := mapError(err)
				writeError(w, status, code, msg)
				return
			}
			writeJSON(w, http.StatusOK, serving)
		case "skip":
			serving, err := desk.Skip(r.Context())
			if err != nil {
				status, code, msg := mapError(err)
				writeError(w, status, code, msg)
				return
			}
			writeJSON(w, http.StatusOK, serving)
		case "recall":
			text, err := desk.Recall(r.Context())
			if err != nil {
				status, code, msg := mapError(err)
				writeError(w, status, code, msg)
				return
			}
			writeJSON(w, http.StatusOK, announcementResponse{AnnouncementText: text})
		case "announce":
			text, err := desk.Announce(r.Context())
			if err != nil {
				status, code, msg := mapError(err)
				writeError(w, status, code, msg)
				return
			}
			writeJSON(w, http.StatusOK, announcementResponse{AnnouncementText: text})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	officeID := strings.TrimSpace(r.URL.Query().Get("office_id"))
	if officeID == "" && h.poller != nil {
		writeJSON(w, http.StatusOK, h.poller.Latest())
		return
	}
	snapshot, err := h.aggregator.Build(r.Context(), officeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleOffices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		offices, err := h.admin.ListOffices(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, offices)
	case http.MethodPost:
		var office models.Office
		if !decodeBody(w, r, &office) {
			return
		}
		created, err := h.admin.CreateOffice(r.Context(), office)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, created)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleOfficeByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/offices/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var office models.Office
		if !decodeBody(w, r, &office) {
			return
		}
		office.OfficeID = id
		updated, err := h.admin.UpdateOffice(r.Context(), office)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.admin.DeleteOffice(r.Context(), id); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCounters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		counters, err := h.admin.ListCounters(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, counters)
	case http.MethodPost:
		var counter models.Counter
		if !decodeBody(w, r, &counter) {
			return
		}
		created, err := h.admin.CreateCounter(r.Context(), counter)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, created)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCounterByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/counters/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var counter models.Counter
		if !decodeBody(w, r, &counter) {
			return
		}
		counter.CounterID = id
		updated, err := h.admin.UpdateCounter(r.Context(), counter)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.admin.DeleteCounter(r.Context(), id); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := h.admin.ListUsers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, users)
	case http.MethodPost:
		var user models.User
		if !decodeBody(w, r, &user) {
			return
		}
		created, err := h.admin.CreateUser(r.Context(), user)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, created)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/users/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var user models.User
		if !decodeBody(w, r, &user) {
			return
		}
		user.UserID = id
		updated, err := h.admin.UpdateUser(r.Context(), user)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := h.admin.DeleteUser(r.Context(), id); err != nil {
			status, code, msg := mapError(err)
			writeError(w, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	doc, err := h.exporter.Export(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var doc export.Document
	if !decodeBody(w, r, &doc) {
		return
	}
	if err := h.exporter.Import(r.Context(), doc); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.exporter.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, queue.ErrOfficeNotFound), errors.Is(err, admin.ErrOfficeNotFound):
		return http.StatusNotFound, "office_not_found", "office not found"
	case errors.Is(err, admin.ErrCounterNotFound):
		return http.StatusNotFound, "counter_not_found", "counter not found"
	case errors.Is(err, admin.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", "user not found"
	case errors.Is(err, admin.ErrUsernameTaken):
		return http.StatusConflict, "username_taken", "username already taken"
	case errors.Is(err, admin.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_request", "missing or invalid fields"
	case errors.Is(err, queue.ErrQueueEmpty):
		return http.StatusConflict, "queue_empty", "no customers waiting in the queue"
	case errors.Is(err, queue.ErrNoActiveTicket):
		return http.StatusConflict, "no_active_ticket", "no ticket is currently being served"
	case errors.Is(err, queue.ErrCounterNotReady):
		return http.StatusConflict, "counter_not_ready", "no active counter assignment"
	case errors.Is(err, queue.ErrAnnouncing):
		return http.StatusConflict, "announcement_in_progress", "an announcement is already playing"
	case errors.Is(err, queue.ErrAnnounceFailed):
		return http.StatusBadGateway, "announcement_failed", "could not generate voice announcement"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid username or password"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}
