// Package server exposes the cone calculator as a JSON HTTP API. Every client
// gets its own session, identified by a cookie or the X-Cone-Session header,
// with an independent calculation history.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/cone-expert/internal/calculator"
	"github.com/iwvelando/cone-expert/pkg/cone"
	"github.com/iwvelando/cone-expert/pkg/constants"
	"github.com/iwvelando/cone-expert/pkg/i18n"
	"github.com/iwvelando/cone-expert/pkg/output"
	"github.com/iwvelando/cone-expert/pkg/units"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SessionHeader carries the session identifier for clients without cookies.
const SessionHeader = "X-Cone-Session"

// Options tunes the handler. Zero values select the defaults.
type Options struct {
	MaxBodySize  int64
	Version      string
	DefaultUnit  units.Unit
	HistoryLimit int
	SessionTTL   time.Duration
}

// OptionsFromConfig converts a server Config into handler Options.
func OptionsFromConfig(cfg *Config, version string) Options {
	unit, err := units.Parse(cfg.DefaultUnit)
	if err != nil {
		unit = units.Millimeter
	}
	return Options{
		MaxBodySize:  cfg.BodySizeBytes(),
		Version:      version,
		DefaultUnit:  unit,
		HistoryLimit: cfg.HistoryLimit,
		SessionTTL:   cfg.SessionTimeout(),
	}
}

type handler struct {
	logger       *zap.Logger
	maxBodySize  int64
	version      string
	historyLimit int
	defaultUnit  units.Unit
	sessions     *sessionStore
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = constants.DefaultHistoryDisplayLimit
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = constants.DefaultSessionTTL
	}
	if !opts.DefaultUnit.Valid() {
		opts.DefaultUnit = units.Millimeter
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:       logger,
		maxBodySize:  opts.MaxBodySize,
		version:      trimmedVersion,
		historyLimit: opts.HistoryLimit,
		defaultUnit:  opts.DefaultUnit,
		sessions:     newSessionStore(logger, opts.SessionTTL, opts.DefaultUnit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/angle", h.handleAngle)
	mux.HandleFunc("/api/dimension", h.handleDimension)
	mux.HandleFunc("/api/machining", h.handleMachining)
	mux.HandleFunc("/api/profile", h.handleProfile)
	mux.HandleFunc("/api/history", h.handleHistory)
	mux.HandleFunc("/api/labels", h.handleLabels)
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type angleRequest struct {
	Large     *float64 `json:"large"`
	Small     *float64 `json:"small"`
	Length    *float64 `json:"length"`
	RealLarge *float64 `json:"realLarge"`
	Unit      string   `json:"unit"`
}

type dimensionRequest struct {
	Angle  *float64 `json:"angle"`
	Known  string   `json:"known"`
	Large  *float64 `json:"large"`
	Small  *float64 `json:"small"`
	Length *float64 `json:"length"`
	Unit   string   `json:"unit"`
}

type machiningRequest struct {
	Angle    *float64 `json:"angle"`
	Diameter *float64 `json:"diameter"`
	RPM      *float64 `json:"rpm"`
	Feed     *float64 `json:"feed"`
	Unit     string   `json:"unit"`
}

type profileRequest struct {
	Large  *float64 `json:"large"`
	Small  *float64 `json:"small"`
	Length *float64 `json:"length"`
	Steps  int      `json:"steps"`
	Unit   string   `json:"unit"`
}

type solveResponse struct {
	Result  output.OutcomeView        `json:"result"`
	History []output.HistoryEntryView `json:"history"`
}

type profileResponse struct {
	Unit    string        `json:"unit"`
	Outline []cone.Point  `json:"outline"`
	Rings   []cone.Point3 `json:"rings"`
}

type historyResponse struct {
	Session string                    `json:"session" yaml:"session"`
	Entries []output.HistoryEntryView `json:"entries" yaml:"entries"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (h *handler) handleAngle(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAngle"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req angleRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	unit, ok := h.parseUnit(w, req.Unit, op)
	if !ok {
		return
	}
	if req.Large == nil || req.Small == nil || req.Length == nil {
		h.respondSolverError(w, r, &cone.Error{Kind: cone.MissingInputs, Op: op, Msg: "large, small and length are required"}, op)
		return
	}

	sess := h.session(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	outcome, err := sess.calc.SolveFromDimensions(calculator.DimensionsInput{
		LargeDiameter:     *req.Large,
		SmallDiameter:     *req.Small,
		Length:            *req.Length,
		RealLargeDiameter: req.RealLarge,
		Unit:              unit,
	})
	if err != nil {
		h.respondSolverError(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, solveResponse{
		Result:  output.NewOutcomeView(outcome),
		History: output.NewHistoryView(sess.calc.History(h.historyLimit)),
	})
}

func (h *handler) handleDimension(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDimension"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req dimensionRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	unit, ok := h.parseUnit(w, req.Unit, op)
	if !ok {
		return
	}
	if req.Angle == nil {
		h.respondSolverError(w, r, &cone.Error{Kind: cone.MissingInputs, Op: op, Msg: "angle is required"}, op)
		return
	}
	// An empty pair is left for the solver to reject as missing input.
	var pair cone.KnownPair
	if strings.TrimSpace(req.Known) != "" {
		parsed, err := cone.ParseKnownPair(req.Known)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		pair = parsed
	}

	sess := h.session(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	outcome, err := sess.calc.SolveMissingDimension(calculator.AngleInput{
		AngleDegrees:  *req.Angle,
		Known:         pair,
		LargeDiameter: req.Large,
		SmallDiameter: req.Small,
		Length:        req.Length,
		Unit:          unit,
	})
	if err != nil {
		h.respondSolverError(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, solveResponse{
		Result:  output.NewOutcomeView(outcome),
		History: output.NewHistoryView(sess.calc.History(h.historyLimit)),
	})
}

func (h *handler) handleMachining(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMachining"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req machiningRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	unit, ok := h.parseUnit(w, req.Unit, op)
	if !ok {
		return
	}

	sess := h.session(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	result, err := sess.calc.Machining(calculator.MachiningInput{
		AngleDegrees: req.Angle,
		Diameter:     req.Diameter,
		RPM:          req.RPM,
		FeedPerRev:   req.Feed,
		Unit:         unit,
	})
	if err != nil {
		h.respondSolverError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProfile"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req profileRequest
	if !h.decode(w, r, &req, op) {
		return
	}
	unit, ok := h.parseUnit(w, req.Unit, op)
	if !ok {
		return
	}
	if unit == "" {
		unit = h.defaultUnit
	}
	if req.Large == nil || req.Small == nil || req.Length == nil {
		h.respondSolverError(w, r, &cone.Error{Kind: cone.MissingInputs, Op: op, Msg: "large, small and length are required"}, op)
		return
	}

	// Profiles are drawn in the unit they were requested in; the shape does
	// not depend on scale.
	c := cone.Cone{LargeDiameter: *req.Large, SmallDiameter: *req.Small, Length: *req.Length}
	outline, err := cone.Outline(c)
	if err != nil {
		h.respondSolverError(w, r, err, op)
		return
	}
	rings, err := cone.Rings(c, req.Steps)
	if err != nil {
		h.respondSolverError(w, r, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, profileResponse{Unit: unit.String(), Outline: outline, Rings: rings})
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHistory"

	switch r.Method {
	case http.MethodGet:
		limit := h.historyLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw), op)
				return
			}
			limit = parsed
		}

		id, sess := h.sessionWithID(w, r)
		sess.mu.Lock()
		entries := sess.calc.History(limit)
		sess.mu.Unlock()

		resp := historyResponse{Session: id, Entries: output.NewHistoryView(entries)}
		if r.URL.Query().Get("format") == "yaml" {
			h.writeYAML(w, resp, op)
			return
		}
		h.writeJSON(w, http.StatusOK, resp)

	case http.MethodDelete:
		id, sess := h.sessionWithID(w, r)
		sess.mu.Lock()
		sess.calc.ClearHistory()
		sess.mu.Unlock()

		h.logger.Info("history cleared",
			zap.String("op", op),
			zap.String("session", id),
		)
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleLabels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	loc := h.localizer(r)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"language":  loc.Tag(),
		"languages": i18n.Languages(),
		"labels":    loc.Labels(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) session(w http.ResponseWriter, r *http.Request) *session {
	_, sess := h.sessionWithID(w, r)
	return sess
}

// sessionWithID resolves the caller's session and echoes its id back as both
// a cookie and a header.
func (h *handler) sessionWithID(w http.ResponseWriter, r *http.Request) (string, *session) {
	requested := strings.TrimSpace(r.Header.Get(SessionHeader))
	if requested == "" {
		if cookie, err := r.Cookie(constants.SessionCookieName); err == nil {
			requested = cookie.Value
		}
	}
	if _, err := uuid.Parse(requested); err != nil {
		requested = ""
	}

	id, sess, created := h.sessions.acquire(requested)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     constants.SessionCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(SessionHeader, id)
	return id, sess
}

func (h *handler) localizer(r *http.Request) *i18n.Localizer {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return i18n.Lookup(lang)
	}
	return i18n.Lookup(r.Header.Get("Accept-Language"))
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) parseUnit(w http.ResponseWriter, raw string, op string) (units.Unit, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", true
	}
	unit, err := units.Parse(raw)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return "", false
	}
	return unit, true
}

func (h *handler) respondSolverError(w http.ResponseWriter, r *http.Request, err error, op string) {
	kind := cone.KindOf(err)
	if kind == 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.logger.Info("calculation rejected",
		zap.String("op", op),
		zap.Stringer("kind", kind),
		zap.Error(err),
	)
	h.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:  h.localizer(r).Error(err),
		Kind:   kind.String(),
		Detail: err.Error(),
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeYAML(w http.ResponseWriter, payload interface{}, op string) {
	data, err := yaml.Marshal(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode YAML: %v", err), op)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write YAML response", zap.String("op", op), zap.Error(err))
	}
}
