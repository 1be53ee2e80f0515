package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"

	"github.com/wasimrehman05/superdoc-sub017/internal/markdown"
	"github.com/wasimrehman05/superdoc-sub017/internal/mutation"
	"github.com/wasimrehman05/superdoc-sub017/internal/ops"
)

const maxRequestBody = 4 << 20

// Server routes HTTP requests to document sessions.
type Server struct {
	store  *Store
	loader *markdown.Loader
	reg    *ops.Registry
	logger zerolog.Logger
}

// New creates a server around the session store.
func New(store *Store, logger zerolog.Logger) *Server {
	return &Server{
		store:  store,
		loader: markdown.NewLoader(),
		reg:    ops.Default(),
		logger: logger,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))

	r.Route("/v1/documents", func(r chi.Router) {
		r.Post("/", s.createDocument)
		r.Route("/{documentID}", func(r chi.Router) {
			r.Get("/", s.getDocument)
			r.Delete("/", s.deleteDocument)
			r.Post("/ops/{operation}", s.dispatchOp)
		})
	})
	return r
}

type createDocumentResponse struct {
	DocumentID string `json:"documentId"`
	Revision   string `json:"revision"`
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	root, err := s.loader.Load(body)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	sess, err := s.store.Create(root)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info().Str("document_id", sess.ID).Msg("document created")
	s.writeJSON(w, r, http.StatusCreated, &createDocumentResponse{
		DocumentID: sess.ID,
		Revision:   sess.Engine.Tracker().Revision(),
	})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	result, err := s.reg.Dispatch(s.target(sess), "document.info", nil)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(chi.URLParam(r, "documentID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dispatchOp(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "documentID"))
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	opID := chi.URLParam(r, "operation")
	result, err := s.reg.Dispatch(s.target(sess), opID, body)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) target(sess *Session) *ops.Target {
	return &ops.Target{Doc: sess.Doc, Engine: sess.Engine}
}

// writeJSON marshals the payload and stamps the request id into the body
// so clients can correlate responses with server logs.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"code":"INVALID_INPUT","message":"encoding failure"}`, http.StatusInternalServerError)
		return
	}
	if id := RequestIDFrom(r.Context()); id != "" {
		if stamped, serr := sjson.SetBytes(body, "requestId", id); serr == nil {
			body = stamped
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	env := ops.ErrorEnvelope(err)
	if errors.Is(err, ErrSessionNotFound) {
		env.Code = "TARGET_NOT_FOUND"
	}
	s.writeJSON(w, r, status, env)
}

// statusFor maps engine error codes onto HTTP statuses.
func statusFor(err error) int {
	te, ok := mutation.AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch te.Code {
	case mutation.CodeTargetNotFound, mutation.CodeMatchNotFound:
		return http.StatusNotFound
	case mutation.CodeRevisionMismatch, mutation.CodePreconditionFailed:
		return http.StatusConflict
	case mutation.CodeCapabilityUnavailable:
		return http.StatusNotImplemented
	case mutation.CodeNoOp:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
