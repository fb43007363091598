package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/translation"
)

// maxUploadSize caps uploaded CV documents at 10MB.
const maxUploadSize = 10 << 20

var validate = validator.New()

// CreateSessionRequest is the optional body for POST /sessions.
type CreateSessionRequest struct {
	SessionID string `json:"sessionId,omitempty" validate:"omitempty,uuid4"`
	Language  string `json:"lang,omitempty" validate:"omitempty,bcp47_language_tag"`
}

// CreateSessionResponse carries the bearer token and the initial document.
type CreateSessionResponse struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	Document  cv.CVData `json:"document"`
	Lang      string    `json:"lang"`
	Resumed   bool      `json:"resumed"`
}

// DocumentResponse is the standard document payload.
type DocumentResponse struct {
	Document cv.CVData `json:"document"`
	Lang     string    `json:"lang"`
	Busy     bool      `json:"busy"`
	State    string    `json:"state"`
}

// EditSectionRequest replaces one section's content and commits the result as
// the new source of record.
type EditSectionRequest struct {
	Content json.RawMessage `json:"content" validate:"required"`
	Lang    string          `json:"lang,omitempty" validate:"omitempty,bcp47_language_tag"`
}

// TranslateRequest starts a translation run.
type TranslateRequest struct {
	Lang string `json:"lang" validate:"required,bcp47_language_tag"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateSession handles POST /sessions. A body with a known sessionId
// resumes that session's snapshot from the database when persistence is on;
// otherwise a fresh session starts with the built-in template document.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil {
		// An empty body is a plain new-session request.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			s.errorResponse(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	lang := req.Language
	if lang == "" {
		lang = s.defaultLang
	}

	id := uuid.New()
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid session ID")
			return
		}
		id = parsed
	}

	st := store.New(lang)
	resumed := false
	if s.db != nil && req.SessionID != "" {
		doc, storedLang, err := s.db.LoadSnapshot(r.Context(), id)
		if err != nil {
			log.Printf("Warning: failed to load snapshot for %s: %v", id, err)
		} else if doc != nil {
			st.ReplaceBoth(*doc, storedLang)
			resumed = true
		}
	}

	sess := &session{
		id:    id,
		store: st,
		orch:  translation.NewOrchestrator(st, s.translator, translation.WithCooldown(s.cooldown)),
	}
	s.addSession(sess)

	token, err := s.jwtService.GenerateToken(id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to create session token")
		return
	}

	src := st.Source()
	s.jsonResponse(w, http.StatusCreated, CreateSessionResponse{
		SessionID: id.String(),
		Token:     token,
		Document:  src.Data,
		Lang:      src.Lang,
		Resumed:   resumed,
	})
}

// sessionFromRequest resolves the authenticated session or writes the error
// response itself and returns nil.
func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) *session {
	id, err := middleware.GetSessionID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "missing session")
		return nil
	}
	sess := s.getSession(id)
	if sess == nil {
		err := &ErrSessionNotFound{SessionID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return nil
	}
	return sess
}

// handleGetCV handles GET /cv
func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	src := sess.store.Source()
	s.jsonResponse(w, http.StatusOK, DocumentResponse{
		Document: sess.store.Display(),
		Lang:     src.Lang,
		Busy:     sess.orch.Busy(),
		State:    sess.orch.State().String(),
	})
}

// handleReset handles POST /cv/reset. Restores the template document as both
// display and source and drops any stored snapshot.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	if err := sess.orch.BeginExclusive(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer sess.orch.EndExclusive()

	doc := cv.DefaultCV()
	sess.store.ReplaceBoth(doc, s.defaultLang)
	if s.db != nil {
		if err := s.db.DeleteSnapshot(r.Context(), sess.id); err != nil {
			log.Printf("Warning: failed to delete snapshot for %s: %v", sess.id, err)
		}
	}

	s.jsonResponse(w, http.StatusOK, DocumentResponse{
		Document: doc,
		Lang:     s.defaultLang,
		State:    translation.StateIdle.String(),
	})
}

// handleEditSection handles PUT /cv/sections/{key}. A manual edit commits as
// a new source snapshot, tagged with the language the user says they wrote in.
func (s *Server) handleEditSection(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	key := cv.SectionKey(r.PathValue("key"))
	if !key.Valid() {
		verr := &ErrValidation{Field: "key", Message: "unknown section"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	var req EditSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	if err := sess.orch.BeginExclusive(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer sess.orch.EndExclusive()

	src := sess.store.Source()
	merged, err := cv.ApplySection(sess.store.Display(), key, req.Content)
	if err != nil {
		verr := &ErrValidation{Field: "content", Message: err.Error()}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}
	merged = merged.Sanitized()

	lang := req.Lang
	if lang == "" {
		lang = src.Lang
	}
	sess.store.ReplaceBoth(merged, lang)
	s.persistSnapshot(r.Context(), sess, merged, lang)

	s.jsonResponse(w, http.StatusOK, DocumentResponse{
		Document: merged,
		Lang:     lang,
		State:    sess.orch.State().String(),
	})
}

// handleUpload handles POST /cv/upload. Multipart field "file" carries the
// document; optional field "lang" tags the language the document is written
// in. Upload and translation share the busy flag, so neither can run while
// the other is in flight.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	if err := sess.orch.BeginExclusive(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	defer sess.orch.EndExclusive()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to parse upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	partial, err := s.gateway.Extract(r.Context(), data, mediaType)
	if err != nil {
		// Extraction failed; the document state was never touched.
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	doc := cv.Normalize(partial)

	lang := r.FormValue("lang")
	if lang == "" {
		lang = s.defaultLang
	}
	sess.store.ReplaceBoth(doc, lang)
	s.persistSnapshot(r.Context(), sess, doc, lang)

	s.jsonResponse(w, http.StatusOK, DocumentResponse{
		Document: doc,
		Lang:     lang,
		State:    sess.orch.State().String(),
	})
}

// handleTranslate handles POST /cv/translate. Streams progress events over
// SSE while the orchestrator works through the sections; the final event is
// either "complete" or "error".
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFromRequest(w, r)
	if sess == nil {
		return
	}

	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	// Reject before committing to the SSE content type, so a blocked request
	// gets a plain 409. Run re-checks under its own lock.
	if sess.orch.Busy() {
		s.errorResponse(w, HTTPStatus(translation.ErrBusy), translation.ErrBusy.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	// A request for the language the source is already in never leaves Idle,
	// so it must not be reported as a completed run.
	status := translation.StateCompleted.String()
	if sess.store.Source().Lang == req.Lang {
		status = "noop"
	}

	runErr := sess.orch.Run(r.Context(), req.Lang, func(event translation.ProgressEvent) {
		sse.WriteEvent("progress", event) //nolint:errcheck
	})
	if runErr != nil {
		sse.WriteError(runErr.Error())
		return
	}

	// The source snapshot stays untouched; only the display now shows the
	// target language. A later run still starts from the original source.
	sse.WriteComplete(req.Lang, status)
}

// persistSnapshot saves the snapshot when persistence is configured. Failures
// only cost resumption, so they are logged and swallowed.
func (s *Server) persistSnapshot(ctx context.Context, sess *session, doc cv.CVData, lang string) {
	if s.db == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.db.SaveSnapshot(saveCtx, sess.id, doc, lang); err != nil {
		log.Printf("Warning: failed to save snapshot for %s: %v", sess.id, err)
	}
}
