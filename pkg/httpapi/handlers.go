package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/M00N69/NEOREVIEW/pkg/extract"
	"github.com/M00N69/NEOREVIEW/pkg/metrics"
	"github.com/M00N69/NEOREVIEW/pkg/report"
	"github.com/M00N69/NEOREVIEW/pkg/schema"
	"github.com/M00N69/NEOREVIEW/pkg/session"
	"github.com/M00N69/NEOREVIEW/pkg/workbook"
)

// maxUploadBytes bounds both IFS documents and saved workbooks.
const maxUploadBytes = 64 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sessionSummary struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"companyId"`
	CompanyName     string    `json:"companyName"`
	CreatedAt       time.Time `json:"createdAt"`
	Resumed         bool      `json:"resumed"`
	ProfileFields   int       `json:"profileFields"`
	Requirements    int       `json:"requirements"`
	NonConformities int       `json:"nonConformities"`
	Warnings        []string  `json:"warnings"`
}

func summarize(s *session.Session) sessionSummary {
	warnings := s.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return sessionSummary{
		ID:              s.ID,
		CompanyID:       s.CompanyID,
		CompanyName:     s.CompanyName,
		CreatedAt:       s.CreatedAt,
		Resumed:         s.Resumed,
		ProfileFields:   len(s.Profile),
		Requirements:    len(s.Requirements),
		NonConformities: len(s.NonConformities),
		Warnings:        warnings,
	}
}

// readUpload accepts either a raw body or a multipart form carrying the
// payload under field.
func readUpload(r *http.Request, field string) ([]byte, error) {
	defer r.Body.Close()

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("formulaire multipart illisible: %w", err)
		}
		file, _, err := r.FormFile(field)
		if err != nil {
			return nil, fmt.Errorf("champ de fichier %q manquant: %w", field, err)
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxUploadBytes))
	}
	return io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	raw, err := readUpload(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "document JSON manquant")
		return
	}

	table := s.requirementTable(r.Context())
	ex, err := extract.Run(raw, table, s.logger)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.ExtractionsTotal.WithLabelValues(metrics.OutcomeOK).Inc()

	q := r.URL.Query()
	sess := session.FromExtraction(ex, q.Get("company_id"), q.Get("company_name"))
	s.store.Create(sess)
	metrics.SessionsCreatedTotal.WithLabelValues(metrics.SourceDocument).Inc()
	metrics.SessionsActive.Inc()

	writeJSON(w, http.StatusCreated, summarize(sess))
}

func (s *Server) resumeSession(w http.ResponseWriter, r *http.Request) {
	raw, err := readUpload(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "fichier de sauvegarde manquant")
		return
	}

	ws, err := workbook.Read(raw)
	if errors.Is(err, workbook.ErrNotAWorkFile) {
		metrics.ImportRejectionsTotal.Inc()
		writeError(w, http.StatusUnprocessableEntity,
			"ce fichier n'est pas une sauvegarde de travail NEOREVIEW")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("fichier de sauvegarde illisible: %v", err))
		return
	}

	sess := session.FromWorkSave(ws)
	s.store.Create(sess)
	metrics.SessionsCreatedTotal.WithLabelValues(metrics.SourceWorkSave).Inc()
	metrics.SessionsActive.Inc()

	writeJSON(w, http.StatusCreated, summarize(sess))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	var out sessionSummary
	err := s.store.View(chi.URLParam(r, "id"), func(sess *session.Session) error {
		out = summarize(sess)
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	metrics.SessionsActive.Dec()
	w.WriteHeader(http.StatusNoContent)
}

type profileEntry struct {
	Label    string      `json:"label"`
	Value    interface{} `json:"value"`
	Reviewer string      `json:"reviewer,omitempty"`
	Auditor  string      `json:"auditor,omitempty"`
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	out := []profileEntry{}
	err := s.store.View(chi.URLParam(r, "id"), func(sess *session.Session) error {
		for _, f := range sess.Profile {
			com := sess.Commentary.Profile[f.Label]
			out = append(out, profileEntry{
				Label:    f.Label,
				Value:    f.Value,
				Reviewer: com.Reviewer,
				Auditor:  com.Auditor,
			})
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type checklistEntry struct {
	schema.RequirementRecord
	Reviewer string `json:"reviewer,omitempty"`
	Auditor  string `json:"auditor,omitempty"`
}

func (s *Server) getChecklist(w http.ResponseWriter, r *http.Request) {
	out := []checklistEntry{}
	err := s.store.View(chi.URLParam(r, "id"), func(sess *session.Session) error {
		for _, rec := range sess.Requirements {
			com := sess.Commentary.Checklist[rec.Num]
			out = append(out, checklistEntry{
				RequirementRecord: rec,
				Reviewer:          com.Reviewer,
				Auditor:           com.Auditor,
			})
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type nonConformityEntry struct {
	schema.RequirementRecord
	Reviewer            string        `json:"reviewer,omitempty"`
	Auditor             string        `json:"auditor,omitempty"`
	ActionPlan          string        `json:"actionPlan,omitempty"`
	ImplementationNotes string        `json:"implementationNotes,omitempty"`
	Deadline            string        `json:"deadline,omitempty"`
	Responsible         string        `json:"responsible,omitempty"`
	Status              schema.Status `json:"status,omitempty"`
}

func (s *Server) getNonConformities(w http.ResponseWriter, r *http.Request) {
	out := []nonConformityEntry{}
	err := s.store.View(chi.URLParam(r, "id"), func(sess *session.Session) error {
		for _, rec := range sess.NonConformities {
			com := sess.Commentary.NonConformities[rec.Num]
			out = append(out, nonConformityEntry{
				RequirementRecord:   rec,
				Reviewer:            com.Reviewer,
				Auditor:             com.Auditor,
				ActionPlan:          com.ActionPlan,
				ImplementationNotes: com.ImplementationNotes,
				Deadline:            com.Deadline,
				Responsible:         com.Responsible,
				Status:              com.Status,
			})
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getStatistics(w http.ResponseWriter, r *http.Request) {
	var out report.Statistics
	err := s.store.View(chi.URLParam(r, "id"), func(sess *session.Session) error {
		out = report.Compute(sess.Requirements)
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) putProfileComment(w http.ResponseWriter, r *http.Request) {
	var com schema.Comment
	if !decodeBody(w, r, &com) {
		return
	}
	err := s.store.SetProfileComment(chi.URLParam(r, "id"), chi.URLParam(r, "label"), com)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putChecklistComment(w http.ResponseWriter, r *http.Request) {
	var com schema.Comment
	if !decodeBody(w, r, &com) {
		return
	}
	err := s.store.SetChecklistComment(chi.URLParam(r, "id"), chi.URLParam(r, "num"), com)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putActionComment(w http.ResponseWriter, r *http.Request) {
	var com schema.ActionComment
	if !decodeBody(w, r, &com) {
		return
	}
	err := s.store.SetActionComment(chi.URLParam(r, "id"), chi.URLParam(r, "num"), com)
	if errors.Is(err, schema.ErrInvalidStatus) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportWorkSave(w http.ResponseWriter, r *http.Request) {
	var payload []byte
	var filename string
	err := s.store.View(chi.URLParam(r, "id"), func(sess *session.Session) error {
		data, err := workbook.BuildWorkSave(sess.Profile, sess.Requirements, sess.NonConformities,
			sess.Commentary, workbook.Meta{CompanyID: sess.CompanyID, CompanyName: sess.CompanyName})
		if err != nil {
			return err
		}
		payload = data
		filename = workbook.WorkSaveFilename(sess.CompanyID)
		return nil
	})
	if err != nil {
		s.writeExportError(w, err)
		return
	}
	metrics.ExportsTotal.WithLabelValues(metrics.KindWorkSave).Inc()
	serveAttachment(w, filename, payload)
}

func (s *Server) exportReport(w http.ResponseWriter, r *http.Request) {
	var payload []byte
	var filename string
	err := s.store.View(chi.URLParam(r, "id"), func(sess *session.Session) error {
		stats := report.Compute(sess.Requirements)
		data, err := workbook.BuildFinalReport(sess.Profile, sess.Requirements, sess.NonConformities,
			sess.Commentary, stats)
		if err != nil {
			return err
		}
		payload = data
		filename = workbook.ReportFilename(sess.CompanyID)
		return nil
	})
	if err != nil {
		s.writeExportError(w, err)
		return
	}
	metrics.ExportsTotal.WithLabelValues(metrics.KindReport).Inc()
	serveAttachment(w, filename, payload)
}

func serveAttachment(w http.ResponseWriter, filename string, payload []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// decodeBody parses a JSON body into v, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("corps JSON invalide: %v", err))
		return false
	}
	return true
}

// writeStoreError maps session.Store errors onto status codes. Unknown
// sessions and unknown commentary keys are both lookup failures.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrUnknownKey):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeExportError keeps workbook build failures distinct from lookups; the
// session state is untouched either way.
func (s *Server) writeExportError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.logger.Error("workbook build failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "échec de la génération du classeur")
}
