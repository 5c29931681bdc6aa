package server

import (
	"degreetrack/internal/course"
	"degreetrack/internal/engine"
	"degreetrack/internal/logging"
	"degreetrack/internal/tracker"
	"degreetrack/internal/transcript"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

var errNoTranscriptSource = errors.New("no transcript url or rows given")

// Handler serves the session of one tracker.
type Handler struct {
	tracker           *tracker.Tracker
	transcriptURL     string
	transcriptTimeout time.Duration
}

// NewHandler builds a Handler. transcriptURL is the default feed for
// POST /import.
func NewHandler(t *tracker.Tracker, transcriptURL string, transcriptTimeout time.Duration) *Handler {
	return &Handler{tracker: t, transcriptURL: transcriptURL, transcriptTimeout: transcriptTimeout}
}

type stateView struct {
	ID      string                 `json:"id"`
	Slots   map[string]engine.Slot `json:"slots"`
	Exams   map[string]bool        `json:"exams,omitempty"`
	CanUndo bool                   `json:"can_undo"`
	engine.Report
}

type mutationResponse struct {
	Outcome engine.Outcome `json:"outcome"`
	State   stateView      `json:"state"`
}

func (h *Handler) view() (stateView, error) {
	s := h.tracker.State()
	rep, err := h.tracker.Engine().Status(s)
	if err != nil {
		return stateView{}, err
	}
	return stateView{
		ID:      s.ID,
		Slots:   s.Slots,
		Exams:   s.Inputs.Exams,
		CanUndo: len(s.History) > 0,
		Report:  rep,
	}, nil
}

func (h *Handler) respondMutation(c *gin.Context, out engine.Outcome, err error) {
	if err != nil {
		respondErr(c, err)
		return
	}
	logging.APIDebug("%s %s: %s", c.Request.Method, c.FullPath(), out.Message)
	v, err := h.view()
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, mutationResponse{Outcome: out, State: v})
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}

// GET /state
func (h *Handler) GetState(c *gin.Context) {
	v, err := h.view()
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, v)
}

type addCourseRequest struct {
	Input   string  `json:"input" binding:"required"`
	Persist bool    `json:"persist"`
	Units   float64 `json:"units"`
}

// POST /courses
func (h *Handler) AddCourse(c *gin.Context) {
	var req addCourseRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.tracker.AddCourse(req.Input, req.Persist, course.AmountOf(req.Units))
	h.respondMutation(c, out, err)
}

// DELETE /courses/:code
func (h *Handler) RemoveCourse(c *gin.Context) {
	out, err := h.tracker.RemoveCourse(c.Param("code"))
	h.respondMutation(c, out, err)
}

type importRequest struct {
	URL  string           `json:"url"`
	Rows []transcript.Row `json:"rows"`
}

// POST /import takes inline rows, a feed url, or falls back to the
// configured feed.
func (h *Handler) Import(c *gin.Context) {
	var req importRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}

	var (
		out engine.Outcome
		err error
	)
	switch {
	case len(req.Rows) > 0:
		out, err = h.tracker.ImportRows(transcript.Clean(req.Rows))
	case req.URL != "" || h.transcriptURL != "":
		url := req.URL
		if url == "" {
			url = h.transcriptURL
		}
		requestLogger(c).Info("Importing transcript from %s", url)
		out, err = h.tracker.Import(c.Request.Context(), transcript.NewHTTPSource(url, h.transcriptTimeout))
	default:
		RespondError(c, http.StatusBadRequest, "invalid_request", errNoTranscriptSource)
		return
	}
	h.respondMutation(c, out, err)
}

// POST /exams/:label
func (h *Handler) CheckExam(c *gin.Context) {
	out, err := h.tracker.ToggleExam(c.Param("label"), true)
	h.respondMutation(c, out, err)
}

// DELETE /exams/:label
func (h *Handler) UncheckExam(c *gin.Context) {
	out, err := h.tracker.ToggleExam(c.Param("label"), false)
	h.respondMutation(c, out, err)
}

type examView struct {
	Name      string   `json:"name"`
	System    string   `json:"system"`
	Satisfies []string `json:"satisfies"`
	Checked   bool     `json:"checked"`
}

// GET /exams
func (h *Handler) ListExams(c *gin.Context) {
	s := h.tracker.State()
	var out []examView
	for _, sys := range h.tracker.Engine().Equivalency().Systems {
		for _, ex := range sys.Exams {
			out = append(out, examView{
				Name:      ex.Name,
				System:    sys.Key,
				Satisfies: ex.Satisfies,
				Checked:   s.ExamChecked(ex.Name),
			})
		}
	}
	RespondOK(c, gin.H{"exams": out})
}

type moveRequest struct {
	Slot   string `json:"slot" binding:"required"`
	Target string `json:"target" binding:"required"`
}

// POST /move
func (h *Handler) Move(c *gin.Context) {
	var req moveRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.tracker.MoveGE(req.Slot, req.Target)
	h.respondMutation(c, out, err)
}

type majorRequest struct {
	Major string `json:"major" binding:"required"`
}

// PUT /major
func (h *Handler) SetMajor(c *gin.Context) {
	var req majorRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.tracker.SetMajor(req.Major)
	h.respondMutation(c, out, err)
}

// POST /undo
func (h *Handler) Undo(c *gin.Context) {
	out, err := h.tracker.Undo()
	h.respondMutation(c, out, err)
}

// POST /reset, or POST /reset?scope=inputs to keep the transcript.
func (h *Handler) Reset(c *gin.Context) {
	var (
		out engine.Outcome
		err error
	)
	switch c.Query("scope") {
	case "", "all":
		out, err = h.tracker.Reset()
	case "inputs":
		out, err = h.tracker.ResetInputs()
	default:
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("scope must be all or inputs"))
		return
	}
	h.respondMutation(c, out, err)
}

type catalogView struct {
	Code      course.Code `json:"code"`
	ShortName string      `json:"short_name"`
	*course.Entry
}

// GET /catalog/:code
func (h *Handler) GetCourse(c *gin.Context) {
	entry, ok := h.tracker.Engine().Catalog().Find(c.Param("code"))
	if !ok {
		respondErr(c, engine.ErrCourseNotFound)
		return
	}
	RespondOK(c, catalogView{Code: entry.Code, ShortName: entry.ShortName(), Entry: entry})
}
