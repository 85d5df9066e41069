package handlers

import (
	_ "embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"jurissearch-backend/models"
	"jurissearch-backend/service"
)

//go:embed templates/index.html
var indexTemplate string

const indexTemplateName = "index"

// PageTemplate parses the embedded research page
func PageTemplate() *template.Template {
	return template.Must(template.New(indexTemplateName).Parse(indexTemplate))
}

// pageData is everything the research page renders
type pageData struct {
	Topic       string
	Alert       string
	Session     *models.ResearchSession
	Refresh     bool
	Suggestions []string
	MaxLength   int
	Disclaimer  string
	WonLabel    string
	LostLabel   string
}

func newPageData() pageData {
	return pageData{
		Suggestions: service.SuggestedTopics(),
		MaxLength:   service.MaxTopicLength,
		Disclaimer:  service.Disclaimer,
		WonLabel:    models.OutcomeWon.Label(),
		LostLabel:   models.OutcomeLost.Label(),
	}
}

// Index handles GET /
func (h *ResearchHandler) Index(c *gin.Context) {
	data := newPageData()

	if raw := c.Query("session"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			data.Alert = "Unknown research session."
			c.HTML(http.StatusNotFound, indexTemplateName, data)
			return
		}
		session, err := h.researchService.GetSession(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, service.ErrSessionNotFound) {
				h.logger.Error("failed to load research session", zap.Error(err))
			}
			data.Alert = "Unknown research session."
			c.HTML(http.StatusNotFound, indexTemplateName, data)
			return
		}
		data.Session = session
		data.Topic = session.Topic
		data.Refresh = session.Status.IsBusy()
	}

	c.HTML(http.StatusOK, indexTemplateName, data)
}

// Search handles POST /search from the page form
func (h *ResearchHandler) Search(c *gin.Context) {
	topic := c.PostForm("topic")

	session, err := h.researchService.StartResearch(c.Request.Context(), topic)
	if err != nil {
		data := newPageData()
		data.Topic = topic
		if reason, ok := validationMessage(err); ok {
			data.Alert = "Security Alert: " + reason
			c.HTML(http.StatusBadRequest, indexTemplateName, data)
			return
		}
		h.logger.Error("failed to start research", zap.Error(err))
		data.Alert = models.MessageConnectionFailed
		c.HTML(http.StatusInternalServerError, indexTemplateName, data)
		return
	}

	h.processInBackground(session.ID)
	c.Redirect(http.StatusSeeOther, "/?session="+session.ID.String())
}
