package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labelcheck/backend/internal/domain"
	"github.com/labelcheck/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver    *usecase.ResolverService
	analyzer    *usecase.AnalysisService
	regulations *usecase.RegulationService
	sessions    *usecase.SessionService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	resolver *usecase.ResolverService,
	analyzer *usecase.AnalysisService,
	regulations *usecase.RegulationService,
	sessions *usecase.SessionService,
) *Handler {
	return &Handler{
		resolver:    resolver,
		analyzer:    analyzer,
		regulations: regulations,
		sessions:    sessions,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "labelcheck-backend",
		"version": "1.0.0",
	})
}

// resolveRequest is the body of POST /products/resolve
type resolveRequest struct {
	Barcode   string `json:"barcode" binding:"required"`
	SessionID string `json:"sessionId,omitempty"`
}

// ResolveProduct resolves a barcode to a normalized record, attaching
// regulation findings. When a session id is supplied the session's current
// product and scan history are updated.
func (h *Handler) ResolveProduct(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
		return
	}

	record, err := h.resolver.ResolveByBarcode(c.Request.Context(), req.Barcode)
	if err != nil {
		h.writeResolveError(c, req.Barcode, err)
		return
	}

	if req.SessionID != "" {
		if err := h.sessions.SetProduct(req.SessionID, record); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"product":           record,
		"bannedIngredients": h.regulations.CheckIngredients(record.IngredientsText),
		"bannedProducts":    h.regulations.CheckBannedProducts(record.Name),
		"recalls":           h.regulations.CheckRecalls(record.Name, record.Brand),
	})
}

// GetProduct is the GET variant of barcode resolution, without session or
// regulation decoration
func (h *Handler) GetProduct(c *gin.Context) {
	record, err := h.resolver.ResolveByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.writeResolveError(c, c.Param("barcode"), err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) writeResolveError(c *gin.Context, barcode string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode must be non-empty"})
	case errors.Is(err, domain.ErrProductNotFound):
		// A legitimate business outcome, distinct from an error
		c.JSON(http.StatusNotFound, gin.H{"error": "no product found", "barcode": barcode})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "product sources unavailable"})
	}
}

// SearchProducts handles GET /products/search?q=
func (h *Handler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	results, err := h.resolver.SearchByName(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "results": results})
}

// AnalyzeProduct handles GET /products/:barcode/analysis/:kind. Certification
// checks take the scheme via ?type= (default "organic").
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	record, err := h.resolver.ResolveByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.writeResolveError(c, c.Param("barcode"), err)
		return
	}

	var result *domain.AnalysisResult
	switch c.Param("kind") {
	case domain.AnalysisHealth:
		result = h.analyzer.AnalyzeHealth(c.Request.Context(), record)
	case domain.AnalysisEnvironment:
		result = h.analyzer.AnalyzeEnvironment(c.Request.Context(), record)
	case domain.AnalysisAllergen:
		result = h.analyzer.AnalyzeAllergens(c.Request.Context(), record)
	case domain.AnalysisRecipes:
		result = h.analyzer.SuggestRecipes(c.Request.Context(), record)
	case domain.AnalysisCertification:
		certType := c.DefaultQuery("type", "organic")
		result = h.analyzer.CheckCertification(c.Request.Context(), record, certType)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown analysis kind: " + c.Param("kind")})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListBannedData handles GET /regulations/banned
func (h *Handler) ListBannedData(c *gin.Context) {
	c.JSON(http.StatusOK, h.regulations.BannedData())
}

// ListRecalls handles GET /regulations/recalls
func (h *Handler) ListRecalls(c *gin.Context) {
	c.JSON(http.StatusOK, h.regulations.RecallData())
}

// complianceRequest is the body of POST /regulations/compliance
type complianceRequest struct {
	Ingredients string `json:"ingredients" binding:"required"`
	Region      string `json:"region" binding:"required"`
}

// CheckCompliance handles POST /regulations/compliance
func (h *Handler) CheckCompliance(c *gin.Context) {
	var req complianceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredients and region are required"})
		return
	}
	c.JSON(http.StatusOK, h.regulations.CheckCompliance(req.Ingredients, req.Region))
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(c *gin.Context) {
	session := h.sessions.Create()
	c.JSON(http.StatusCreated, session)
}

// GetSession handles GET /sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	snapshot, err := h.sessions.Snapshot(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// chatRequest is the body of POST /sessions/:id/chat
type chatRequest struct {
	Question string `json:"question" binding:"required"`
}

// Chat answers a question about the session's current product. A model
// failure yields a degraded placeholder answer, still status 200.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	sessionID := c.Param("id")
	snapshot, err := h.sessions.Snapshot(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if snapshot.Product == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no product loaded in this session"})
		return
	}

	answer := h.analyzer.Chat(c.Request.Context(), snapshot.Product, snapshot.ChatHistory, req.Question)

	// Best effort; the session may have been dropped concurrently
	_ = h.sessions.AppendChat(sessionID, "user", req.Question)
	_ = h.sessions.AppendChat(sessionID, "assistant", answer)

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
