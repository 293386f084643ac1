package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/davicafu/listingsearch/internal/listing/application"
	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	"github.com/davicafu/listingsearch/pkg/utils"
	sharedPersistence "github.com/davicafu/listingsearch/shared/platform/persistence"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
)

var errBadParam = errors.New("invalid parameter")

// ListingHandler encapsula los endpoints HTTP de listings y de búsqueda.
type ListingHandler struct {
	listings *application.ListingService
	search   *application.SearchService
	stats    listingDomain.SearchAnalyticsReader
	limits   PageLimits
	log      *zap.Logger
}

// NewListingHandler crea el handler; stats puede ser nil si no hay analítica.
func NewListingHandler(
	listings *application.ListingService,
	search *application.SearchService,
	stats listingDomain.SearchAnalyticsReader,
	limits PageLimits,
	log *zap.Logger,
) *ListingHandler {
	if limits.DefaultSize <= 0 {
		limits.DefaultSize = 20
	}
	if limits.MaxSize <= 0 {
		limits.MaxSize = 100
	}
	return &ListingHandler{
		listings: listings,
		search:   search,
		stats:    stats,
		limits:   limits,
		log:      log,
	}
}

// ---------------- Búsqueda ----------------

// SearchGet endpoint GET /listings/search
func (h *ListingHandler) SearchGet(c *gin.Context) {
	req, err := searchRequestFromQuery(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.runSearch(c, req)
}

// SearchPost endpoint POST /listings/search
func (h *ListingHandler) SearchPost(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	h.runSearch(c, req)
}

func (h *ListingHandler) runSearch(c *gin.Context, req searchRequest) {
	pageReq, err := req.pageRequest(h.limits)
	if err != nil {
		h.writeError(c, err)
		return
	}

	page, err := h.search.Search(c.Request.Context(), req.Strategy, req.criteria(), pageReq)
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, page)
}

// SearchStats endpoint GET /listings/search/stats?from=&to= (RFC3339, por defecto últimas 24h)
func (h *ListingHandler) SearchStats(c *gin.Context) {
	if h.stats == nil {
		utils.SendError(c, http.StatusNotImplemented, "search analytics not configured")
		return
	}

	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)
	var err error
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			utils.SendBadRequest(c, "invalid from, use RFC3339")
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			utils.SendBadRequest(c, "invalid to, use RFC3339")
			return
		}
	}

	usage, err := h.stats.StrategyUsage(c.Request.Context(), from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, usage)
}

// ---------------- CRUD ----------------

type listingRequest struct {
	Developer   *string          `json:"developer"`
	Investment  *string          `json:"investment"`
	UnitNumber  *string          `json:"unitNumber"`
	Area        *decimal.Decimal `json:"area"`
	Price       *decimal.Decimal `json:"price"`
	Region      *string          `json:"region"`
	City        *string          `json:"city"`
	District    *string          `json:"district"`
	Floor       *int             `json:"floor"`
	Status      *string          `json:"status"`
	Description *string          `json:"description"`
}

// applyTo copia solo los campos informados.
func (r listingRequest) applyTo(l *listingDomain.Listing) {
	setString(&l.Developer, r.Developer)
	setString(&l.Investment, r.Investment)
	setString(&l.UnitNumber, r.UnitNumber)
	setString(&l.Region, r.Region)
	setString(&l.City, r.City)
	setString(&l.District, r.District)
	setString(&l.Description, r.Description)
	if r.Area != nil {
		l.Area = *r.Area
	}
	if r.Price != nil {
		l.Price = *r.Price
	}
	if r.Floor != nil {
		l.Floor = *r.Floor
	}
	if r.Status != nil {
		l.Status = listingDomain.Status(*r.Status)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// CreateListing endpoint POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	var l listingDomain.Listing
	req.applyTo(&l)

	created, err := h.listings.CreateListing(c.Request.Context(), &l)
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, created)
}

// GetListing endpoint GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	l, err := h.listings.GetListing(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, l)
}

// UpdateListing endpoint PUT /listings/:id (los campos ausentes se conservan)
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	l, err := h.listings.GetListing(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	req.applyTo(l)

	if err := h.listings.UpdateListing(c.Request.Context(), l); err != nil {
		h.writeError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, l)
}

// DeleteListing endpoint DELETE /listings/:id
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	if err := h.listings.DeleteListing(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func listingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendBadRequest(c, "invalid listing id")
		return 0, false
	}
	return id, true
}

// writeError traduce los errores de dominio a códigos HTTP.
func (h *ListingHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, listingDomain.ErrListingNotFound):
		utils.SendNotFound(c, err.Error())
	case errors.Is(err, errBadParam),
		errors.Is(err, listingDomain.ErrNoStrategy),
		errors.Is(err, listingDomain.ErrInvalidListing),
		errors.Is(err, sharedQuery.ErrInvalidPageRequest),
		errors.Is(err, sharedQuery.ErrInvalidSortField),
		errors.Is(err, sharedPersistence.ErrUnknownField):
		utils.SendBadRequest(c, err.Error())
	default:
		h.log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.SendInternalServerError(c, "internal error")
	}
}
