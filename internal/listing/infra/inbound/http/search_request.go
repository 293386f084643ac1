package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
)

// PageLimits acota el tamaño de página que aceptan los endpoints.
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// searchRequest es la forma común de GET (query params) y POST (JSON) /listings/search.
type searchRequest struct {
	Strategy   string           `json:"strategy"`
	Developer  *string          `json:"developer"`
	Investment *string          `json:"investment"`
	Region     *string          `json:"region"`
	City       *string          `json:"city"`
	District   *string          `json:"district"`
	Floor      *int             `json:"floor"`
	Status     *string          `json:"status"`
	MinPrice   *decimal.Decimal `json:"minPrice"`
	MaxPrice   *decimal.Decimal `json:"maxPrice"`
	MinArea    *decimal.Decimal `json:"minArea"`
	MaxArea    *decimal.Decimal `json:"maxArea"`
	Page       *int             `json:"page"`
	Size       *int             `json:"size"`
	Sort       []string         `json:"sort"`
}

// searchRequestFromQuery lee los query params; los valores vacíos cuentan como ausentes.
func searchRequestFromQuery(c *gin.Context) (searchRequest, error) {
	req := searchRequest{
		Strategy:   c.Query("strategy"),
		Developer:  queryString(c, "developer"),
		Investment: queryString(c, "investment"),
		Region:     queryString(c, "region"),
		City:       queryString(c, "city"),
		District:   queryString(c, "district"),
		Status:     queryString(c, "status"),
		Sort:       c.QueryArray("sort"),
	}

	var err error
	if req.Floor, err = queryInt(c, "floor"); err != nil {
		return req, err
	}
	if req.Page, err = queryInt(c, "page"); err != nil {
		return req, err
	}
	if req.Size, err = queryInt(c, "size"); err != nil {
		return req, err
	}
	if req.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return req, err
	}
	if req.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return req, err
	}
	if req.MinArea, err = queryDecimal(c, "minArea"); err != nil {
		return req, err
	}
	if req.MaxArea, err = queryDecimal(c, "maxArea"); err != nil {
		return req, err
	}
	return req, nil
}

func queryString(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}

func queryInt(c *gin.Context, key string) (*int, error) {
	v := queryString(c, key)
	if v == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", errBadParam, key, *v)
	}
	return &n, nil
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	v := queryString(c, key)
	if v == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", errBadParam, key, *v)
	}
	return &d, nil
}

func (r searchRequest) criteria() listingDomain.SearchCriteria {
	var opts []listingDomain.CriteriaOption
	if r.Developer != nil {
		opts = append(opts, listingDomain.WithDeveloper(*r.Developer))
	}
	if r.Investment != nil {
		opts = append(opts, listingDomain.WithInvestment(*r.Investment))
	}
	if r.Region != nil {
		opts = append(opts, listingDomain.WithRegion(*r.Region))
	}
	if r.City != nil {
		opts = append(opts, listingDomain.WithCity(*r.City))
	}
	if r.District != nil {
		opts = append(opts, listingDomain.WithDistrict(*r.District))
	}
	if r.Floor != nil {
		opts = append(opts, listingDomain.WithFloor(*r.Floor))
	}
	if r.Status != nil {
		opts = append(opts, listingDomain.WithStatus(*r.Status))
	}
	if r.MinPrice != nil {
		opts = append(opts, listingDomain.WithMinPrice(*r.MinPrice))
	}
	if r.MaxPrice != nil {
		opts = append(opts, listingDomain.WithMaxPrice(*r.MaxPrice))
	}
	if r.MinArea != nil {
		opts = append(opts, listingDomain.WithMinArea(*r.MinArea))
	}
	if r.MaxArea != nil {
		opts = append(opts, listingDomain.WithMaxArea(*r.MaxArea))
	}
	return listingDomain.NewSearchCriteria(opts...)
}

// pageRequest aplica el tamaño por defecto y el máximo. Un tamaño <= 0 explícito
// se deja pasar para que el núcleo lo rechace.
func (r searchRequest) pageRequest(limits PageLimits) (sharedQuery.PageRequest, error) {
	page := 0
	if r.Page != nil {
		page = *r.Page
	}
	size := limits.DefaultSize
	if r.Size != nil {
		size = *r.Size
	}
	if limits.MaxSize > 0 && size > limits.MaxSize {
		size = limits.MaxSize
	}

	sorts, err := parseSorts(r.Sort)
	if err != nil {
		return sharedQuery.PageRequest{}, err
	}
	return sharedQuery.PageRequest{Page: page, Size: size, Sort: sorts}, nil
}

// parseSorts acepta "campo" o "campo,asc|desc"; el campo admite camelCase.
func parseSorts(raw []string) ([]sharedQuery.Sort, error) {
	sorts := make([]sharedQuery.Sort, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		parts := strings.SplitN(s, ",", 2)
		field, ok := listingDomain.NormalizeField(parts[0])
		if !ok {
			return nil, fmt.Errorf("%w: %s", sharedQuery.ErrInvalidSortField, parts[0])
		}
		sort := sharedQuery.Sort{Field: field}
		if len(parts) == 2 {
			switch strings.ToLower(strings.TrimSpace(parts[1])) {
			case "", "asc":
			case "desc":
				sort.Desc = true
			default:
				return nil, fmt.Errorf("%w: direction %q", sharedQuery.ErrInvalidSortField, parts[1])
			}
		}
		sorts = append(sorts, sort)
	}
	return sorts, nil
}
