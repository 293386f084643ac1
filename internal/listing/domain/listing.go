package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	sharedBus "github.com/davicafu/listingsearch/shared/platform/bus"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusReserved  Status = "RESERVED"
	StatusSold      Status = "SOLD"
)

var allStatuses = []Status{StatusAvailable, StatusReserved, StatusSold}

// ParseStatus compara sin distinguir mayúsculas. ok es false si no es un estado conocido.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range allStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

const MaxDescriptionLength = 1000

// Listing es la unidad inmobiliaria que se busca.
// Region, City y District vacíos significan "sin dato".
type Listing struct {
	ID          int64           `json:"id"`
	Developer   string          `json:"developer"`
	Investment  string          `json:"investment"`
	UnitNumber  string          `json:"unitNumber"`
	Area        decimal.Decimal `json:"area"`
	Price       decimal.Decimal `json:"price"`
	Region      string          `json:"region,omitempty"`
	City        string          `json:"city,omitempty"`
	District    string          `json:"district,omitempty"`
	Floor       int             `json:"floor"`
	Status      Status          `json:"status"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (l *Listing) PartitionKey() string {
	return strconv.FormatInt(l.ID, 10)
}

// Normalize aplica el estado por defecto.
func (l *Listing) Normalize() {
	if l.Status == "" {
		l.Status = StatusAvailable
		return
	}
	if st, ok := ParseStatus(string(l.Status)); ok {
		l.Status = st
	}
}

// Validate comprueba las reglas del registro. Precio y área a cero se consideran ausentes.
func (l *Listing) Validate() error {
	if l.Area.IsNegative() {
		return fmt.Errorf("%w: area must be > 0", ErrInvalidListing)
	}
	if l.Price.IsNegative() {
		return fmt.Errorf("%w: price must be > 0", ErrInvalidListing)
	}
	if l.Floor < 0 {
		return fmt.Errorf("%w: floor must be >= 0", ErrInvalidListing)
	}
	if !l.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidListing, l.Status)
	}
	if utf8.RuneCountInString(l.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidListing, MaxDescriptionLength)
	}
	return nil
}

// Verificación estática para asegurar que Listing implementa la interfaz
var _ sharedBus.Keyer = (*Listing)(nil)
