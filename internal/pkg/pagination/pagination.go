package pagination

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultSize is the default number of items per page
const DefaultSize = 10

// MaxSize is the maximum number of items per page
const MaxSize = 100

var (
	ErrNegativeIndex = errors.New("page must be greater than or equal to 0")
	ErrInvalidSize   = errors.New("size must be greater than 0")
	ErrSizeTooLarge  = errors.New("size exceeds the maximum page size")
	ErrNotANumber    = errors.New("page and size must be integers")
)

// Request is a zero-based page request
type Request struct {
	Index int
	Size  int
}

// NewRequest validates and builds a page request. Out-of-range values are
// rejected, never clamped. maxSize <= 0 disables the upper bound.
func NewRequest(index, size, maxSize int) (Request, error) {
	if index < 0 {
		return Request{}, ErrNegativeIndex
	}
	if size <= 0 {
		return Request{}, ErrInvalidSize
	}
	if maxSize > 0 && size > maxSize {
		return Request{}, fmt.Errorf("%w (%d)", ErrSizeTooLarge, maxSize)
	}
	return Request{Index: index, Size: size}, nil
}

// ParseRequest builds a page request from raw query values. Empty values
// fall back to page 0 and defaultSize.
func ParseRequest(rawIndex, rawSize string, defaultSize, maxSize int) (Request, error) {
	index, err := atoiDefault(rawIndex, 0)
	if err != nil {
		return Request{}, ErrNotANumber
	}
	size, err := atoiDefault(rawSize, defaultSize)
	if err != nil {
		return Request{}, ErrNotANumber
	}
	return NewRequest(index, size, maxSize)
}

// Offset returns the number of items to skip. It saturates at math.MaxInt
// instead of overflowing, so a huge index always lands past the last page.
func (r Request) Offset() int {
	if r.Size > 0 && r.Index > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return r.Index * r.Size
}

// Limit returns the number of items to fetch
func (r Request) Limit() int {
	return r.Size
}

// Page is an ordered, bounded window over a larger ordered collection
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPage assembles a page and derives its metadata from the total count
func NewPage[T any](content []T, req Request, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := TotalPages(total, req.Size)

	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          req.Size,
		Number:        req.Index,
		First:         req.Index == 0,
		Last:          req.Index >= totalPages-1,
	}
}

// Empty returns a page with no content and no elements
func Empty[T any](req Request) Page[T] {
	return NewPage[T](nil, req, 0)
}

// Map converts the content of a page while keeping its metadata
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Content))
	for i, v := range p.Content {
		out[i] = fn(v)
	}
	return Page[U]{
		Content:       out,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Size:          p.Size,
		Number:        p.Number,
		First:         p.First,
		Last:          p.Last,
	}
}

// TotalPages returns ceil(total / size), or 0 when there is nothing to page
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := total / int64(size)
	if total%int64(size) > 0 {
		pages++
	}
	return int(pages)
}

func atoiDefault(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
