package services

import (
	"errors"

	"github.com/xavierjeanne/softdesk/internal/authz"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PageRequest is embedded by every list request.
type PageRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (p *PageRequest) normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

func (p *PageRequest) offset() int {
	return (p.Page - 1) * p.PageSize
}

// ListResponse is the paginated envelope of every listing.
type ListResponse[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Items    []T   `json:"items"`
}

// paginate counts query and fetches one page of it into a ListResponse.
func paginate[T any](query *gorm.DB, page PageRequest, order string) (*ListResponse[T], error) {
	page.normalize()

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]T, 0, page.PageSize)
	if err := query.Order(order).Offset(page.offset()).Limit(page.PageSize).Find(&items).Error; err != nil {
		return nil, err
	}

	return &ListResponse[T]{
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
		Items:    items,
	}, nil
}

// translate maps storage errors onto the authz taxonomy for kind.
// Errors it does not recognise are returned unchanged.
func translate(err error, kind authz.Kind) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return authz.NotFoundKind(kind)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return authz.Conflict(string(kind) + " already exists")
	}
	return err
}
