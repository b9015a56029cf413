package services

import (
	"gorm.io/gorm"
	"gorm.io/hints"

	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
	"github.com/localnerve/jam-build-revdb/internal/utils"
)

// keyed describes the sort column of a cursor paginated query.
type keyed[T any] struct {
	name   string
	column string
	key    func(T) string
	parse  func(string) (any, error)
}

// fetchPage runs q as a cursor page ordered by the key column.
func fetchPage[T any](q *gorm.DB, k keyed[T], req utils.PageRequest) (utils.Page[T], error) {
	q = q.Session(&gorm.Session{})

	after, err := req.AfterKey()
	if err != nil {
		return utils.Page[T]{}, revisionerrors.NewValidationError("page", revisionerrors.FieldError{
			Field:   "after",
			Message: err.Error(),
			Type:    "cursor",
		})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return utils.Page[T]{}, err
	}

	limit := req.Limit()
	find := q.Clauses(hints.Comment("select", k.name)).Order(k.column).Limit(limit + 1)
	if after != "" {
		var cursor any = after
		if k.parse != nil {
			if cursor, err = k.parse(after); err != nil {
				return utils.Page[T]{}, revisionerrors.NewValidationError("page", revisionerrors.FieldError{
					Field:   "after",
					Message: err.Error(),
					Type:    "cursor",
				})
			}
		}
		find = find.Where(k.column+" > ?", cursor)
	}

	var items []T
	if err := find.Find(&items).Error; err != nil {
		return utils.Page[T]{}, err
	}
	return utils.NewPage(items, limit, total, k.key), nil
}
