package persistence

import (
	"errors"
	"strings"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

// paginate orders query by columns and applies the filter's page window.
// Rows come newest first unless the filter asks for "asc". Columns are fixed by
// the repositories and never taken from the request.
func paginate(query *gorm.DB, filter shared.Filter, columns ...string) *gorm.DB {
	page := filter.Normalize()
	dir := orderDirection(page.OrderDir)
	for _, column := range columns {
		query = query.Order(column + " " + dir)
	}
	return query.Offset(page.Offset()).Limit(page.PageSize)
}

func orderDirection(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "asc") {
		return "ASC"
	}
	return "DESC"
}

// findOne loads the first row of query into a new M, reporting a miss as notFound.
func findOne[M any](query *gorm.DB, notFound error) (*M, error) {
	var model M
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, err
	}
	return &model, nil
}
