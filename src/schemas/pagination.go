package schemas

import (
	"net/url"
	"strconv"

	"brokerage/src/repositories"
	"brokerage/src/utils"
)

const DefaultLimit = 10

type Pagination struct {
	Limit int `validate:"min=1,max=100"`
	Skip  int `validate:"min=0"`
}

// ParsePagination reads limit and skip from the query string. Missing values
// default to limit=10 and skip=0.
func ParsePagination(query url.Values) (*Pagination, error) {
	p := &Pagination{Limit: DefaultLimit}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, utils.BadRequest("limit must be an integer")
		}
		p.Limit = limit
	}
	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return nil, utils.BadRequest("skip must be an integer")
		}
		p.Skip = skip
	}

	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pagination) Page() repositories.Page {
	return repositories.Page{Limit: uint64(p.Limit), Offset: uint64(p.Skip)}
}
