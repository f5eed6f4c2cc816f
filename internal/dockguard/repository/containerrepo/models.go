package containerrepo

import "errors"

var ErrNotFound = errors.New("container not found")

type ListRequest struct {
	Host   string
	State  string
	Offset int
	Limit  int
}
