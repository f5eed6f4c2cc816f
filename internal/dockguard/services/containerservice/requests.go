package containerservice

type ListRequest struct {
	Host            string
	State           string
	Offset          int
	Limit           int
	UseLastRevision bool
}
