package storage

type AlarmListFilter struct {
	Active *bool
	Limit  int
	Offset int
}
