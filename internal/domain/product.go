package domain

type Product struct {
	ID          int
	Name        string
	Price       float64
	Category    string
	IsAvailable bool
}
