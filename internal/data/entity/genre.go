package entity

type Genre struct {
	Record
	Name string `db:"name"`
}
