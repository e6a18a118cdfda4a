package entity

import "time"

// GenArticle es el artículo genérico (producto padre, previo a la expansión talla × color).
type GenArticle struct {
	ID        string
	Code      string
	Name      string
	Category  string
	Season    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VariantArticle es la unidad talla × color concreta de un artículo genérico (SKU).
type VariantArticle struct {
	ID             string
	Code           string
	GenArticleCode string
	SizeCode       string
	ColorCode      string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
