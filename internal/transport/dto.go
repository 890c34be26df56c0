package transport

// ProductRequest is the body of POST and PUT /products. Any id is ignored.
type ProductRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type SearchRequest struct {
	Q    string `query:"q"    validate:"required,max=200"`
	Page int    `query:"page" validate:"gte=0"`
	Size int    `query:"size" validate:"gte=0"`
}
