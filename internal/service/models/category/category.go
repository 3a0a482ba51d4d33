package category

// Category groups menu items on the menu.
type Category struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}
