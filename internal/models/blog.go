package models

// BlogPost — статья блога. Content хранится в Markdown, HTML — результат рендеринга.
type BlogPost struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Image    string `json:"image"`
	ReadTime string `json:"read_time"`
	Date     string `json:"date"`
	Content  string `json:"-"`
	HTML     string `json:"html,omitempty"`
}
