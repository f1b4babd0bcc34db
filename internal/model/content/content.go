package content

// DefaultLength is the target word count used when a request omits length.
const DefaultLength = 500

// Request asks for a piece of writing of the given type about a topic.
type Request struct {
	Topic  string `json:"topic"`
	Type   string `json:"type"`
	Length int    `json:"length"`
}

// Generated wraps the text returned by the model.
type Generated struct {
	Content string `json:"content"`
}
