package domain

// Gist is a raw gist as returned by the upstream GraphQL API.
type Gist struct {
	ID          string
	Owner       string
	Description string
	Files       []GistFile
}

// GistFile is one file of a gist together with its text.
type GistFile struct {
	Name     string
	Language string
	Text     string
}

// Tutorial is a gist shaped for the tutorials pages and API.
type Tutorial struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	Description string         `json:"description"`
	Files       []TutorialFile `json:"files"`
	EmbedURL    string         `json:"embed_url"`
}

// TutorialFile lists the images referenced by a single gist file.
type TutorialFile struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Images []string `json:"images"`
}
