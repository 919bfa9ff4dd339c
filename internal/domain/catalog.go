package domain

// Skill is an entry of the skills section of the about page.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Library is a dependency the application is built with.
type Library struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tools describes the runtime and libraries powering the site.
type Tools struct {
	Go   string    `json:"go"`
	Libs []Library `json:"libs"`
}
