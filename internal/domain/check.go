package domain

// GeneratedField is one generated copy field checked against its limit.
// Value is a string for single fields and a []string for multi-variation fields.
type GeneratedField struct {
	Field           string   `json:"field"`
	Value           any      `json:"value"`
	CharCount       int      `json:"char_count"`
	WordCount       int      `json:"word_count"`
	MaxChars        int      `json:"max_chars"`
	MaxWords        int      `json:"max_words,omitempty"`
	IsOverLimit     bool     `json:"is_over_limit"`
	IsOverWordLimit bool     `json:"is_over_word_limit,omitempty"`
	Shortened       any      `json:"shortened,omitempty"`
	IsDropdown      bool     `json:"is_dropdown"`
	DropdownOptions []string `json:"dropdown_options,omitempty"`
}

// LimitWarning describes a field that exceeded its character limit.
type LimitWarning struct {
	Field          string `json:"field"`
	OriginalLength int    `json:"original_length"`
	MaxLength      int    `json:"max_length"`
	Message        string `json:"message"`
}
