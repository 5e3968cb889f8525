package generator

import "time"

// Brief describes the post the assistant should draft. Words is the
// approximate target length; zero leaves it to the platform's ideal length.
type Brief struct {
	Topic    string   `json:"topic"`
	Platform string   `json:"platform"`
	Tone     string   `json:"tone"`
	Audience string   `json:"audience"`
	Keywords []string `json:"keywords"`
	Words    int      `json:"words"`
}

// Draft is what the model produced: a short title and the post body.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Turn records one comment-driven revision.
type Turn struct {
	Comment   string    `json:"comment"`
	Draft     Draft     `json:"draft"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
