package linkedin

// MediaContent references an uploaded image or video from a post.
type MediaContent struct {
	// ID is the media URN, e.g. urn:li:image:{id}.
	ID      URN    `json:"id"`
	Title   string `json:"title,omitempty"`
	AltText string `json:"altText,omitempty"`
}

// CarouselCard is a single card of a carousel post.
type CarouselCard struct {
	LandingPage string        `json:"landingPage,omitempty"`
	Media       *MediaContent `json:"media,omitempty"`
}

// MultiImageContent holds the images of a multi-image post. Only image URNs
// are accepted by LinkedIn here.
type MultiImageContent struct {
	Images  []MediaContent `json:"images"`
	AltText string         `json:"altText,omitempty"`
}
