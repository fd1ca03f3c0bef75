package domain

// PromptPart is one typed fragment of a prompt entry. Its mimetype decides
// how the value is interpreted (literal text, referenced image/PDF item,
// or chat context string).
type PromptPart struct {
	MimeType string `json:"mimetype"`
	Value    string `json:"value"`
}

// PromptEnvelope is the decoded body of a prompt item: named groups of
// ordered prompt parts. Immutable once decoded.
type PromptEnvelope struct {
	Prompts map[string][]PromptPart `json:"prompts"`
}

// Item describes a content-platform item: its id, declared media type, and
// structured metadata.
type Item struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	MimeType string                 `json:"mimetype"`
	Metadata map[string]interface{} `json:"metadata"`
}

// DLType returns the platform item type recorded at metadata
// system.shebang.dltype, or "" when the path is absent.
func (i *Item) DLType() string {
	system, ok := i.Metadata["system"].(map[string]interface{})
	if !ok {
		return ""
	}
	shebang, ok := system["shebang"].(map[string]interface{})
	if !ok {
		return ""
	}
	dltype, _ := shebang["dltype"].(string)
	return dltype
}

// ImageBlock holds resolved inline image bytes plus the concrete MIME type
// to declare in a provider payload.
type ImageBlock struct {
	MIMEType string
	Data     []byte
}

// ContentPart is one ordered element of a multimodal request: either text or
// an inline image, never both.
type ContentPart struct {
	Kind  PartKind
	Text  string
	Image *ImageBlock
}

// ResolvedRequest is the provider-specific aggregate built from one prompt
// entry. Which fields are populated depends on the provider capabilities:
// chat fills Text/Context, multimodal fills Parts, OCR fills DocumentURL.
// Constructed fresh per prompt entry and discarded after the call.
type ResolvedRequest struct {
	PromptID    string
	Text        string
	Context     string
	Parts       []ContentPart
	DocumentURL string
}

// ModelInfo records model provenance on an annotation.
type ModelInfo struct {
	Name       string  `json:"name"`
	ModelID    string  `json:"model_id"`
	Confidence float64 `json:"confidence"`
}

// Annotation is one free-text annotation produced from a prompt entry.
type Annotation struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	PromptID  string    `json:"prompt_id"`
	ModelInfo ModelInfo `json:"model_info"`
}

// AnnotationCollection holds the annotations produced for one batch item.
// The collection exists even when empty so batch cardinality is preserved.
type AnnotationCollection struct {
	ItemID      string       `json:"item_id,omitempty"`
	Annotations []Annotation `json:"annotations"`
}

// NewAnnotationCollection creates an empty collection for an item.
func NewAnnotationCollection(itemID string) *AnnotationCollection {
	return &AnnotationCollection{ItemID: itemID, Annotations: []Annotation{}}
}

// Add appends a free-text annotation tagged with prompt id and provenance.
func (c *AnnotationCollection) Add(text, promptID string, info ModelInfo) {
	c.Annotations = append(c.Annotations, Annotation{
		Type:      "free_text",
		Text:      text,
		PromptID:  promptID,
		ModelInfo: info,
	})
}

// Capabilities describes what a provider invoker can consume. The extractor
// uses it to decide which prompt parts are legal and which are required.
type Capabilities struct {
	Text           bool
	Image          bool
	Document       bool
	ContextPart    bool
	RequireText    bool
	RequireImage   bool
	FirstMatchWins bool
}

// BatchItem is one unit of a predict batch: either a decoded prompt envelope
// or a direct binary file handle (OCR only). Exactly one side is set.
type BatchItem struct {
	Item     *Item
	Envelope *PromptEnvelope
}
