package elemsel

import (
	"log/slog"
)

// Mode is the filtering decision taken for a document.
type Mode int

// Filtering modes.
const (
	// ModePassThrough leaves the document unchanged.
	ModePassThrough Mode = iota
	// ModeWhitelist keeps only selected subtrees.
	ModeWhitelist
	// ModeBlacklist empties selected subtrees.
	ModeBlacklist
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeWhitelist:
		return "whitelist"
	case ModeBlacklist:
		return "blacklist"
	default:
		return "pass-through"
	}
}

// Processor applies the filtering policy to documents.
type Processor interface {
	// Process filters doc and routes the extracted text to the document's
	// text field or to its storage field. It returns doc.
	Process(doc *Document) *Document
}

// Ensure Filter implements Processor.
var _ Processor = (*Filter)(nil)

// Filter applies whitelist and blacklist selectors to documents.
//
// A Filter is immutable after NewFilter returns and is safe for concurrent
// use by multiple goroutines.
type Filter struct {
	whitelist    Matcher
	blacklist    Matcher
	protected    ProtectedURLs
	storageField string
	codec        FieldCodec
	logger       *slog.Logger
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// WithLogger sets the logger used to report storage field failures.
// Defaults to a logger that discards all output; a nil logger keeps the
// default.
func WithLogger(logger *slog.Logger) FilterOption {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithCodec sets the codec used to encode the storage field.
// Defaults to UTF8Codec.
func WithCodec(codec FieldCodec) FilterOption {
	return func(f *Filter) {
		f.codec = codec
	}
}

// NewFilter parses the selector lists in s and returns a ready Filter.
// A malformed selector fails with *MalformedSelectorError; an unknown mode
// fails with EINVALID.
func NewFilter(s Settings, opts ...FilterOption) (*Filter, error) {
	f := &Filter{
		protected:    NewProtectedURLs(s.ProtectedURLs),
		storageField: s.StorageField,
		codec:        UTF8Codec{},
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}

	switch s.Mode {
	case "", SelectorModeGrammar:
		whitelist, err := ParseSelectorList(s.Whitelist)
		if err != nil {
			return nil, err
		}
		blacklist, err := ParseSelectorList(s.Blacklist)
		if err != nil {
			return nil, err
		}
		f.whitelist, f.blacklist = whitelist, blacklist
	case SelectorModeLegacy:
		f.whitelist = NewLegacySelectorSet(s.Whitelist)
		f.blacklist = NewLegacySelectorSet(s.Blacklist)
	default:
		return nil, Errorf(EINVALID, "unknown selector mode %q", s.Mode)
	}

	return f, nil
}

// StorageField returns the configured storage field name, or "".
func (f *Filter) StorageField() string {
	return f.storageField
}

// Mode reports how doc would be filtered. Protected URLs and documents
// without a tree pass through. Otherwise a non-empty whitelist wins over a
// non-empty blacklist.
func (f *Filter) Mode(doc *Document) Mode {
	if doc.Root == nil || f.protected.Contains(doc.URL) {
		return ModePassThrough
	}
	if f.whitelist.Len() > 0 {
		return ModeWhitelist
	}
	if f.blacklist.Len() > 0 {
		return ModeBlacklist
	}
	return ModePassThrough
}

// Filtered returns the tree selected for extraction and the mode used.
// The tree is nil for ModePassThrough. doc.Root is never modified.
func (f *Filter) Filtered(doc *Document) (*Node, Mode) {
	mode := f.Mode(doc)
	switch mode {
	case ModeWhitelist:
		root := doc.Root.ShallowClone()
		Collect(doc.Root, f.whitelist, root)
		return root, mode
	case ModeBlacklist:
		root := doc.Root.Clone()
		Prune(root, f.blacklist)
		return root, mode
	default:
		return nil, mode
	}
}

// Process filters doc and stores the extracted text. Without a storage
// field the text replaces doc.Text; otherwise it is encoded into
// doc.Metadata. Encoding failures are logged and leave the field unset.
// Pass-through documents are returned untouched.
func (f *Filter) Process(doc *Document) *Document {
	root, mode := f.Filtered(doc)
	if mode == ModePassThrough {
		return doc
	}

	text := ExtractText(root)

	if f.storageField == "" {
		doc.Text = text
		return doc
	}

	b, err := f.codec.Encode(text)
	if err != nil {
		f.logger.Error("encode storage field",
			"url", doc.URL,
			"field", f.storageField,
			"err", err,
		)
		return doc
	}
	doc.SetMetadata(f.storageField, b)
	return doc
}
